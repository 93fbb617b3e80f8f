package eval

import "strings"

// FuzzyScore scores the similarity of two free-text strings on a 0-1 scale.
// Both inputs are normalized first. The tiers are tuned for receipt text:
// exact equality scores 1.0, one string containing the other scores 0.9
// (truncated merchant names), and anything else falls back to the Jaccard
// similarity of the whitespace-delimited token sets (reordered words). An
// empty normalized string on either side scores 0.0.
func FuzzyScore(pred, truth string) float64 {
	p := NormalizeText(pred)
	t := NormalizeText(truth)

	if p == "" || t == "" {
		return 0.0
	}
	if p == t {
		return 1.0
	}
	if strings.Contains(p, t) || strings.Contains(t, p) {
		return 0.9
	}

	predTokens := strings.Fields(p)
	truthTokens := strings.Fields(t)
	if len(predTokens) == 0 || len(truthTokens) == 0 {
		return 0.0
	}

	predSet := make(map[string]struct{}, len(predTokens))
	for _, tok := range predTokens {
		predSet[tok] = struct{}{}
	}
	truthSet := make(map[string]struct{}, len(truthTokens))
	for _, tok := range truthTokens {
		truthSet[tok] = struct{}{}
	}

	intersection := 0
	for tok := range predSet {
		if _, ok := truthSet[tok]; ok {
			intersection++
		}
	}
	union := len(predSet) + len(truthSet) - intersection

	return float64(intersection) / float64(union)
}
