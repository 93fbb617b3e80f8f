package eval

// Metrics aggregates a set of per-transaction match results against the
// ground-truth cardinality.
type Metrics struct {
	MatchedCount int     `json:"matched_count"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`

	DateAccuracy float64 `json:"date_accuracy"`
	// DescriptionAccuracy is the mean continuous fuzzy score over matched
	// pairs, not a boolean fraction: description matching is inherently
	// fuzzy, so the aggregate keeps the finer grain.
	DescriptionAccuracy float64 `json:"description_accuracy"`
	AmountAccuracy      float64 `json:"amount_accuracy"`
	AmountMAE           float64 `json:"amount_mae"`
}

// ComputeMetrics derives precision/recall/F1 and per-field accuracy from
// match results. Per-field accuracies and the amount MAE are computed only
// over matched pairs. An empty match list yields all-zero metrics, and a zero
// groundTruthCount yields zero recall; no input is a division error.
func ComputeMetrics(matches []MatchResult, groundTruthCount int) Metrics {
	var m Metrics
	if len(matches) == 0 {
		return m
	}

	var dateHits, amountHits int
	var descSum, errSum float64
	for _, match := range matches {
		if match.GroundTruth == nil {
			continue
		}
		m.MatchedCount++
		if match.DateMatch {
			dateHits++
		}
		if match.AmountMatch {
			amountHits++
		}
		descSum += match.DescriptionScore
		errSum += match.AmountError
	}

	m.Precision = float64(m.MatchedCount) / float64(len(matches))
	if groundTruthCount > 0 {
		m.Recall = float64(m.MatchedCount) / float64(groundTruthCount)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	if m.MatchedCount > 0 {
		n := float64(m.MatchedCount)
		m.DateAccuracy = float64(dateHits) / n
		m.DescriptionAccuracy = descSum / n
		m.AmountAccuracy = float64(amountHits) / n
		m.AmountMAE = errSum / n
	}

	return m
}
