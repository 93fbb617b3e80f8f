package eval

import "math"

// Composite score weights and acceptance threshold for candidate ranking.
const (
	dateWeight        = 0.3
	descriptionWeight = 0.4
	amountWeight      = 0.3
	scoreThreshold    = 0.5
)

// MatchResult associates one predicted transaction with at most one
// ground-truth transaction. GroundTruth is nil for an unmatched prediction.
// AmountError is 0 whenever it is undefined (no ground truth, or no amount on
// either side) so it never corrupts downstream averages.
type MatchResult struct {
	Predicted        Record  `json:"predicted"`
	GroundTruth      Record  `json:"ground_truth,omitempty"`
	DateMatch        bool    `json:"date_match"`
	DescriptionScore float64 `json:"description_score"`
	AmountMatch      bool    `json:"amount_match"`
	AmountError      float64 `json:"amount_error"`
}

// MatchOptions tunes the matcher.
type MatchOptions struct {
	// DateToleranceDays is accepted for interface compatibility but is not
	// consulted: date comparison is strict string equality after
	// normalization, not a ±N-day window. Widening it here would silently
	// shift historical benchmark numbers.
	DateToleranceDays int

	// AmountTolerancePct is the relative tolerance used by the amount
	// reconciliation cascade.
	AmountTolerancePct float64
}

// DefaultMatchOptions returns the tolerances used by the benchmark suite.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		DateToleranceDays:  1,
		AmountTolerancePct: 0.01,
	}
}

// MatchTransactions solves a greedy bipartite assignment between predicted
// and ground-truth transactions. Every prediction is emitted exactly once, in
// input order, as either a matched or unmatched result; every ground-truth
// record is consumed by at most one result (matching without replacement).
//
// The assignment is greedy, not globally optimal: once an earlier prediction
// claims a ground-truth entry it stays claimed even if a later prediction
// would have scored higher against it. Real extraction error patterns rarely
// produce competing near-ties, and the greedy scan keeps runs deterministic.
func MatchTransactions(predicted, groundTruth []Record, opts MatchOptions) []MatchResult {
	results := make([]MatchResult, 0, len(predicted))
	consumed := make(map[int]bool, len(groundTruth))

	for _, pred := range predicted {
		predDate := NormalizeDate(pred.Date())
		predDesc := pred.Description()
		predAmt, predAmtOK := pred.Amount()

		var best *MatchResult
		bestIdx := -1
		bestScore := 0.0

		for i, gt := range groundTruth {
			if consumed[i] {
				continue
			}

			gtDate := NormalizeDate(gt.Date())
			gtAmt, gtAmtOK := gt.Amount()

			// Strict equality of normalized dates; an unparsed or absent
			// date on either side contributes 0, not an "unknown" state.
			dateMatch := predDate != "" && gtDate != "" && predDate == gtDate

			descScore := FuzzyScore(predDesc, gt.Description())

			amountMatch := false
			amountErr := math.Inf(1)
			if predAmtOK && gtAmtOK {
				amountMatch, amountErr = ReconcileAmounts(predAmt, gtAmt, opts.AmountTolerancePct)
			}

			score := boolWeight(dateMatch)*dateWeight +
				descScore*descriptionWeight +
				boolWeight(amountMatch)*amountWeight

			if score > bestScore && score > scoreThreshold {
				bestScore = score
				bestIdx = i
				best = &MatchResult{
					Predicted:        pred,
					GroundTruth:      gt,
					DateMatch:        dateMatch,
					DescriptionScore: descScore,
					AmountMatch:      amountMatch,
					AmountError:      finiteOrZero(amountErr),
				}
			}
		}

		if best != nil {
			consumed[bestIdx] = true
			results = append(results, *best)
		} else {
			results = append(results, MatchResult{Predicted: pred})
		}
	}

	return results
}

func boolWeight(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// finiteOrZero maps the reconciler's +Inf no-match sentinel to 0 so match
// results can be averaged directly.
func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return v
}
