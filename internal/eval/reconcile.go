package eval

import "math"

// unitMultipliers are the quantity multiples tested by the unit-price vs
// total-price heuristic.
var unitMultipliers = []float64{2, 3, 4, 5, 10}

// ReconcileAmounts decides whether a predicted amount matches a ground-truth
// amount, and reports the error magnitude implied by whichever rule fired.
// Absolute values are compared throughout; debit/credit sign conventions are
// the caller's concern.
//
// The rules form an ordered cascade and MUST stay in this order: later rules
// are looser and would mask legitimate differences the earlier rules reject.
//
//  1. absolute difference under 0.01
//  2. relative difference under tolerancePct
//  3. prediction reported in minor units (100x truth), either direction
//  4. 1000x scale confusion for large-denomination currencies, either direction
//  5. unit price vs quantity-multiplied total (multipliers 2,3,4,5,10 at 5%)
//
// When no rule fires the error is +Inf. Callers must normalize +Inf to a
// finite sentinel before averaging errors; MatchTransactions does this.
func ReconcileAmounts(pred, truth, tolerancePct float64) (match bool, amountErr float64) {
	predAbs := math.Abs(pred)
	truthAbs := math.Abs(truth)
	diff := math.Abs(predAbs - truthAbs)

	switch {
	case diff < 0.01:
		return true, diff

	case truthAbs != 0 && diff/truthAbs < tolerancePct:
		return true, diff

	case math.Abs(predAbs-truthAbs*100) < 0.01:
		// Prediction is in cents/pence, truth in whole units.
		return true, math.Abs(predAbs/100 - truthAbs)

	case math.Abs(predAbs*100-truthAbs) < 0.01:
		return true, math.Abs(predAbs - truthAbs/100)

	case truthAbs > 1000 && math.Abs(predAbs*1000-truthAbs)/truthAbs < 0.01:
		// 1000x confusion, common with IDR/VND style denominations.
		return true, math.Abs(predAbs - truthAbs/1000)

	case predAbs > 1000 && math.Abs(predAbs-truthAbs*1000)/predAbs < 0.01:
		return true, math.Abs(predAbs/1000 - truthAbs)

	case truthAbs > 100 && predAbs < 1000:
		// Unit price vs total: a quantity-driven mismatch counts as fully
		// explained, so the reported error is 0 rather than the raw gap.
		for _, mult := range unitMultipliers {
			if math.Abs(predAbs*mult*1000-truthAbs)/truthAbs < 0.05 {
				return true, 0
			}
		}
	}

	return false, math.Inf(1)
}
