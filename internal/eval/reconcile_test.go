package eval

import (
	"math"
	"testing"
)

func TestReconcileAmounts(t *testing.T) {
	const pct = 0.01

	tests := []struct {
		name      string
		pred      float64
		truth     float64
		wantMatch bool
		wantErr   float64
	}{
		{"identical", 5.50, 5.50, true, 0},
		{"within absolute tolerance", 5.504, 5.50, true, 0.004},
		{"within relative tolerance", 1001.0, 1000.0, true, 1.0},
		{"sign ignored", -5.50, 5.50, true, 0},
		{"cents vs whole units", 2850, 28.50, true, 0},
		{"whole units vs cents", 28.50, 2850, true, 0},
		{"thousand scale down", 28.5, 28500, true, 0},
		{"thousand scale up", 28500, 28.5, true, 0},
		{"unit price vs total x5", 2.5, 12500, true, 0},
		{"unit price vs total x10", 1.2, 12000, true, 0},
		{"plain mismatch", 10, 57, false, math.Inf(1)},
		{"near but outside tolerances", 95, 100, false, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, amountErr := ReconcileAmounts(tt.pred, tt.truth, pct)
			if match != tt.wantMatch {
				t.Fatalf("ReconcileAmounts(%v, %v) match = %v, want %v", tt.pred, tt.truth, match, tt.wantMatch)
			}
			if math.IsInf(tt.wantErr, 1) {
				if !math.IsInf(amountErr, 1) {
					t.Errorf("error = %v, want +Inf", amountErr)
				}
				return
			}
			if math.Abs(amountErr-tt.wantErr) > 1e-9 {
				t.Errorf("error = %v, want %v", amountErr, tt.wantErr)
			}
		})
	}
}

// Error magnitudes are directional under the scale rules, but the match flag
// itself must agree regardless of argument order for scale-confused pairs.
func TestReconcileAmountsFlagSymmetry(t *testing.T) {
	pairs := [][2]float64{
		{5.50, 5.50},
		{2850, 28.50},
		{28.5, 28500},
		{10, 57},
	}
	for _, p := range pairs {
		fwd, _ := ReconcileAmounts(p[0], p[1], 0.01)
		rev, _ := ReconcileAmounts(p[1], p[0], 0.01)
		if fwd != rev {
			t.Errorf("match flag asymmetric for (%v, %v): %v vs %v", p[0], p[1], fwd, rev)
		}
	}
}

func TestReconcileAmountsCascadeOrder(t *testing.T) {
	// 100.00 vs 100.005 satisfies both the absolute and the relative rule;
	// the absolute rule must win and report the raw difference.
	match, amountErr := ReconcileAmounts(100.005, 100.0, 0.01)
	if !match {
		t.Fatal("expected match")
	}
	if math.Abs(amountErr-0.005) > 1e-9 {
		t.Errorf("error = %v, want 0.005", amountErr)
	}
}
