package eval

import (
	"math"
	"testing"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name  string
		pred  string
		truth string
		want  float64
	}{
		{"exact after normalization", "Starbucks", "starbucks", 1.0},
		{"substring truncation", "STARBUCKS #123", "Starbucks", 0.9},
		{"substring other direction", "Tesco", "TESCO STORES 3412", 0.9},
		{"token overlap", "a b c", "c b d", 0.5},
		{"no overlap", "alpha beta", "gamma delta", 0.0},
		{"empty pred", "", "x", 0.0},
		{"empty truth", "x", "", 0.0},
		{"punctuation only normalizes to empty", "???", "x", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuzzyScore(tt.pred, tt.truth)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FuzzyScore(%q, %q) = %v, want %v", tt.pred, tt.truth, got, tt.want)
			}
		})
	}
}

func TestFuzzyScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Starbucks", "STARBUCKS #4521"},
		{"uber trip help.uber.com", "UBER *TRIP"},
		{"a b c", "c b d"},
	}
	for _, p := range pairs {
		if FuzzyScore(p[0], p[1]) != FuzzyScore(p[1], p[0]) {
			t.Errorf("FuzzyScore not symmetric for %q / %q", p[0], p[1])
		}
	}
}
