package bench

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		snap       *Snapshot
		wantOK     bool
		wantPassed int
		wantFailed int
		wantSkip   int
	}{
		{
			name: "all above thresholds",
			snap: &Snapshot{
				Thresholds: map[string]float64{
					MetricF1:                  0.75,
					MetricAmountAccuracy:      0.80,
					MetricDateAccuracy:        0.80,
					MetricDescriptionAccuracy: 0.70,
				},
				Results: map[string]MetricSet{"overall": {
					MetricF1:                  0.82,
					MetricAmountAccuracy:      0.91,
					MetricDateAccuracy:        0.85,
					MetricDescriptionAccuracy: 0.77,
				}},
			},
			wantOK:     true,
			wantPassed: 4,
		},
		{
			name: "one below threshold",
			snap: &Snapshot{
				Thresholds: map[string]float64{MetricF1: 0.75, MetricAmountAccuracy: 0.80},
				Results: map[string]MetricSet{"overall": {
					MetricF1:             0.82,
					MetricAmountAccuracy: 0.60,
				}},
			},
			wantOK:     false,
			wantPassed: 1,
			wantFailed: 1,
			wantSkip:   2,
		},
		{
			name: "exactly at threshold passes",
			snap: &Snapshot{
				Thresholds: map[string]float64{MetricF1: 0.75},
				Results:    map[string]MetricSet{"overall": {MetricF1: 0.75}},
			},
			wantOK:     true,
			wantPassed: 1,
			wantSkip:   3,
		},
		{
			name: "threshold without value fails",
			snap: &Snapshot{
				Thresholds: map[string]float64{MetricDateAccuracy: 0.80},
				Results:    map[string]MetricSet{"overall": {MetricF1: 0.9}},
			},
			wantOK:     false,
			wantFailed: 1,
			wantSkip:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Validate(tt.snap)
			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
			if v.OK() != tt.wantOK {
				t.Errorf("OK() = %t, want %t", v.OK(), tt.wantOK)
			}
			if len(v.Passed) != tt.wantPassed {
				t.Errorf("passed = %d, want %d", len(v.Passed), tt.wantPassed)
			}
			if len(v.Failed) != tt.wantFailed {
				t.Errorf("failed = %d, want %d", len(v.Failed), tt.wantFailed)
			}
			if len(v.Skipped) != tt.wantSkip {
				t.Errorf("skipped = %d, want %d", len(v.Skipped), tt.wantSkip)
			}
		})
	}
}

func TestValidateNoOverall(t *testing.T) {
	if _, err := Validate(&Snapshot{}); err == nil {
		t.Fatal("expected error for snapshot without overall results")
	}
}

func TestValidationReport(t *testing.T) {
	snap := &Snapshot{
		Model:      "qwen2-vl-7b",
		Thresholds: map[string]float64{MetricF1: 0.75, MetricAmountAccuracy: 0.80},
		Results: map[string]MetricSet{"overall": {
			MetricF1:             0.82,
			MetricAmountAccuracy: 0.60,
			"total_samples":      12,
		}},
	}
	v, err := Validate(snap)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	report := v.Report(snap.Model, snap.Overall())
	for _, want := range []string{
		"Benchmark Validation Report",
		"Model: qwen2-vl-7b",
		"Samples: 12",
		"PASS  F1 Score: 0.820 >= 0.750",
		"FAIL  Amount Accuracy: 0.600 < 0.800 (below threshold)",
		"Results: 1 passed, 1 failed",
		"Benchmark validation FAILED",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}
}
