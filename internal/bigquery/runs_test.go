package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/receipt-eval/internal/bench"
)

func TestNewBenchmarkRunRow(t *testing.T) {
	snap := &bench.Snapshot{
		Model: "qwen2-vl-7b",
		Results: map[string]bench.MetricSet{
			"overall": {
				bench.MetricF1:             0.82,
				bench.MetricAmountAccuracy: 0.91,
				"precision":                0.9,
				"recall":                   0.76,
				"amount_mae":               1.24,
				"total_samples":            24,
			},
		},
	}
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	row := NewBenchmarkRunRow(snap, "run-20250314-092653", "abc1234", now)

	if row.RunUUID == "" {
		t.Error("expected a generated run UUID")
	}
	if row.RunID != "run-20250314-092653" {
		t.Errorf("RunID = %q", row.RunID)
	}
	if !row.RunTS.Equal(now) {
		t.Errorf("RunTS = %v, want %v", row.RunTS, now)
	}
	if want := civil.DateOf(now); row.RunDate != want {
		t.Errorf("RunDate = %v, want %v", row.RunDate, want)
	}
	if row.Model != "qwen2-vl-7b" || row.GitSHA != "abc1234" {
		t.Errorf("Model/GitSHA = %q/%q", row.Model, row.GitSHA)
	}
	if row.F1 != 0.82 || row.AmountAccuracy != 0.91 {
		t.Errorf("F1/AmountAccuracy = %v/%v", row.F1, row.AmountAccuracy)
	}
	// Metrics absent from the snapshot flatten to zero.
	if row.DateAccuracy != 0 {
		t.Errorf("DateAccuracy = %v, want 0", row.DateAccuracy)
	}
	if row.TotalSamples != 24 {
		t.Errorf("TotalSamples = %d, want 24", row.TotalSamples)
	}
}
