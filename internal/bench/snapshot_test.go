package bench

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/dvloznov/receipt-eval/internal/runner"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "benchmark-results.json")

	snap := &Snapshot{
		Model:      "qwen2-vl-7b",
		Thresholds: map[string]float64{MetricF1: 0.75, MetricAmountAccuracy: 0.80},
		Results: map[string]MetricSet{
			"overall": {MetricF1: 0.82, MetricAmountAccuracy: 0.91, "total_samples": 24},
		},
	}
	if err := SaveSnapshot(path, snap); err != nil {
		t.Fatalf("SaveSnapshot returned error: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot returned error: %v", err)
	}
	if loaded.Model != snap.Model {
		t.Errorf("Model = %q, want %q", loaded.Model, snap.Model)
	}
	if got := loaded.Overall()[MetricF1]; got != 0.82 {
		t.Errorf("overall f1 = %v, want 0.82", got)
	}
	if got := loaded.Thresholds[MetricAmountAccuracy]; got != 0.80 {
		t.Errorf("amount threshold = %v, want 0.80", got)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}

func TestSnapshotFromDataset(t *testing.T) {
	result := &runner.DatasetResult{
		Model:     "qwen2-vl-2b",
		FileCount: 3,
		Files: []runner.FileResult{
			{File: "a.jpg", F1: 1.0, AmountAccuracy: 1.0, DateAccuracy: 1.0, DescriptionAccuracy: 1.0, TotalTime: 1.0},
			{File: "b.jpg", F1: 0.5, AmountAccuracy: 0.5, DateAccuracy: 0.5, DescriptionAccuracy: 0.5, TotalTime: 2.0},
			{File: "c.pdf", F1: 0.8, AmountAccuracy: 0.6, DateAccuracy: 0.7, DescriptionAccuracy: 0.9, TotalTime: 6.0},
		},
		Aggregate: runner.Aggregate{F1: 0.7666, AmountAccuracy: 0.7},
	}
	thresholds := map[string]float64{MetricF1: 0.7}

	snap := SnapshotFromDataset(result, thresholds)

	if snap.Model != "qwen2-vl-2b" {
		t.Errorf("Model = %q", snap.Model)
	}
	if got := snap.Overall()["total_samples"]; got != 3 {
		t.Errorf("total_samples = %v, want 3", got)
	}
	if got := snap.Thresholds[MetricF1]; got != 0.7 {
		t.Errorf("threshold = %v, want 0.7", got)
	}

	receipts, ok := snap.Results["receipt"]
	if !ok {
		t.Fatal("missing receipt group")
	}
	if got := receipts["sample_count"]; got != 2 {
		t.Errorf("receipt sample_count = %v, want 2", got)
	}
	if got := receipts[MetricF1]; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("receipt f1 = %v, want 0.75", got)
	}
	if got := receipts["avg_processing_time_ms"]; math.Abs(got-1500) > 1e-6 {
		t.Errorf("receipt avg_processing_time_ms = %v, want 1500", got)
	}

	statements, ok := snap.Results["bank_statement"]
	if !ok {
		t.Fatal("missing bank_statement group")
	}
	if got := statements["sample_count"]; got != 1 {
		t.Errorf("bank_statement sample_count = %v, want 1", got)
	}
	if got := statements[MetricF1]; math.Abs(got-0.8) > 1e-9 {
		t.Errorf("bank_statement f1 = %v, want 0.8", got)
	}
}
