package bench

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testSnapshot(f1 float64) *Snapshot {
	return &Snapshot{
		Model: "qwen2-vl-7b",
		Results: map[string]MetricSet{
			"overall": {MetricF1: f1},
		},
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	h, err := LoadHistory(filepath.Join(t.TempDir(), "benchmark-history.json"))
	if err != nil {
		t.Fatalf("LoadHistory returned error: %v", err)
	}
	if len(h.Runs) != 0 {
		t.Errorf("got %d runs, want 0", len(h.Runs))
	}
}

func TestAppendRun(t *testing.T) {
	h := &History{}
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	h.AppendRun(testSnapshot(0.8), "run-20250314-092653", "abc1234", now)

	if len(h.Runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(h.Runs))
	}
	run := h.Runs[0]
	if run.RunID != "run-20250314-092653" {
		t.Errorf("RunID = %q", run.RunID)
	}
	if run.Timestamp != "2025-03-14T09:26:53Z" {
		t.Errorf("Timestamp = %q", run.Timestamp)
	}
	if run.GitSHA != "abc1234" {
		t.Errorf("GitSHA = %q", run.GitSHA)
	}
	if got := run.Results["overall"][MetricF1]; got != 0.8 {
		t.Errorf("recorded f1 = %v, want 0.8", got)
	}
}

func TestAppendRunEvictsOldest(t *testing.T) {
	h := &History{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxHistoryRuns+1; i++ {
		h.AppendRun(testSnapshot(0.5), fmt.Sprintf("run-%03d", i), "sha", now.Add(time.Duration(i)*time.Minute))
	}

	if len(h.Runs) != maxHistoryRuns {
		t.Fatalf("got %d runs, want %d", len(h.Runs), maxHistoryRuns)
	}
	if h.Runs[0].RunID != "run-001" {
		t.Errorf("oldest run = %q, want run-001 after evicting run-000", h.Runs[0].RunID)
	}
	if h.Runs[len(h.Runs)-1].RunID != fmt.Sprintf("run-%03d", maxHistoryRuns) {
		t.Errorf("newest run = %q", h.Runs[len(h.Runs)-1].RunID)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark-history.json")
	h := &History{}
	h.AppendRun(testSnapshot(0.9), "run-1", "sha", time.Now())

	if err := SaveHistory(path, h); err != nil {
		t.Fatalf("SaveHistory returned error: %v", err)
	}
	loaded, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory returned error: %v", err)
	}
	if len(loaded.Runs) != 1 || loaded.Runs[0].RunID != "run-1" {
		t.Errorf("loaded runs = %+v", loaded.Runs)
	}
}

func TestDefaultRunID(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := DefaultRunID(now); got != "run-20250314-092653" {
		t.Errorf("DefaultRunID = %q", got)
	}
}
