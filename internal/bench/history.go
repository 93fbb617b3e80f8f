package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// maxHistoryRuns caps the history file; the oldest runs are evicted first.
const maxHistoryRuns = 50

// Run is one benchmark execution recorded in the history.
type Run struct {
	RunID     string               `json:"run_id"`
	Timestamp string               `json:"timestamp"`
	Model     string               `json:"model"`
	GitSHA    string               `json:"git_sha"`
	Results   map[string]MetricSet `json:"results"`
}

// History is the append-only record of benchmark runs.
type History struct {
	Runs []Run `json:"runs"`
}

// LoadHistory reads a history file. A missing file yields an empty history so
// the first benchmark run bootstraps it.
func LoadHistory(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LoadHistory: %w", err)
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("LoadHistory: parse %q: %w", path, err)
	}
	return &h, nil
}

// SaveHistory writes the history as indented JSON.
func SaveHistory(path string, h *History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("SaveHistory: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("SaveHistory: %w", err)
	}
	return nil
}

// AppendRun records a snapshot in the history, evicting the oldest runs past
// the cap. The timestamp is ISO 8601 in UTC.
func (h *History) AppendRun(snap *Snapshot, runID, gitSHA string, now time.Time) {
	h.Runs = append(h.Runs, Run{
		RunID:     runID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Model:     snap.Model,
		GitSHA:    gitSHA,
		Results:   snap.Results,
	})
	if len(h.Runs) > maxHistoryRuns {
		h.Runs = h.Runs[len(h.Runs)-maxHistoryRuns:]
	}
}

// DefaultRunID derives a run identifier from the timestamp, matching the
// run-YYYYMMDD-HHMMSS convention used across CI.
func DefaultRunID(now time.Time) string {
	return "run-" + now.UTC().Format("20060102-150405")
}
