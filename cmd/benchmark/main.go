// Command benchmark updates the benchmark snapshot from a results file,
// appends the run to the history, regenerates the markdown report and
// optionally records the run in BigQuery.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-eval/internal/bench"
	bq "github.com/dvloznov/receipt-eval/internal/bigquery"
	"github.com/dvloznov/receipt-eval/internal/config"
	"github.com/dvloznov/receipt-eval/internal/logger"
	"github.com/dvloznov/receipt-eval/internal/runner"
)

func main() {
	cfg := config.FromEnv()

	fs := flag.NewFlagSet("benchmark", flag.ExitOnError)
	var (
		resultsFile = fs.String("results-file", cfg.SnapshotPath, "New benchmark results JSON (snapshot or eval dataset output)")
		runID       = fs.String("run-id", "", "Run identifier (default: derived from timestamp)")
		snapshot    = fs.String("snapshot", cfg.SnapshotPath, "Snapshot file to update")
		history     = fs.String("history", cfg.HistoryPath, "History file to append to")
		report      = fs.String("report", cfg.ReportPath, "Markdown report file to regenerate")
		bqProject   = fs.String("bq-project", cfg.BigQueryProject, "Record the run in this BigQuery project (optional)")
		verbose     = fs.Bool("verbose", false, "Enable debug logging")
	)
	fs.Parse(os.Args[1:])

	log := logger.New(*verbose)
	now := time.Now()

	snap, err := loadResults(*resultsFile, *snapshot)
	if err != nil {
		log.Fatal().Err(err).Str("results_file", *resultsFile).Msg("Could not load results")
	}

	if err := bench.SaveSnapshot(*snapshot, snap); err != nil {
		log.Fatal().Err(err).Msg("Failed to update snapshot")
	}
	fmt.Printf("Updated snapshot: %s\n", *snapshot)

	hist, err := bench.LoadHistory(*history)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load history")
	}

	id := *runID
	if id == "" {
		id = bench.DefaultRunID(now)
	}
	sha := bench.GitSHA(".")
	hist.AppendRun(snap, id, sha, now)
	if err := bench.SaveHistory(*history, hist); err != nil {
		log.Fatal().Err(err).Msg("Failed to save history")
	}
	fmt.Printf("Appended run %q to history (%d total runs)\n", id, len(hist.Runs))

	if err := os.WriteFile(*report, []byte(bench.GenerateReport(snap, hist, now)), 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
	fmt.Printf("Generated report: %s\n", *report)

	if *bqProject != "" {
		recordRun(log, *bqProject, snap, id, sha, now)
	}
}

// loadResults reads the results file, accepting either a ready snapshot or
// raw eval dataset output. Dataset output is converted to a snapshot, with
// thresholds carried over from the existing snapshot file when present.
func loadResults(resultsPath, snapshotPath string) (*bench.Snapshot, error) {
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return nil, err
	}

	var snap bench.Snapshot
	if err := json.Unmarshal(data, &snap); err == nil && len(snap.Results) > 0 {
		return &snap, nil
	}

	var dataset runner.DatasetResult
	if err := json.Unmarshal(data, &dataset); err != nil || dataset.FileCount == 0 {
		return nil, fmt.Errorf("%q is neither a snapshot nor eval dataset output", resultsPath)
	}

	var thresholds map[string]float64
	if prev, err := bench.LoadSnapshot(snapshotPath); err == nil {
		thresholds = prev.Thresholds
	}
	return bench.SnapshotFromDataset(&dataset, thresholds), nil
}

// recordRun inserts the run into the warehouse. Failures are logged, not
// fatal: the local files already hold the run.
func recordRun(log zerolog.Logger, project string, snap *bench.Snapshot, runID, sha string, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sink, err := bq.NewSink(ctx, project)
	if err != nil {
		log.Error().Err(err).Msg("Could not create BigQuery sink, skipping")
		return
	}
	defer sink.Close()

	row := bq.NewBenchmarkRunRow(snap, runID, sha, now)
	if err := sink.InsertRun(ctx, row); err != nil {
		log.Error().Err(err).Msg("Could not record run in BigQuery")
		return
	}
	fmt.Printf("Recorded run %q in BigQuery project %s\n", runID, project)
}
