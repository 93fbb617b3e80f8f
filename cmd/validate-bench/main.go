// Command validate-bench is the CI quality gate: it checks the benchmark
// snapshot against its thresholds and exits non-zero when any tracked metric
// has regressed below its minimum.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dvloznov/receipt-eval/internal/bench"
	"github.com/dvloznov/receipt-eval/internal/config"
)

func main() {
	cfg := config.FromEnv()

	fs := flag.NewFlagSet("validate-bench", flag.ExitOnError)
	snapshot := fs.String("snapshot", cfg.SnapshotPath, "Benchmark snapshot to validate")
	fs.Parse(os.Args[1:])

	snap, err := bench.LoadSnapshot(*snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	v, err := bench.Validate(snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(v.Report(snap.Model, snap.Overall()))
	if !v.OK() {
		os.Exit(1)
	}
}
