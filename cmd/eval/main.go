// Command eval scores extraction backends against curated ground truth. It
// evaluates a single document or a whole dataset directory, prints a summary
// and optionally writes the full results as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-eval/internal/config"
	"github.com/dvloznov/receipt-eval/internal/eval"
	"github.com/dvloznov/receipt-eval/internal/extract"
	"github.com/dvloznov/receipt-eval/internal/gcs"
	"github.com/dvloznov/receipt-eval/internal/logger"
	"github.com/dvloznov/receipt-eval/internal/runner"
)

func main() {
	cfg := config.FromEnv()

	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	var (
		groundTruth    = fs.String("ground-truth", "", "Ground-truth JSON for single-file runs (default: <file>.gt.json)")
		modelSize      = fs.String("model", cfg.ModelSize, "Local model size: 2B or 7B")
		device         = fs.String("device", cfg.Device, "Accelerator hint for the local inference server (cpu, cuda, mps)")
		workers        = fs.Int("workers", cfg.Workers, "Concurrent page requests against the local backend")
		output         = fs.String("output", "", "Write full results JSON to this path (local or gs:// URI)")
		docType        = fs.String("type", "auto", "Document type: receipt, bank_statement or auto")
		useRemote      = fs.Bool("remote", false, "Use the remote GPU service instead of the local backend")
		remoteEndpoint = fs.String("remote-endpoint", cfg.RemoteEndpoint, "Remote GPU service base URL")
		useGemini      = fs.Bool("gemini", false, "Use the hosted Gemini API instead of the local backend")
		localEndpoint  = fs.String("local-endpoint", cfg.LocalEndpoint, "Local inference server base URL")
		tolerance      = fs.Float64("amount-tolerance", 0.01, "Relative amount tolerance for matching")
		verbose        = fs.Bool("verbose", false, "Enable debug logging")
	)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: eval [options] <file-or-dataset-dir>")
		fmt.Fprintln(os.Stderr, "\nEvaluates extraction output against .gt.json ground truth.")
		fmt.Fprintln(os.Stderr, "The target may be a document, a local dataset directory or a gs:// prefix.")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	log := logger.New(*verbose)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	target := fs.Arg(0)

	dt := extract.DocType(*docType)
	switch dt {
	case extract.DocTypeReceipt, extract.DocTypeBankStatement, extract.DocTypeAuto:
	default:
		log.Fatal().Str("type", *docType).Msg("Unknown document type")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	extractor := buildExtractor(ctx, log, backendOptions{
		modelSize:      *modelSize,
		device:         *device,
		workers:        *workers,
		localEndpoint:  *localEndpoint,
		remoteEndpoint: *remoteEndpoint,
		geminiModel:    cfg.GeminiModel,
		useRemote:      *useRemote,
		useGemini:      *useGemini,
	})

	opts := eval.DefaultMatchOptions()
	opts.AmountTolerancePct = *tolerance
	run := runner.New(extractor, opts, log)

	if gcs.IsURI(target) {
		target = downloadDataset(ctx, log, target)
	}

	info, err := os.Stat(target)
	if err != nil {
		log.Fatal().Err(err).Str("target", target).Msg("Cannot access evaluation target")
	}

	if info.IsDir() {
		result, err := run.EvaluateDataset(ctx, target, dt)
		if err != nil {
			log.Fatal().Err(err).Msg("Dataset evaluation failed")
		}
		printDatasetSummary(result)
		writeOutput(ctx, log, *output, result)
		return
	}

	gtPath, err := runner.ResolveGroundTruth(target, *groundTruth)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot evaluate without ground truth")
	}

	result, err := run.EvaluateFile(ctx, target, gtPath, dt)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}
	printFileSummary(result)
	writeOutput(ctx, log, *output, result)
}

type backendOptions struct {
	modelSize      string
	device         string
	workers        int
	localEndpoint  string
	remoteEndpoint string
	geminiModel    string
	useRemote      bool
	useGemini      bool
}

func buildExtractor(ctx context.Context, log zerolog.Logger, opts backendOptions) extract.Extractor {
	switch {
	case opts.useGemini && opts.useRemote:
		log.Fatal().Msg("Choose one backend: -gemini or -remote")
		return nil
	case opts.useGemini:
		ex, err := extract.NewGeminiExtractor(ctx, opts.geminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini backend")
		}
		log.Info().Str("backend", "gemini").Msg("Using hosted API backend")
		return ex
	case opts.useRemote:
		if opts.remoteEndpoint == "" {
			log.Fatal().Msg("Error: -remote requires -remote-endpoint (or EVAL_REMOTE_ENDPOINT)")
		}
		ex := extract.NewRemoteExtractor(opts.remoteEndpoint, 0)
		if err := ex.HealthCheck(ctx); err != nil {
			log.Fatal().Err(err).Msg("Remote GPU service is not healthy")
		}
		log.Info().Str("backend", "remote").Str("endpoint", opts.remoteEndpoint).Msg("Using remote GPU backend")
		return ex
	default:
		modelID, err := config.ModelID(opts.modelSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid model size")
		}
		if opts.workers < 1 {
			log.Fatal().Int("workers", opts.workers).Msg("Workers must be at least 1")
		}
		ex := extract.NewLocalExtractor(opts.localEndpoint, opts.workers, nil, modelID)
		ex.Device = opts.device
		log.Info().Str("backend", "local").Str("model", modelID).Int("workers", opts.workers).Msg("Using local backend")
		return ex
	}
}

// downloadDataset mirrors a gs:// dataset prefix into a temp directory.
func downloadDataset(ctx context.Context, log zerolog.Logger, uri string) string {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer client.Close()

	dir, err := os.MkdirTemp("", "receipt-eval-dataset-*")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dataset directory")
	}

	log.Info().Str("uri", uri).Str("dir", dir).Msg("Downloading dataset")
	n, err := client.DownloadDataset(ctx, uri, dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Dataset download failed")
	}
	log.Info().Int("files", n).Msg("Dataset downloaded")
	return dir
}

func writeOutput(ctx context.Context, log zerolog.Logger, output string, v any) {
	if output == "" {
		return
	}

	if gcs.IsURI(output) {
		tmp, err := os.CreateTemp("", "receipt-eval-results-*.json")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create temp results file")
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		if err := runner.WriteJSON(tmp.Name(), v); err != nil {
			log.Fatal().Err(err).Msg("Failed to write results")
		}

		client, err := gcs.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer client.Close()

		if err := client.UploadFile(ctx, output, tmp.Name()); err != nil {
			log.Fatal().Err(err).Msg("Failed to upload results")
		}
		fmt.Printf("Results uploaded to %s\n", output)
		return
	}

	if err := runner.WriteJSON(output, v); err != nil {
		log.Fatal().Err(err).Msg("Failed to write results")
	}
	fmt.Printf("Results written to %s\n", output)
}

func printFileSummary(r *runner.FileResult) {
	fmt.Printf("\n%s (%s, %d pages)\n", r.File, r.Model, r.PageCount)
	fmt.Printf("  predicted=%d ground_truth=%d matched=%d\n", r.Predicted, r.GroundTruth, r.Matched)
	fmt.Printf("  precision=%.3f recall=%.3f f1=%.3f\n", r.Precision, r.Recall, r.F1)
	fmt.Printf("  date=%.3f description=%.3f amount=%.3f mae=%.2f\n",
		r.DateAccuracy, r.DescriptionAccuracy, r.AmountAccuracy, r.AmountMAE)
	fmt.Printf("  time=%.2fs (%.2fs/page)\n", r.TotalTime, r.TimePerPage)
	for _, e := range r.Errors {
		fmt.Printf("  page %d error: %s\n", e.Page, e.Error)
	}
}

func printDatasetSummary(r *runner.DatasetResult) {
	fmt.Printf("\nDataset: %d files evaluated, %d failed (%s)\n", r.FileCount, len(r.Failed), r.Model)
	for _, f := range r.Files {
		fmt.Printf("  %-40s f1=%.3f amount=%.3f date=%.3f desc=%.3f\n",
			filepath.Base(f.File), f.F1, f.AmountAccuracy, f.DateAccuracy, f.DescriptionAccuracy)
	}
	for _, f := range r.Failed {
		fmt.Printf("  %-40s FAILED: %s\n", filepath.Base(f.File), f.Error)
	}
	a := r.Aggregate
	fmt.Printf("\nAggregate (unweighted):\n")
	fmt.Printf("  precision=%.3f recall=%.3f f1=%.3f\n", a.Precision, a.Recall, a.F1)
	fmt.Printf("  date=%.3f description=%.3f amount=%.3f mae=%.2f\n",
		a.DateAccuracy, a.DescriptionAccuracy, a.AmountAccuracy, a.AmountMAE)
	fmt.Printf("  total time=%.1fs\n", r.TotalTime)
}
