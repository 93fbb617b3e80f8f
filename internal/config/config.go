// Package config collects the environment-driven defaults shared by the
// evaluation CLIs. Flags override everything here; the environment only
// supplies defaults so CI can configure runs without long command lines.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Model size names accepted by the -model flag.
const (
	ModelSize2B = "2B"
	ModelSize7B = "7B"
)

// modelIDs maps a size name to the model identifier reported in results.
var modelIDs = map[string]string{
	ModelSize2B: "qwen2-vl-2b",
	ModelSize7B: "qwen2-vl-7b",
}

// Config holds environment-derived defaults for the CLIs.
type Config struct {
	// ModelSize selects the local model variant, "2B" or "7B".
	ModelSize string

	// Device is the accelerator hint forwarded to the local inference
	// server ("cpu", "cuda", "mps"). Empty leaves the choice to the server.
	Device string

	// Workers bounds concurrent page requests against the local backend.
	Workers int

	// LocalEndpoint is the local inference server base URL.
	LocalEndpoint string

	// RemoteEndpoint is the GPU service base URL for -remote runs.
	RemoteEndpoint string

	// GeminiModel overrides the hosted-API model identifier.
	GeminiModel string

	// SnapshotPath, HistoryPath and ReportPath locate the benchmark files.
	SnapshotPath string
	HistoryPath  string
	ReportPath   string

	// BigQueryProject enables the warehouse run sink when non-empty.
	BigQueryProject string
}

// FromEnv builds a Config from the environment, falling back to defaults.
func FromEnv() *Config {
	return &Config{
		ModelSize:       getEnv("EVAL_MODEL", ModelSize2B),
		Device:          getEnv("EVAL_DEVICE", ""),
		Workers:         getEnvInt("EVAL_WORKERS", 2),
		LocalEndpoint:   getEnv("EVAL_LOCAL_ENDPOINT", "http://127.0.0.1:8191"),
		RemoteEndpoint:  getEnv("EVAL_REMOTE_ENDPOINT", ""),
		GeminiModel:     getEnv("EVAL_GEMINI_MODEL", ""),
		SnapshotPath:    getEnv("BENCH_SNAPSHOT_PATH", "benchmark-results.json"),
		HistoryPath:     getEnv("BENCH_HISTORY_PATH", "benchmark-history.json"),
		ReportPath:      getEnv("BENCH_REPORT_PATH", "BENCHMARK_REPORT.md"),
		BigQueryProject: getEnv("BENCH_BQ_PROJECT", ""),
	}
}

// Validate reports configuration errors that should stop a run before any
// work starts.
func (c *Config) Validate() error {
	if _, ok := modelIDs[c.ModelSize]; !ok {
		return fmt.Errorf("config: unknown model size %q (want 2B or 7B)", c.ModelSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// ModelID resolves a model size name to its model identifier.
func ModelID(size string) (string, error) {
	id, ok := modelIDs[size]
	if !ok {
		return "", fmt.Errorf("config: unknown model size %q (want 2B or 7B)", size)
	}
	return id, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
