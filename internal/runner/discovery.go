package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dvloznov/receipt-eval/internal/eval"
)

// ErrNoGroundTruth is returned when a document has no discoverable
// ground-truth file and no override was given.
var ErrNoGroundTruth = errors.New("ground truth not found")

// GroundTruthSuffix marks the curated annotation files a dataset directory
// pairs with its documents: "receipt_001.jpg" is scored against
// "receipt_001.gt.json".
const GroundTruthSuffix = ".gt.json"

// companionExts are the document extensions tried, in order, when resolving a
// ground-truth file to the document it annotates.
var companionExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Pair binds a document to its ground-truth file.
type Pair struct {
	Document    string
	GroundTruth string
}

// DiscoverPairs scans dir (non-recursively) for ground-truth files and
// resolves each to its companion document. Ground-truth files with no
// companion are returned in skipped rather than treated as an error. Pairs
// come back sorted by document path so runs are reproducible.
func DiscoverPairs(dir string) (pairs []Pair, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("DiscoverPairs: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), GroundTruthSuffix) {
			continue
		}
		gtPath := filepath.Join(dir, entry.Name())
		stem := strings.TrimSuffix(gtPath, GroundTruthSuffix)

		doc := ""
		for _, ext := range companionExts {
			candidate := stem + ext
			if _, statErr := os.Stat(candidate); statErr == nil {
				doc = candidate
				break
			}
		}
		if doc == "" {
			skipped = append(skipped, gtPath)
			continue
		}
		pairs = append(pairs, Pair{Document: doc, GroundTruth: gtPath})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Document < pairs[j].Document })
	sort.Strings(skipped)
	return pairs, skipped, nil
}

// ResolveGroundTruth returns the ground-truth path for a document: the
// override when given, otherwise the document's stem plus the ground-truth
// suffix. The path must exist.
func ResolveGroundTruth(docPath, override string) (string, error) {
	gtPath := override
	if gtPath == "" {
		gtPath = strings.TrimSuffix(docPath, filepath.Ext(docPath)) + GroundTruthSuffix
	}
	if _, err := os.Stat(gtPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoGroundTruth, gtPath)
	}
	return gtPath, nil
}

// groundTruthFile accepts both annotation shapes in use: a bare array of
// transactions, or an object with a "transactions" key.
type groundTruthFile struct {
	Transactions []eval.Record `json:"transactions"`
}

// LoadGroundTruth reads and parses a ground-truth annotation file.
func LoadGroundTruth(path string) ([]eval.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadGroundTruth: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []eval.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("LoadGroundTruth: parse %q: %w", path, err)
		}
		return records, nil
	}

	var wrapped groundTruthFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("LoadGroundTruth: parse %q: %w", path, err)
	}
	if wrapped.Transactions == nil {
		return nil, fmt.Errorf("LoadGroundTruth: %q has no transactions key and is not an array", path)
	}
	return wrapped.Transactions, nil
}
