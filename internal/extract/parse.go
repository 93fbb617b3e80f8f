package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/receipt-eval/internal/eval"
)

// CleanModelJSON strips the junk vision models wrap around their JSON output:
// markdown code fences, prose before or after the payload, and truncated
// array tails from responses that hit the token limit. It returns its best
// guess at a parseable JSON document; DecodeRecords decides whether the guess
// was good enough.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	arrayStart := strings.Index(s, "[")
	objectStart := strings.Index(s, "{")

	switch {
	case arrayStart != -1 && (objectStart == -1 || arrayStart < objectStart):
		s = s[arrayStart:]
		if !strings.HasSuffix(strings.TrimSpace(s), "]") {
			// Truncated mid-array: salvage the complete leading objects.
			if cut := strings.LastIndex(s, "},"); cut > 0 {
				s = s[:cut+1] + "]"
			} else if cut := strings.LastIndex(s, "}"); cut > 0 {
				s = s[:cut+1] + "]"
			}
		}
	case objectStart != -1:
		if end := strings.LastIndex(s, "}"); end > objectStart {
			s = s[objectStart : end+1]
		}
	}

	return strings.TrimSpace(s)
}

// DecodeRecords parses cleaned model output into transaction records. A bare
// object (the receipt prompt's shape) yields a single record; an array (the
// bank-statement prompt's shape) yields one record per element.
func DecodeRecords(raw string) ([]eval.Record, error) {
	clean := CleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("decode records: empty model response")
	}

	var parsed any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	switch v := parsed.(type) {
	case map[string]any:
		return []eval.Record{eval.Record(v)}, nil
	case []any:
		records := make([]eval.Record, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decode records: element %d is %T, want object", i, item)
			}
			records = append(records, eval.Record(obj))
		}
		return records, nil
	default:
		return nil, fmt.Errorf("decode records: top-level value is %T, want object or array", parsed)
	}
}

// snippet truncates raw model output for inclusion in page error records.
func snippet(raw string) string {
	const maxLen = 500
	if len(raw) <= maxLen {
		return raw
	}
	return raw[:maxLen]
}
