package bench

import (
	"fmt"
	"strings"
)

// Validation is the outcome of checking a snapshot against its thresholds.
type Validation struct {
	Passed  []string
	Failed  []string
	Skipped []string
}

// OK reports whether no tracked metric fell below its threshold.
func (v *Validation) OK() bool {
	return len(v.Failed) == 0
}

// Validate checks the snapshot's overall metrics against its thresholds. A
// metric without a threshold is skipped; a threshold without a measured value
// is a failure, since a silently missing metric must not pass the gate.
func Validate(snap *Snapshot) (*Validation, error) {
	overall := snap.Overall()
	if len(overall) == 0 {
		return nil, fmt.Errorf("Validate: snapshot has no overall results")
	}

	v := &Validation{}
	for _, m := range trackedMetrics {
		threshold, hasThreshold := snap.Thresholds[m.Key]
		actual, hasActual := overall[m.Key]

		switch {
		case !hasThreshold:
			v.Skipped = append(v.Skipped, fmt.Sprintf("  SKIP  %s: no threshold defined", m.Name))
		case !hasActual:
			v.Failed = append(v.Failed, fmt.Sprintf("  FAIL  %s: no result value", m.Name))
		case actual >= threshold:
			v.Passed = append(v.Passed, fmt.Sprintf("  PASS  %s: %.3f >= %.3f", m.Name, actual, threshold))
		default:
			v.Failed = append(v.Failed, fmt.Sprintf("  FAIL  %s: %.3f < %.3f (below threshold)", m.Name, actual, threshold))
		}
	}
	return v, nil
}

// Report renders the validation as the console report the CI gate prints.
func (v *Validation) Report(model string, overall MetricSet) string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "%s\nBenchmark Validation Report\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Model: %s\n", orUnknown(model))
	fmt.Fprintf(&b, "Samples: %s\n\n", rawValue(overall, "total_samples"))

	for _, line := range v.Skipped {
		b.WriteString(line + "\n")
	}
	for _, line := range v.Passed {
		b.WriteString(line + "\n")
	}
	for _, line := range v.Failed {
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "\nResults: %d passed, %d failed\n%s\n", len(v.Passed), len(v.Failed), rule)
	if v.OK() {
		b.WriteString("\nBenchmark validation PASSED\n")
	} else {
		b.WriteString("\nBenchmark validation FAILED\n")
	}
	return b.String()
}
