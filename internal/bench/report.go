package bench

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// trendDeadZone is the band within which a metric movement counts as flat
// rather than an improvement or regression.
const trendDeadZone = 0.005

// trendArrow classifies the movement of a metric between two runs.
func trendArrow(current, previous float64) string {
	diff := current - previous
	if diff > -trendDeadZone && diff < trendDeadZone {
		return "→"
	}
	if diff > 0 {
		return "↑"
	}
	return "↓"
}

// GenerateReport renders the benchmark markdown report from the current
// snapshot and the run history.
func GenerateReport(snap *Snapshot, history *History, now time.Time) string {
	overall := snap.Overall()
	runs := history.Runs

	// Previous run, for trend comparison against the current one.
	var prevOverall MetricSet
	if len(runs) >= 2 {
		prevOverall = runs[len(runs)-2].Results["overall"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Extraction Benchmark Report\n\n")
	fmt.Fprintf(&b, "> Auto-generated on %s\n", now.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "> Model: **%s**\n", orUnknown(snap.Model))
	fmt.Fprintf(&b, "> Total samples: **%s**\n\n", rawValue(overall, "total_samples"))

	b.WriteString("## Overall Metrics\n\n")
	b.WriteString("| Metric | Value | Threshold | Status | Trend |\n")
	b.WriteString("|--------|-------|-----------|--------|-------|\n")
	for _, m := range trackedMetrics {
		val, hasVal := overall[m.Key]
		thresh, hasThresh := snap.Thresholds[m.Key]

		threshCol := "-"
		if hasThresh {
			threshCol = fmt.Sprintf("%.2f", thresh)
		}
		if !hasVal {
			fmt.Fprintf(&b, "| %s | N/A | %s | - | - |\n", m.Name, threshCol)
			continue
		}

		status := "PASS"
		if hasThresh && val < thresh {
			status = "FAIL"
		}
		trend := ""
		if prev, ok := prevOverall[m.Key]; ok {
			trend = trendArrow(val, prev)
		}
		fmt.Fprintf(&b, "| %s | %.3f | %s | %s | %s |\n", m.Name, val, threshCol, status, trend)
	}

	b.WriteString("\n| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Precision | %s |\n", rawValue(overall, "precision"))
	fmt.Fprintf(&b, "| Recall | %s |\n", rawValue(overall, "recall"))
	fmt.Fprintf(&b, "| Amount MAE | %s |\n", rawValue(overall, "amount_mae"))
	fmt.Fprintf(&b, "| Avg Processing Time | %sms |\n", rawValue(overall, "avg_processing_time_ms"))

	b.WriteString("\n## By Document Type\n\n")
	for _, docType := range []string{"receipt", "bank_statement"} {
		set := snap.Results[docType]
		if len(set) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", titleCase(docType))
		b.WriteString("| Metric | Value |\n|--------|-------|\n")
		for _, m := range trackedMetrics {
			fmt.Fprintf(&b, "| %s | %s |\n", m.Name, rawValue(set, m.Key))
		}
		fmt.Fprintf(&b, "| Sample Count | %s |\n", rawValue(set, "sample_count"))
		fmt.Fprintf(&b, "| Avg Processing Time | %sms |\n\n", rawValue(set, "avg_processing_time_ms"))
	}

	if len(runs) > 1 {
		recent := runs
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		b.WriteString("## Recent History\n\n")
		b.WriteString("| Run | Date | F1 | Amount Acc | Date Acc | Desc Acc |\n")
		b.WriteString("|-----|------|----|-----------|----------|----------|\n")
		for _, run := range recent {
			r := run.Results["overall"]
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				clip(run.RunID, 20), clip(run.Timestamp, 10),
				cellValue(r, MetricF1), cellValue(r, MetricAmountAccuracy),
				cellValue(r, MetricDateAccuracy), cellValue(r, MetricDescriptionAccuracy))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Threshold Configuration\n\n")
	b.WriteString("| Metric | Minimum Threshold |\n|--------|-------------------|\n")
	for _, m := range trackedMetrics {
		if thresh, ok := snap.Thresholds[m.Key]; ok {
			fmt.Fprintf(&b, "| %s | %.2f |\n", m.Name, thresh)
		}
	}
	b.WriteString("\n")

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// rawValue formats a metric for informational table cells, or "N/A" when the
// metric is absent.
func rawValue(set MetricSet, key string) string {
	v, ok := set[key]
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// cellValue formats a tracked metric for the history table, or "-" when
// absent.
func cellValue(set MetricSet, key string) string {
	v, ok := set[key]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// titleCase renders a snake_case document type as a section heading.
func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
