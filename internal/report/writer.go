// Package report implements the Report Writer and Comparator: persisting
// evaluation runs as metrics.json/summary.md, and diffing two runs into a
// comparison report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

// Writer persists EvaluationRunResults under baseDir/{reportId}/.
type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	if baseDir == "" {
		baseDir = "./reports"
	}
	return &Writer{baseDir: baseDir}
}

// Write builds a Report from result (keeping the worstQueriesCount lowest
// nDCG queries, ties broken by ascending Recall@K), then writes
// metrics.json and summary.md under baseDir/{reportId}. reportIDPrefix, if
// non-empty, is prepended to the UTC(yyyyMMdd_HHmmss) timestamp of
// result.StartedAt.
func (w *Writer) Write(result model.EvaluationRunResult, worstQueriesCount int, reportIDPrefix string) (model.Report, error) {
	if worstQueriesCount < 1 {
		worstQueriesCount = 1
	}

	reportID := reportID(reportIDPrefix, result.StartedAt)
	report := model.Report{
		ReportID:     reportID,
		DatasetID:    result.DatasetID,
		TopK:         result.TopK,
		TotalQueries: result.Summary.TotalQueries,
		StartedAt:    result.StartedAt,
		CompletedAt:  result.CompletedAt,
		ElapsedMs:    result.ElapsedMs,
		Summary:      result.Summary,
		WorstQueries: worstQueries(result.Results, worstQueriesCount),
	}

	dir := filepath.Join(w.baseDir, reportID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.Report{}, fmt.Errorf("creating report directory: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "metrics.json"), report); err != nil {
		return model.Report{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.md"), []byte(renderSummary(report)), 0o644); err != nil {
		return model.Report{}, fmt.Errorf("writing summary.md: %w", err)
	}

	return report, nil
}

// Load reads back a previously written metrics.json by reportId.
func (w *Writer) Load(reportID string) (model.Report, error) {
	path := filepath.Join(w.baseDir, reportID, "metrics.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Report{}, fmt.Errorf("reading report %s: %w", reportID, err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return model.Report{}, fmt.Errorf("decoding report %s: %w", reportID, err)
	}
	return report, nil
}

func reportID(prefix string, startedAt time.Time) string {
	ts := startedAt.UTC().Format("20060102_150405")
	if prefix == "" {
		return ts
	}
	return prefix + "_" + ts
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// worstQueries returns the n lowest-nDCG query results (ties broken by
// ascending Recall@K) as WorstQuery rows.
func worstQueries(results []model.QueryResult, n int) []model.WorstQuery {
	sorted := make([]model.QueryResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Metrics.NDCGAtK != sorted[j].Metrics.NDCGAtK {
			return sorted[i].Metrics.NDCGAtK < sorted[j].Metrics.NDCGAtK
		}
		return sorted[i].Metrics.RecallAtK < sorted[j].Metrics.RecallAtK
	})

	if n > len(sorted) {
		n = len(sorted)
	}

	out := make([]model.WorstQuery, 0, n)
	for _, qr := range sorted[:n] {
		judgedHits, totalHits := 0, len(qr.Hits)
		for _, h := range qr.Hits {
			if h.Judged {
				judgedHits++
			}
		}
		out = append(out, model.WorstQuery{
			QueryID:      qr.QueryID,
			Intent:       qr.Intent,
			PrecisionAtK: qr.Metrics.PrecisionAtK,
			RecallAtK:    qr.Metrics.RecallAtK,
			MRR:          qr.Metrics.MRR,
			NDCGAtK:      qr.Metrics.NDCGAtK,
			JudgedHits:   judgedHits,
			RelevantHits: qr.Metrics.RelevantRetrieved,
			TotalHits:    totalHits,
		})
	}
	return out
}

func renderSummary(r model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Evaluation Report %s\n\n", r.ReportID)
	fmt.Fprintf(&b, "- **Dataset**: %s\n", r.DatasetID)
	fmt.Fprintf(&b, "- **Top K**: %d\n", r.TopK)
	fmt.Fprintf(&b, "- **Total queries**: %d\n", r.TotalQueries)
	fmt.Fprintf(&b, "- **Elapsed**: %dms\n\n", r.ElapsedMs)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Precision@K | %.4f |\n", r.Summary.MeanPrecisionAtK)
	fmt.Fprintf(&b, "| Recall@K | %.4f |\n", r.Summary.MeanRecallAtK)
	fmt.Fprintf(&b, "| MRR | %.4f |\n", r.Summary.MeanMRR)
	fmt.Fprintf(&b, "| nDCG@K | %.4f |\n\n", r.Summary.MeanNDCGAtK)

	b.WriteString("## Worst Queries\n\n")
	b.WriteString("| Query ID | Intent | Precision@K | Recall@K | MRR | nDCG@K | Judged | Relevant | Total |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, wq := range r.WorstQueries {
		fmt.Fprintf(&b, "| %s | %s | %.4f | %.4f | %.4f | %.4f | %d | %d | %d |\n",
			wq.QueryID, wq.Intent, wq.PrecisionAtK, wq.RecallAtK, wq.MRR, wq.NDCGAtK,
			wq.JudgedHits, wq.RelevantHits, wq.TotalHits)
	}

	return b.String()
}
