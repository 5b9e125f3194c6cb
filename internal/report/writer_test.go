package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

func TestWriter_Write_CreatesReportUnderTimestampedDir(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	startedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := model.EvaluationRunResult{
		DatasetID:   "ds1",
		TopK:        2,
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(10 * time.Millisecond),
		ElapsedMs:   10,
		Summary:     model.EvaluationSummary{TopK: 2, TotalQueries: 2, MeanNDCGAtK: 0.6665},
		Results: []model.QueryResult{
			{QueryID: "q1", Metrics: model.QueryMetrics{NDCGAtK: 1.0}},
			{QueryID: "q2", Metrics: model.QueryMetrics{NDCGAtK: 0.333}},
		},
	}

	report, err := w.Write(result, 1, "")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.ReportID != "20260102_030405" {
		t.Errorf("reportID = %q, want 20260102_030405", report.ReportID)
	}
	if len(report.WorstQueries) != 1 || report.WorstQueries[0].QueryID != "q2" {
		t.Fatalf("WorstQueries = %+v, want single entry for q2 (lowest nDCG)", report.WorstQueries)
	}

	metricsPath := filepath.Join(dir, report.ReportID, "metrics.json")
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("reading metrics.json: %v", err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding metrics.json: %v", err)
	}
	if decoded.DatasetID != "ds1" {
		t.Errorf("decoded.DatasetID = %q, want ds1", decoded.DatasetID)
	}

	summaryPath := filepath.Join(dir, report.ReportID, "summary.md")
	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("reading summary.md: %v", err)
	}
	if !containsAll(string(summary), "Worst Queries", "q2") {
		t.Errorf("summary.md missing expected content:\n%s", summary)
	}
}

func TestWriter_Write_PrefixIsPrependedToReportID(t *testing.T) {
	w := NewWriter(t.TempDir())
	startedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := model.EvaluationRunResult{StartedAt: startedAt, Results: []model.QueryResult{{QueryID: "q1"}}}

	report, err := w.Write(result, 5, "nightly")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.ReportID != "nightly_20260102_030405" {
		t.Errorf("reportID = %q, want nightly_20260102_030405", report.ReportID)
	}
}

func TestWriter_Write_WorstQueriesCountClampedToAvailable(t *testing.T) {
	w := NewWriter(t.TempDir())
	result := model.EvaluationRunResult{
		StartedAt: time.Now().UTC(),
		Results:   []model.QueryResult{{QueryID: "q1"}},
	}
	report, err := w.Write(result, 10, "")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(report.WorstQueries) != 1 {
		t.Errorf("len(WorstQueries) = %d, want 1", len(report.WorstQueries))
	}
}

func TestWriter_Load_RoundTrips(t *testing.T) {
	w := NewWriter(t.TempDir())
	result := model.EvaluationRunResult{
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Results:   []model.QueryResult{{QueryID: "q1", Metrics: model.QueryMetrics{NDCGAtK: 0.5}}},
	}
	written, err := w.Write(result, 1, "")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	loaded, err := w.Load(written.ReportID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ReportID != written.ReportID {
		t.Errorf("loaded.ReportID = %q, want %q", loaded.ReportID, written.ReportID)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
