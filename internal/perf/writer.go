package perf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

// Writer persists BenchmarkResults under baseDir/performance/{runId}/.
type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	if baseDir == "" {
		baseDir = "./reports"
	}
	return &Writer{baseDir: baseDir}
}

func (w *Writer) Write(result model.BenchmarkResult) error {
	dir := filepath.Join(w.baseDir, "performance", result.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating performance report directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metrics.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metrics.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing metrics.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.md"), []byte(renderBenchmarkSummary(result)), 0o644); err != nil {
		return fmt.Errorf("writing summary.md: %w", err)
	}
	return nil
}

func (w *Writer) Load(runID string) (model.BenchmarkResult, error) {
	path := filepath.Join(w.baseDir, "performance", runID, "metrics.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return model.BenchmarkResult{}, fmt.Errorf("reading benchmark %s: %w", runID, err)
	}
	var result model.BenchmarkResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.BenchmarkResult{}, fmt.Errorf("decoding benchmark %s: %w", runID, err)
	}
	return result, nil
}

func renderBenchmarkSummary(r model.BenchmarkResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Performance Benchmark %s\n\n", r.RunID)
	fmt.Fprintf(&b, "- **Dataset**: %s\n", r.DatasetID)
	fmt.Fprintf(&b, "- **Top K**: %d\n", r.TopK)
	fmt.Fprintf(&b, "- **Iterations**: %d (warmups: %d)\n", r.Iterations, r.Warmups)
	fmt.Fprintf(&b, "- **QPS**: %.2f\n\n", r.QPS)

	b.WriteString("## Global Latency (ms)\n\n")
	writeStatsTable(&b, r.Global)

	b.WriteString("\n## Per-Query Latency (ms)\n\n")
	b.WriteString("| Query ID | Min | P50 | P95 | Max | Avg |\n|---|---|---|---|---|---|\n")
	for _, q := range r.PerQuery {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			q.QueryID, q.Stats.Min, q.Stats.P50, q.Stats.P95, q.Stats.Max, q.Stats.Avg)
	}

	return b.String()
}

func writeStatsTable(b *strings.Builder, s model.LatencyStats) {
	b.WriteString("| Min | P50 | P95 | Max | Avg |\n|---|---|---|---|---|\n")
	fmt.Fprintf(b, "| %.2f | %.2f | %.2f | %.2f | %.2f |\n", s.Min, s.P50, s.P95, s.Max, s.Avg)
}
