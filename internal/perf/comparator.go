package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

// Comparator diffs two previously written benchmark runs.
type Comparator struct {
	writer *Writer
}

func NewComparator(writer *Writer) *Comparator {
	return &Comparator{writer: writer}
}

// Compare loads beforeRunID and afterRunID's global latency stats and QPS
// and produces their BenchmarkComparison, writing
// reports/performance/comparisons/{after}_vs_{before}.md. Per-query
// regressions/improvements are ordered by |Δ(P95)|.
func (c *Comparator) Compare(beforeRunID, afterRunID string) (model.BenchmarkComparison, error) {
	before, err := c.writer.Load(beforeRunID)
	if err != nil {
		return model.BenchmarkComparison{}, err
	}
	after, err := c.writer.Load(afterRunID)
	if err != nil {
		return model.BenchmarkComparison{}, err
	}

	comparison := model.BenchmarkComparison{
		BeforeRunID: beforeRunID,
		AfterRunID:  afterRunID,
		LatencyDelta: map[string]float64{
			"min": after.Global.Min - before.Global.Min,
			"p50": after.Global.P50 - before.Global.P50,
			"p95": after.Global.P95 - before.Global.P95,
			"max": after.Global.Max - before.Global.Max,
			"avg": after.Global.Avg - before.Global.Avg,
		},
		QPSDelta: after.QPS - before.QPS,
	}

	comparison.Regressions, comparison.Improvements = perQueryChanges(before.PerQuery, after.PerQuery)

	path := filepath.Join(c.writer.baseDir, "performance", "comparisons", fmt.Sprintf("%s_vs_%s.md", afterRunID, beforeRunID))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.BenchmarkComparison{}, fmt.Errorf("creating comparisons directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(renderComparison(comparison)), 0o644); err != nil {
		return model.BenchmarkComparison{}, fmt.Errorf("writing comparison: %w", err)
	}

	return comparison, nil
}

type p95Change struct {
	queryID string
	delta   float64
}

// perQueryChanges classifies every query id present in both runs by its
// P95 delta, ordering regressions (P95 increased) and improvements (P95
// decreased) each by |Δ(P95)| descending.
func perQueryChanges(before, after []model.QueryLatency) (regressions, improvements []string) {
	beforeByID := make(map[string]model.QueryLatency, len(before))
	for _, q := range before {
		beforeByID[q.QueryID] = q
	}

	var regressed, improved []p95Change
	for _, a := range after {
		b, ok := beforeByID[a.QueryID]
		if !ok {
			continue
		}
		delta := a.Stats.P95 - b.Stats.P95
		switch {
		case delta > 0:
			regressed = append(regressed, p95Change{a.QueryID, delta})
		case delta < 0:
			improved = append(improved, p95Change{a.QueryID, delta})
		}
	}

	sort.SliceStable(regressed, func(i, j int) bool { return regressed[i].delta > regressed[j].delta })
	sort.SliceStable(improved, func(i, j int) bool { return abs(improved[i].delta) > abs(improved[j].delta) })

	for _, r := range regressed {
		regressions = append(regressions, r.queryID)
	}
	for _, i := range improved {
		improvements = append(improvements, i.queryID)
	}
	return regressions, improvements
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func renderComparison(c model.BenchmarkComparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Performance Comparison: %s vs %s\n\n", c.AfterRunID, c.BeforeRunID)

	b.WriteString("## Latency Delta (ms)\n\n")
	b.WriteString("| Stat | Delta |\n|---|---|\n")
	for _, k := range []string{"min", "p50", "p95", "max", "avg"} {
		fmt.Fprintf(&b, "| %s | %.2f |\n", k, c.LatencyDelta[k])
	}
	fmt.Fprintf(&b, "\n- **QPS delta**: %.2f\n\n", c.QPSDelta)

	b.WriteString("## Regressions (by |Δ P95|)\n\n")
	for _, id := range c.Regressions {
		fmt.Fprintf(&b, "- %s\n", id)
	}

	b.WriteString("\n## Improvements (by |Δ P95|)\n\n")
	for _, id := range c.Improvements {
		fmt.Fprintf(&b, "- %s\n", id)
	}

	return b.String()
}
