package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

// Comparator diffs two previously written reports.
type Comparator struct {
	writer *Writer
}

func NewComparator(writer *Writer) *Comparator {
	return &Comparator{writer: writer}
}

// Compare loads beforeReportID and afterReportID and produces their
// ReportComparison, writing reports/comparisons/{after}_vs_{before}.md.
// topQueries bounds the topImprovements/topRegressions lists.
func (c *Comparator) Compare(beforeReportID, afterReportID string, topQueries int) (model.ReportComparison, error) {
	if topQueries < 1 {
		topQueries = 1
	}

	before, err := c.writer.Load(beforeReportID)
	if err != nil {
		return model.ReportComparison{}, err
	}
	after, err := c.writer.Load(afterReportID)
	if err != nil {
		return model.ReportComparison{}, err
	}

	comparison := model.ReportComparison{
		BeforeReportID: beforeReportID,
		AfterReportID:  afterReportID,
		MetricsDelta:   metricsDelta(before.Summary, after.Summary),
	}

	changes := worstQueryChanges(before.WorstQueries, after.WorstQueries)
	comparison.WorstQueryChanges = changes
	comparison.TopImprovements, comparison.TopRegressions = topChanges(changes, topQueries)

	path := filepath.Join(c.writer.baseDir, "comparisons", fmt.Sprintf("%s_vs_%s.md", afterReportID, beforeReportID))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.ReportComparison{}, fmt.Errorf("creating comparisons directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(renderComparison(comparison)), 0o644); err != nil {
		return model.ReportComparison{}, fmt.Errorf("writing comparison: %w", err)
	}

	return comparison, nil
}

func metricsDelta(before, after model.EvaluationSummary) []model.MetricDelta {
	return []model.MetricDelta{
		{Name: "Precision@K", Before: before.MeanPrecisionAtK, After: after.MeanPrecisionAtK, Delta: after.MeanPrecisionAtK - before.MeanPrecisionAtK},
		{Name: "Recall@K", Before: before.MeanRecallAtK, After: after.MeanRecallAtK, Delta: after.MeanRecallAtK - before.MeanRecallAtK},
		{Name: "MRR", Before: before.MeanMRR, After: after.MeanMRR, Delta: after.MeanMRR - before.MeanMRR},
		{Name: "nDCG@K", Before: before.MeanNDCGAtK, After: after.MeanNDCGAtK, Delta: after.MeanNDCGAtK - before.MeanNDCGAtK},
	}
}

// worstQueryChanges classifies every query id present in before or after's
// worst-query lists by how its nDCG moved between the two reports.
func worstQueryChanges(before, after []model.WorstQuery) []model.WorstQueryChange {
	beforeByID := make(map[string]model.WorstQuery, len(before))
	for _, wq := range before {
		beforeByID[wq.QueryID] = wq
	}
	afterByID := make(map[string]model.WorstQuery, len(after))
	for _, wq := range after {
		afterByID[wq.QueryID] = wq
	}

	seen := make(map[string]bool, len(before)+len(after))
	order := make([]string, 0, len(before)+len(after))
	for _, wq := range before {
		if !seen[wq.QueryID] {
			seen[wq.QueryID] = true
			order = append(order, wq.QueryID)
		}
	}
	for _, wq := range after {
		if !seen[wq.QueryID] {
			seen[wq.QueryID] = true
			order = append(order, wq.QueryID)
		}
	}

	changes := make([]model.WorstQueryChange, 0, len(order))
	for _, id := range order {
		b, inBefore := beforeByID[id]
		a, inAfter := afterByID[id]

		switch {
		case inBefore && inAfter:
			delta := a.NDCGAtK - b.NDCGAtK
			status := model.ChangeUnchanged
			switch {
			case delta > 0:
				status = model.ChangeImproved
			case delta < 0:
				status = model.ChangeRegressed
			}
			changes = append(changes, model.WorstQueryChange{QueryID: id, Status: status, Delta: delta})
		case inBefore:
			changes = append(changes, model.WorstQueryChange{QueryID: id, Status: model.ChangeRemovedFromWorst, Delta: 1 - b.NDCGAtK})
		case inAfter:
			changes = append(changes, model.WorstQueryChange{QueryID: id, Status: model.ChangeNewInWorst, Delta: -a.NDCGAtK})
		}
	}

	return changes
}

func topChanges(changes []model.WorstQueryChange, n int) (improvements, regressions []model.WorstQueryChange) {
	improved := make([]model.WorstQueryChange, 0, len(changes))
	regressed := make([]model.WorstQueryChange, 0, len(changes))
	for _, c := range changes {
		switch {
		case c.Delta > 0:
			improved = append(improved, c)
		case c.Delta < 0:
			regressed = append(regressed, c)
		}
	}

	sort.SliceStable(improved, func(i, j int) bool { return abs(improved[i].Delta) > abs(improved[j].Delta) })
	sort.SliceStable(regressed, func(i, j int) bool { return abs(regressed[i].Delta) > abs(regressed[j].Delta) })

	if n < len(improved) {
		improved = improved[:n]
	}
	if n < len(regressed) {
		regressed = regressed[:n]
	}
	return improved, regressed
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func renderComparison(c model.ReportComparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Evaluation Comparison: %s vs %s\n\n", c.AfterReportID, c.BeforeReportID)

	b.WriteString("## Metrics Delta\n\n")
	b.WriteString("| Metric | Before | After | Delta |\n|---|---|---|---|\n")
	for _, d := range c.MetricsDelta {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f |\n", d.Name, d.Before, d.After, d.Delta)
	}

	b.WriteString("\n## Worst Query Changes\n\n")
	b.WriteString("| Query ID | Status | Delta |\n|---|---|---|\n")
	for _, wc := range c.WorstQueryChanges {
		fmt.Fprintf(&b, "| %s | %s | %.4f |\n", wc.QueryID, wc.Status, wc.Delta)
	}

	b.WriteString("\n## Top Improvements\n\n")
	for _, wc := range c.TopImprovements {
		fmt.Fprintf(&b, "- %s: %+.4f\n", wc.QueryID, wc.Delta)
	}

	b.WriteString("\n## Top Regressions\n\n")
	for _, wc := range c.TopRegressions {
		fmt.Fprintf(&b, "- %s: %+.4f\n", wc.QueryID, wc.Delta)
	}

	return b.String()
}
