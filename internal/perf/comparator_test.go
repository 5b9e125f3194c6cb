package perf

import (
	"testing"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

func TestComparator_Compare_OrdersPerQueryChangesByAbsoluteP95Delta(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	before := model.BenchmarkResult{
		RunID: "before", DatasetID: "ds1",
		PerQuery: []model.QueryLatency{
			{QueryID: "small", Stats: model.LatencyStats{P95: 100}},
			{QueryID: "big", Stats: model.LatencyStats{P95: 100}},
		},
	}
	after := model.BenchmarkResult{
		RunID: "after", DatasetID: "ds1",
		PerQuery: []model.QueryLatency{
			{QueryID: "small", Stats: model.LatencyStats{P95: 105}},
			{QueryID: "big", Stats: model.LatencyStats{P95: 300}},
		},
	}
	if err := w.Write(before); err != nil {
		t.Fatalf("Write(before) error = %v", err)
	}
	if err := w.Write(after); err != nil {
		t.Fatalf("Write(after) error = %v", err)
	}

	cmp := NewComparator(w)
	comparison, err := cmp.Compare("before", "after")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(comparison.Regressions) != 2 || comparison.Regressions[0] != "big" {
		t.Errorf("Regressions = %v, want [big, small]", comparison.Regressions)
	}
}

func TestComparator_Compare_IdenticalRunsYieldZeroDeltas(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	run := model.BenchmarkResult{RunID: "same", DatasetID: "ds1", Global: model.LatencyStats{P95: 50}, QPS: 10}
	if err := w.Write(run); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	cmp := NewComparator(w)
	comparison, err := cmp.Compare("same", "same")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	for k, v := range comparison.LatencyDelta {
		if v != 0 {
			t.Errorf("LatencyDelta[%s] = %v, want 0", k, v)
		}
	}
	if comparison.QPSDelta != 0 {
		t.Errorf("QPSDelta = %v, want 0", comparison.QPSDelta)
	}
}
