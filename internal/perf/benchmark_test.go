package perf

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Junhan0037/SearchFoundry/internal/dataset"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

type fakePort struct {
	engine.Port
	tookMsByQuery map[string][]int64 // queued samples returned in order, recycled when exhausted
	calls         map[string]int
}

func (f *fakePort) Search(ctx context.Context, target string, tree query.Tree) (model.SearchResult, error) {
	q := tree.Query.MultiMatch.Query
	samples := f.tookMsByQuery[q]
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	i := f.calls[q] % len(samples)
	f.calls[q]++
	return model.SearchResult{TookMs: samples[i]}, nil
}

func writeQuerySet(t *testing.T, dir, datasetID string, qs model.QuerySet) {
	t.Helper()
	data, err := json.Marshal(qs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "querysets", datasetID+"_queries.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestBenchmarker_Run_ComputesStatsOverIterationsExcludingWarmups(t *testing.T) {
	dir := t.TempDir()
	writeQuerySet(t, dir, "ds1", model.QuerySet{DatasetID: "ds1", Queries: []model.QueryEntry{{QueryID: "q1", QueryText: "golang"}}})

	port := &fakePort{tookMsByQuery: map[string][]int64{
		"golang": {999, 10, 20, 30, 40}, // first sample (warmup) discarded
	}}

	b := NewBenchmarker(dataset.NewLoader(dir), port)
	result, err := b.Run(context.Background(), "ds1", 10, Options{Iterations: 4, Warmups: 1})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.PerQuery) != 1 {
		t.Fatalf("len(PerQuery) = %d, want 1", len(result.PerQuery))
	}
	stats := result.PerQuery[0].Stats
	if stats.Min != 10 {
		t.Errorf("Min = %v, want 10 (warmup sample of 999 must be discarded)", stats.Min)
	}
	if stats.Max != 40 {
		t.Errorf("Max = %v, want 40", stats.Max)
	}
}

func TestBenchmarker_Run_EmptyQuerySetErrors(t *testing.T) {
	dir := t.TempDir()
	writeQuerySet(t, dir, "empty", model.QuerySet{DatasetID: "empty"})

	b := NewBenchmarker(dataset.NewLoader(dir), &fakePort{})
	_, err := b.Run(context.Background(), "empty", 10, Options{Iterations: 1})
	if err == nil {
		t.Fatal("expected an error for an empty query set")
	}
}

func TestStatsOf_PercentilesUseClampedCeilIndex(t *testing.T) {
	samples := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	stats := statsOf(samples)
	if stats.P50 != 50 {
		t.Errorf("P50 = %v, want 50", stats.P50)
	}
	if stats.P95 != 100 {
		t.Errorf("P95 = %v, want 100", stats.P95)
	}
}

func TestStatsOf_EmptySamplesYieldsZeroStats(t *testing.T) {
	stats := statsOf(nil)
	if stats != (model.LatencyStats{}) {
		t.Errorf("statsOf(nil) = %+v, want zero value", stats)
	}
}
