package eval

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

// fakePort serves canned search results keyed by query text, so the
// runner's translation/scoring logic can be tested without a real engine.
type fakePort struct {
	engine.Port
	resultsByQuery map[string]model.SearchResult
}

func (f *fakePort) Search(ctx context.Context, target string, tree query.Tree) (model.SearchResult, error) {
	return f.resultsByQuery[tree.Query.MultiMatch.Query], nil
}

func writeDataset(t *testing.T, dir, datasetID string, qs model.QuerySet, js model.JudgementSet) {
	t.Helper()
	mustWrite := func(path string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	mustWrite(filepath.Join(dir, "querysets", datasetID+"_queries.json"), qs)
	mustWrite(filepath.Join(dir, "judgements", datasetID+"_judgements.json"), js)
}

func TestRunner_Run_ScoresQueriesAgainstJudgements(t *testing.T) {
	dir := t.TempDir()
	qs := model.QuerySet{DatasetID: "ds1", Queries: []model.QueryEntry{
		{QueryID: "q1", QueryText: "golang concurrency"},
	}}
	js := model.JudgementSet{DatasetID: "ds1", Judgements: []model.Judgement{
		{QueryID: "q1", DocID: "d1", Grade: 3},
		{QueryID: "q1", DocID: "d2", Grade: 1},
	}}
	writeDataset(t, dir, "ds1", qs, js)

	port := &fakePort{resultsByQuery: map[string]model.SearchResult{
		"golang concurrency": {
			Hits: []model.SearchHit{
				{Document: model.Document{ID: "d1"}, Score: 9.0},
				{Document: model.Document{ID: "d3"}, Score: 5.0},
			},
		},
	}}

	r := New(dataset.NewLoader(dir), port, nil)
	result, err := r.Run(context.Background(), "ds1", 2, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Summary.TotalQueries != 1 {
		t.Fatalf("expected 1 query, got %d", result.Summary.TotalQueries)
	}
	qr := result.Results[0]
	if qr.Metrics.RelevantRetrieved != 1 {
		t.Errorf("RelevantRetrieved = %d, want 1", qr.Metrics.RelevantRetrieved)
	}
	if qr.Metrics.RelevantJudgements != 2 {
		t.Errorf("RelevantJudgements = %d, want 2", qr.Metrics.RelevantJudgements)
	}
	if !qr.Hits[0].Judged || *qr.Hits[0].Grade != 3 {
		t.Errorf("expected first hit judged grade 3, got %+v", qr.Hits[0])
	}
	if qr.Hits[1].Judged {
		t.Errorf("expected second hit to be unjudged, got %+v", qr.Hits[1])
	}
}

func TestRunner_Run_NoHitsYieldsZeroNDCG(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "empty", model.QuerySet{DatasetID: "empty", Queries: []model.QueryEntry{{QueryID: "q1", QueryText: "x"}}}, model.JudgementSet{DatasetID: "empty"})

	port := &fakePort{resultsByQuery: map[string]model.SearchResult{}}
	r := New(dataset.NewLoader(dir), port, nil)

	result, err := r.Run(context.Background(), "empty", 5, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Summary.MeanNDCGAtK != 0 {
		t.Errorf("expected zero nDCG with no retrieved hits, got %v", result.Summary.MeanNDCGAtK)
	}
}

func TestRunner_Run_UnknownDatasetErrors(t *testing.T) {
	dir := t.TempDir()
	r := New(dataset.NewLoader(dir), &fakePort{}, nil)

	_, err := r.Run(context.Background(), "missing", 10, Options{})
	if err == nil {
		t.Fatal("expected an error for an unknown dataset")
	}
}
