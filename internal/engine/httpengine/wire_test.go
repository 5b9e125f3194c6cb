package httpengine

import (
	"testing"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

func TestBuildQueryBody_MultiMatchAndFilters(t *testing.T) {
	tree := query.Tree{
		Query: query.Node{
			Kind: query.NodeMultiMatch,
			MultiMatch: &query.MultiMatchClause{
				Query:      "go concurrency",
				Fields:     map[string]float64{"title": 4, "body": 1},
				Type:       "MOST_FIELDS",
				TieBreaker: 0.2,
			},
		},
		Filters: []query.Filter{
			{Kind: query.FilterTerm, Term: &query.TermFilter{Field: "category", Value: "go"}},
		},
		From: 0,
		Size: 10,
	}

	body := buildQueryBody(tree)
	q, ok := body["query"].(map[string]any)
	if !ok {
		t.Fatalf("expected query object, got %T", body["query"])
	}
	boolClause, ok := q["bool"].(map[string]any)
	if !ok {
		t.Fatalf("expected bool wrapper when filters present, got %v", q)
	}
	if _, ok := boolClause["must"]; !ok {
		t.Fatal("expected bool.must")
	}
	if _, ok := boolClause["filter"]; !ok {
		t.Fatal("expected bool.filter")
	}
}

func TestTranslateFunctionScore(t *testing.T) {
	inner := query.Node{Kind: query.NodeMultiMatch, MultiMatch: &query.MultiMatchClause{Query: "x", Fields: map[string]float64{"title": 1}}}
	n := query.Node{
		Kind: query.NodeFunctionScore,
		FunctionScore: &query.FunctionScoreClause{
			Inner: &inner,
			Functions: []query.ScoringFunction{
				{Recency: &query.RecencyFunction{Field: "publishedAt", Origin: "now", Scale: "30d", Decay: 0.5, Weight: 1.0}},
			},
			ScoreMode: "SUM",
			BoostMode: "SUM",
		},
	}

	out := translateNode(n)
	fs, ok := out["function_score"].(map[string]any)
	if !ok {
		t.Fatalf("expected function_score object, got %v", out)
	}
	if fs["score_mode"] != "sum" {
		t.Fatalf("expected lowercased score_mode, got %v", fs["score_mode"])
	}
	functions, ok := fs["functions"].([]any)
	if !ok || len(functions) != 1 {
		t.Fatalf("expected one function, got %v", fs["functions"])
	}
}

func TestBuildAliasActions(t *testing.T) {
	actions := model.SwitchActions("docs_v2")
	body := buildAliasActions(actions)
	wire, ok := body["actions"].([]any)
	if !ok || len(wire) != 4 {
		t.Fatalf("expected 4 wire actions, got %v", body)
	}

	add, ok := wire[3].(map[string]any)["add"].(map[string]any)
	if !ok {
		t.Fatalf("expected fourth action to be add, got %v", wire[3])
	}
	if add["index"] != "docs_v2" || add["is_write_index"] != true {
		t.Fatalf("expected write-index add to docs_v2, got %v", add)
	}
}
