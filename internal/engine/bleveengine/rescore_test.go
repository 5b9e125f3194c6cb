package bleveengine

import (
	"testing"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

func TestApplyFunctions_NonFunctionScoreIsNoop(t *testing.T) {
	hits := []scoredHit{{doc: model.Document{}, score: 1.0}}
	out := applyFunctions(query.Node{Kind: query.NodeMultiMatch}, hits)
	if out[0].score != 1.0 {
		t.Fatalf("expected score unchanged, got %f", out[0].score)
	}
}

func TestApplyFunctions_FieldValueFactor(t *testing.T) {
	n := query.Node{
		Kind: query.NodeFunctionScore,
		FunctionScore: &query.FunctionScoreClause{
			Functions: []query.ScoringFunction{
				{FieldValueFactor: &query.FieldValueFactorFunction{Field: "popularityScore", Weight: 1.0}},
			},
		},
	}
	hits := []scoredHit{{doc: model.Document{PopularityScore: 10}, score: 1.0}}
	out := applyFunctions(n, hits)
	if out[0].score != 11.0 {
		t.Fatalf("expected score 11.0, got %f", out[0].score)
	}
}

func TestApplyFunctions_RecencyDecayFavorsNewer(t *testing.T) {
	n := query.Node{
		Kind: query.NodeFunctionScore,
		FunctionScore: &query.FunctionScoreClause{
			Functions: []query.ScoringFunction{
				{Recency: &query.RecencyFunction{Scale: "30d", Decay: 0.5, Weight: 1.0, Origin: "now"}},
			},
		},
	}
	hits := []scoredHit{
		{doc: model.Document{PublishedAt: time.Now()}, score: 0},
		{doc: model.Document{PublishedAt: time.Now().Add(-60 * 24 * time.Hour)}, score: 0},
	}
	out := applyFunctions(n, hits)
	if out[0].score <= out[1].score {
		t.Fatalf("expected newer document to score higher: fresh=%f old=%f", out[0].score, out[1].score)
	}
}

func TestRankFeatureScore_Saturates(t *testing.T) {
	f := &query.RankFeatureClause{Pivot: 10, Boost: 1.0}
	low := rankFeatureScore(f, 1)
	high := rankFeatureScore(f, 1000)
	if !(low < high) {
		t.Fatalf("expected higher popularity to score higher: low=%f high=%f", low, high)
	}
	if high >= 1.0 {
		t.Fatalf("expected saturation below boost ceiling, got %f", high)
	}
}

func TestParseScaleDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"", 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := parseScaleDuration(c.in); got != c.want {
			t.Errorf("parseScaleDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
