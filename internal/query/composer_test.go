package query

import (
	"testing"

	"github.com/Junhan0037/SearchFoundry/internal/model"
)

func TestCompose_TextMatchFields(t *testing.T) {
	tree := Compose(model.SearchRequest{Query: "test", Size: 10})

	if tree.Query.Kind != NodeMultiMatch {
		t.Fatalf("Query.Kind = %s, want %s", tree.Query.Kind, NodeMultiMatch)
	}
	mm := tree.Query.MultiMatch
	if mm.Fields["title"] != titleBoost || mm.Fields["summary"] != summaryBoost || mm.Fields["body"] != bodyBoost {
		t.Errorf("unexpected field boosts: %+v", mm.Fields)
	}
}

func TestCompose_MostFieldsTieBreaker(t *testing.T) {
	tree := Compose(model.SearchRequest{Query: "test", MultiMatchType: model.MultiMatchMostFields})
	if tree.Query.MultiMatch.TieBreaker != mostFieldsTieBreaker {
		t.Errorf("TieBreaker = %v, want %v", tree.Query.MultiMatch.TieBreaker, mostFieldsTieBreaker)
	}
}

func TestCompose_Filters(t *testing.T) {
	req := model.SearchRequest{
		Query:         "x",
		Category:      "news",
		Tags:          []string{"a", "b"},
		Author:        "jdoe",
		PublishedFrom: "2026-01-01",
		PublishedTo:   "2026-02-01",
	}
	tree := Compose(req)

	if len(tree.Filters) != 4 {
		t.Fatalf("len(Filters) = %d, want 4", len(tree.Filters))
	}
	if tree.Filters[0].Kind != FilterTerm || tree.Filters[0].Term.Field != "category" {
		t.Errorf("filter[0] = %+v, want category term", tree.Filters[0])
	}
	if tree.Filters[1].Kind != FilterTerms || tree.Filters[1].Terms.Field != "tags" {
		t.Errorf("filter[1] = %+v, want tags terms", tree.Filters[1])
	}
	if tree.Filters[3].Kind != FilterDateRange {
		t.Errorf("filter[3] = %+v, want date_range", tree.Filters[3])
	}
}

func TestCompose_NoFiltersWhenEmpty(t *testing.T) {
	tree := Compose(model.SearchRequest{Query: "x"})
	if len(tree.Filters) != 0 {
		t.Errorf("len(Filters) = %d, want 0", len(tree.Filters))
	}
}

func TestCompose_RelevanceWithAllFunctions(t *testing.T) {
	req := model.SearchRequest{
		Query: "x",
		Sort:  model.SortRelevance,
		RankingTuning: model.RankingTuning{
			Recency: model.RecencyTuning{Enabled: true, Scale: "30d", Decay: 0.5, Weight: 1},
			Popularity: model.PopularityTuning{
				Enabled: true,
				Mode:    model.PopularityFieldValueFactor,
				Weight:  1,
			},
		},
	}
	tree := Compose(req)

	if tree.Query.Kind != NodeFunctionScore {
		t.Fatalf("Query.Kind = %s, want %s", tree.Query.Kind, NodeFunctionScore)
	}
	fsc := tree.Query.FunctionScore
	if len(fsc.Functions) != 2 {
		t.Fatalf("len(Functions) = %d, want 2 (recency + field_value_factor)", len(fsc.Functions))
	}
	if fsc.Functions[0].Recency == nil {
		t.Error("expected first function to be recency decay")
	}
	if fsc.Functions[0].Recency.Origin != "now" {
		t.Errorf("Recency.Origin = %s, want now", fsc.Functions[0].Recency.Origin)
	}
	if fsc.Functions[1].FieldValueFactor == nil {
		t.Error("expected second function to be field_value_factor")
	}
}

func TestCompose_RankFeatureMode(t *testing.T) {
	req := model.SearchRequest{
		Query: "x",
		Sort:  model.SortRelevance,
		RankingTuning: model.RankingTuning{
			Popularity: model.PopularityTuning{Enabled: true, Mode: model.PopularityRankFeature, Pivot: 5, Boost: 2},
		},
	}
	tree := Compose(req)
	fsc := tree.Query.FunctionScore
	if fsc == nil || len(fsc.Functions) != 1 || fsc.Functions[0].RankFeature == nil {
		t.Fatalf("expected a single rank_feature function, got %+v", tree.Query)
	}
}

func TestCompose_RecencySortOnlyDecay(t *testing.T) {
	req := model.SearchRequest{
		Query: "x",
		Sort:  model.SortRecency,
		RankingTuning: model.RankingTuning{
			Recency:    model.RecencyTuning{Enabled: true, Scale: "7d", Decay: 0.3, Weight: 1},
			Popularity: model.PopularityTuning{Enabled: true, Mode: model.PopularityFieldValueFactor, Weight: 1},
		},
	}
	tree := Compose(req)
	fsc := tree.Query.FunctionScore
	if fsc == nil || len(fsc.Functions) != 1 || fsc.Functions[0].Recency == nil {
		t.Fatalf("RECENCY sort should apply decay only, got %+v", tree.Query)
	}
	if len(tree.Sort) != 1 || tree.Sort[0].Field != "publishedAt" || tree.Sort[0].Ascending {
		t.Errorf("Sort = %+v, want publishedAt descending", tree.Sort)
	}
}

func TestCompose_PopularitySortFieldValueFactorOnly(t *testing.T) {
	req := model.SearchRequest{
		Query: "x",
		Sort:  model.SortPopularity,
		RankingTuning: model.RankingTuning{
			Recency: model.RecencyTuning{Enabled: true, Scale: "7d", Decay: 0.3, Weight: 1},
		},
	}
	tree := Compose(req)
	fsc := tree.Query.FunctionScore
	if fsc == nil || len(fsc.Functions) != 1 || fsc.Functions[0].FieldValueFactor == nil {
		t.Fatalf("POPULARITY sort should apply field_value_factor only, got %+v", tree.Query)
	}
}

func TestCompose_NoFunctionsReturnsUnwrappedQuery(t *testing.T) {
	tree := Compose(model.SearchRequest{Query: "x", Sort: model.SortRelevance})
	if tree.Query.Kind != NodeMultiMatch {
		t.Errorf("Kind = %s, want unwrapped multi_match when no functions apply", tree.Query.Kind)
	}
}

func TestCompose_Pagination(t *testing.T) {
	tree := Compose(model.SearchRequest{Query: "x", Page: 2, Size: 20})
	if tree.From != 40 || tree.Size != 20 {
		t.Errorf("From=%d Size=%d, want From=40 Size=20", tree.From, tree.Size)
	}
}

func TestComposeSuggest(t *testing.T) {
	tree := ComposeSuggest(SuggestRequest{Query: "he", Category: "news", Size: 5})

	if tree.Query.Kind != NodeFunctionScore {
		t.Fatalf("Kind = %s, want function_score", tree.Query.Kind)
	}
	inner := tree.Query.FunctionScore.Inner
	if inner.Kind != NodeMatchPhrasePrefix {
		t.Fatalf("Inner.Kind = %s, want match_phrase_prefix", inner.Kind)
	}
	if inner.MatchPhrasePrefix.MaxExpansions != suggestMaxExpansions {
		t.Errorf("MaxExpansions = %d, want %d", inner.MatchPhrasePrefix.MaxExpansions, suggestMaxExpansions)
	}
	if len(tree.Filters) != 1 {
		t.Fatalf("len(Filters) = %d, want 1", len(tree.Filters))
	}
	if len(tree.Sort) != 2 {
		t.Fatalf("len(Sort) = %d, want 2 (score then publishedAt)", len(tree.Sort))
	}
}

func TestComposeSuggest_NoCategoryNoFilter(t *testing.T) {
	tree := ComposeSuggest(SuggestRequest{Query: "he", Size: 5})
	if len(tree.Filters) != 0 {
		t.Errorf("len(Filters) = %d, want 0", len(tree.Filters))
	}
}
