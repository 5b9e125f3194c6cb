package query

import (
	"github.com/Junhan0037/SearchFoundry/internal/model"
)

const (
	titleBoost   = 4.0
	summaryBoost = 2.0
	bodyBoost    = 1.0

	mostFieldsTieBreaker = 0.2

	suggestMaxExpansions = 50
)

// Compose turns a SearchRequest into the engine-native scoring tree. It is
// pure: given the same request it always produces the same tree, and it
// never calls the engine or reads the clock itself — the recency decay's
// "now" origin is a declaration the engine evaluates at query time.
func Compose(req model.SearchRequest) Tree {
	tree := Tree{
		Filters:    composeFilters(req),
		From:       req.Page * req.Size,
		Size:       req.Size,
		TrackTotal: true,
		Highlight:  []string{"title", "summary", "body"},
	}

	textMatch := composeTextMatch(req)
	tree.Query = wrapFunctionScore(req, textMatch)

	if req.Sort == model.SortRecency {
		tree.Sort = []SortClause{{Field: "publishedAt", Ascending: false}}
	}

	return tree
}

func composeTextMatch(req model.SearchRequest) Node {
	mmType := req.MultiMatchType
	if mmType == "" {
		mmType = model.MultiMatchBestFields
	}

	clause := &MultiMatchClause{
		Query: req.Query,
		Fields: map[string]float64{
			"title":   titleBoost,
			"summary": summaryBoost,
			"body":    bodyBoost,
		},
		Type: string(mmType),
	}
	if mmType == model.MultiMatchMostFields {
		clause.TieBreaker = mostFieldsTieBreaker
	}

	return Node{Kind: NodeMultiMatch, MultiMatch: clause}
}

// wrapFunctionScore applies the sort-dependent function score wrapper:
// RELEVANCE gets the rank-feature popularity clause (if enabled in that
// mode), recency decay (if enabled), and field-value-factor popularity (if
// enabled in that mode); RECENCY gets recency decay only; POPULARITY gets
// field-value-factor only. If no function applies, the bare inner query is
// returned unwrapped.
func wrapFunctionScore(req model.SearchRequest, inner Node) Node {
	tuning := req.RankingTuning
	var functions []ScoringFunction

	switch req.Sort {
	case model.SortRelevance:
		if tuning.Popularity.Enabled && tuning.Popularity.Mode == model.PopularityRankFeature {
			functions = append(functions, ScoringFunction{RankFeature: &RankFeatureClause{
				Field: "popularityScore",
				Pivot: tuning.Popularity.Pivot,
				Boost: tuning.Popularity.Boost,
			}})
		}
		if tuning.Recency.Enabled {
			functions = append(functions, ScoringFunction{Recency: recencyFunction(tuning.Recency)})
		}
		if tuning.Popularity.Enabled && tuning.Popularity.Mode == model.PopularityFieldValueFactor {
			functions = append(functions, ScoringFunction{FieldValueFactor: fieldValueFactorFunction(tuning.Popularity)})
		}
	case model.SortRecency:
		if tuning.Recency.Enabled {
			functions = append(functions, ScoringFunction{Recency: recencyFunction(tuning.Recency)})
		}
	case model.SortPopularity:
		functions = append(functions, ScoringFunction{FieldValueFactor: fieldValueFactorFunction(tuning.Popularity)})
	}

	if len(functions) == 0 {
		return inner
	}

	scoreMode := tuning.ScoreMode
	if scoreMode == "" {
		scoreMode = "SUM"
	}
	boostMode := tuning.BoostMode
	if boostMode == "" {
		boostMode = "SUM"
	}

	return Node{
		Kind: NodeFunctionScore,
		FunctionScore: &FunctionScoreClause{
			Inner:     &inner,
			Functions: functions,
			ScoreMode: scoreMode,
			BoostMode: boostMode,
		},
	}
}

func recencyFunction(t model.RecencyTuning) *RecencyFunction {
	return &RecencyFunction{
		Field:  "publishedAt",
		Origin: "now",
		Scale:  t.Scale,
		Decay:  t.Decay,
		Weight: t.Weight,
	}
}

func fieldValueFactorFunction(t model.PopularityTuning) *FieldValueFactorFunction {
	return &FieldValueFactorFunction{
		Field:    "popularityScore",
		Modifier: t.Modifier,
		Missing:  t.Missing,
		Weight:   t.Weight,
	}
}

func composeFilters(req model.SearchRequest) []Filter {
	var filters []Filter

	if req.Category != "" {
		filters = append(filters, Filter{Kind: FilterTerm, Term: &TermFilter{Field: "category", Value: req.Category}})
	}
	if len(req.Tags) > 0 {
		filters = append(filters, Filter{Kind: FilterTerms, Terms: &TermsFilter{Field: "tags", Values: req.Tags}})
	}
	if req.Author != "" {
		filters = append(filters, Filter{Kind: FilterTerm, Term: &TermFilter{Field: "author", Value: req.Author}})
	}
	if req.PublishedFrom != "" || req.PublishedTo != "" {
		filters = append(filters, Filter{
			Kind: FilterDateRange,
			DateRange: &DateRangeFilter{
				Field: "publishedAt",
				From:  req.PublishedFrom,
				To:    req.PublishedTo,
			},
		})
	}

	return filters
}

// SuggestRequest is the input to ComposeSuggest.
type SuggestRequest struct {
	Query    string
	Category string
	Size     int
}

// ComposeSuggest builds the scoring tree for the suggest endpoint:
// match_phrase_prefix on titleAutocomplete, optional category filter,
// ordered by score then publishedAt descending, with a popularity-only
// function score.
func ComposeSuggest(req SuggestRequest) Tree {
	inner := Node{
		Kind: NodeMatchPhrasePrefix,
		MatchPhrasePrefix: &MatchPhrasePrefixClause{
			Field:         "titleAutocomplete",
			Query:         req.Query,
			MaxExpansions: suggestMaxExpansions,
		},
	}

	wrapped := Node{
		Kind: NodeFunctionScore,
		FunctionScore: &FunctionScoreClause{
			Inner: &inner,
			Functions: []ScoringFunction{
				{FieldValueFactor: &FieldValueFactorFunction{Field: "popularityScore", Weight: 1.0}},
			},
			ScoreMode: "SUM",
			BoostMode: "SUM",
		},
	}

	tree := Tree{
		Query: wrapped,
		Size:  req.Size,
		Sort: []SortClause{
			{Field: "_score", Ascending: false},
			{Field: "publishedAt", Ascending: false},
		},
	}

	if req.Category != "" {
		tree.Filters = []Filter{{Kind: FilterTerm, Term: &TermFilter{Field: "category", Value: req.Category}}}
	}

	return tree
}
