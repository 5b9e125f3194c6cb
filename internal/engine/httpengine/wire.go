package httpengine

import (
	"strconv"
	"strings"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// buildQueryBody translates a scoring tree into an Elasticsearch/OpenSearch
// query DSL body, unlike bleveengine's translator this speaks the engine's
// native function_score/gauss/rank_feature clauses directly.
func buildQueryBody(tree query.Tree) map[string]any {
	inner := translateNode(tree.Query)

	filters := translateFilters(tree.Filters)
	if len(filters) > 0 {
		inner = map[string]any{
			"bool": map[string]any{
				"must":   []any{inner},
				"filter": filters,
			},
		}
	}

	body := map[string]any{
		"query": inner,
		"from":  tree.From,
		"size":  tree.Size,
	}
	if tree.TrackTotal {
		body["track_total_hits"] = true
	}
	if len(tree.Highlight) > 0 {
		fields := map[string]any{}
		for _, f := range tree.Highlight {
			fields[f] = map[string]any{}
		}
		body["highlight"] = map[string]any{"fields": fields}
	}
	if len(tree.Sort) > 0 {
		sorts := make([]any, 0, len(tree.Sort))
		for _, s := range tree.Sort {
			order := "desc"
			if s.Ascending {
				order = "asc"
			}
			sorts = append(sorts, map[string]any{s.Field: map[string]any{"order": order}})
		}
		body["sort"] = sorts
	}
	return body
}

func translateNode(n query.Node) map[string]any {
	switch n.Kind {
	case query.NodeMultiMatch:
		return translateMultiMatch(n.MultiMatch)
	case query.NodeMatchPhrasePrefix:
		return translateMatchPhrasePrefix(n.MatchPhrasePrefix)
	case query.NodeRankFeature:
		return translateRankFeature(n.RankFeature)
	case query.NodeFunctionScore:
		return translateFunctionScore(n.FunctionScore)
	default:
		return map[string]any{"match_all": map[string]any{}}
	}
}

func translateMultiMatch(c *query.MultiMatchClause) map[string]any {
	if c == nil || c.Query == "" {
		return map[string]any{"match_all": map[string]any{}}
	}

	fields := make([]string, 0, len(c.Fields))
	for field, boost := range c.Fields {
		if boost != 1 {
			fields = append(fields, fieldWithBoost(field, boost))
		} else {
			fields = append(fields, field)
		}
	}

	mm := map[string]any{
		"query":  c.Query,
		"fields": fields,
		"type":   multiMatchTypeWire(c.Type),
	}
	if c.Type == "MOST_FIELDS" && c.TieBreaker != 0 {
		mm["tie_breaker"] = c.TieBreaker
	}
	return map[string]any{"multi_match": mm}
}

func multiMatchTypeWire(t string) string {
	switch t {
	case "BEST_FIELDS":
		return "best_fields"
	case "MOST_FIELDS":
		return "most_fields"
	case "CROSS_FIELDS":
		return "cross_fields"
	default:
		return "best_fields"
	}
}

func fieldWithBoost(field string, boost float64) string {
	return field + "^" + trimFloat(boost)
}

func translateMatchPhrasePrefix(c *query.MatchPhrasePrefixClause) map[string]any {
	if c == nil || c.Query == "" {
		return map[string]any{"match_all": map[string]any{}}
	}
	mpp := map[string]any{
		"query": c.Query,
	}
	if c.MaxExpansions > 0 {
		mpp["max_expansions"] = c.MaxExpansions
	}
	return map[string]any{
		"match_phrase_prefix": map[string]any{c.Field: mpp},
	}
}

func translateRankFeature(c *query.RankFeatureClause) map[string]any {
	if c == nil {
		return map[string]any{"match_all": map[string]any{}}
	}
	rf := map[string]any{}
	if c.Pivot > 0 {
		rf["saturation"] = map[string]any{"pivot": c.Pivot}
	}
	if c.Boost != 0 {
		rf["boost"] = c.Boost
	}
	return map[string]any{
		"rank_feature": mergeField(rf, c.Field),
	}
}

func mergeField(m map[string]any, field string) map[string]any {
	m["field"] = field
	return m
}

func translateFunctionScore(c *query.FunctionScoreClause) map[string]any {
	if c == nil {
		return map[string]any{"match_all": map[string]any{}}
	}

	var inner map[string]any
	if c.Inner != nil {
		inner = translateNode(*c.Inner)
	} else {
		inner = map[string]any{"match_all": map[string]any{}}
	}

	functions := make([]any, 0, len(c.Functions))
	for _, fn := range c.Functions {
		switch {
		case fn.Recency != nil:
			functions = append(functions, translateRecencyFunction(fn.Recency))
		case fn.FieldValueFactor != nil:
			functions = append(functions, translateFieldValueFactor(fn.FieldValueFactor))
		case fn.RankFeature != nil:
			functions = append(functions, translateRankFeature(fn.RankFeature))
		}
	}

	scoreMode := c.ScoreMode
	if scoreMode == "" {
		scoreMode = "SUM"
	}
	boostMode := c.BoostMode
	if boostMode == "" {
		boostMode = "SUM"
	}

	return map[string]any{
		"function_score": map[string]any{
			"query":      inner,
			"functions":  functions,
			"score_mode": lower(scoreMode),
			"boost_mode": lower(boostMode),
		},
	}
}

func translateRecencyFunction(f *query.RecencyFunction) map[string]any {
	origin := f.Origin
	if origin == "" {
		origin = "now"
	}
	return map[string]any{
		"gauss": map[string]any{
			f.Field: map[string]any{
				"origin": origin,
				"scale":  f.Scale,
				"decay":  f.Decay,
			},
		},
		"weight": f.Weight,
	}
}

func translateFieldValueFactor(f *query.FieldValueFactorFunction) map[string]any {
	fvf := map[string]any{
		"field":  f.Field,
		"factor": f.Factor,
	}
	if f.Modifier != "" {
		fvf["modifier"] = f.Modifier
	}
	if f.Missing != 0 {
		fvf["missing"] = f.Missing
	}
	return map[string]any{
		"field_value_factor": fvf,
		"weight":             f.Weight,
	}
}

func translateFilters(filters []query.Filter) []any {
	out := make([]any, 0, len(filters))
	for _, f := range filters {
		switch f.Kind {
		case query.FilterTerm:
			out = append(out, map[string]any{
				"term": map[string]any{f.Term.Field: f.Term.Value},
			})
		case query.FilterTerms:
			out = append(out, map[string]any{
				"terms": map[string]any{f.Terms.Field: f.Terms.Values},
			})
		case query.FilterDateRange:
			rng := map[string]any{}
			if f.DateRange.From != "" {
				rng["gte"] = f.DateRange.From
			}
			if f.DateRange.To != "" {
				rng["lte"] = f.DateRange.To
			}
			out = append(out, map[string]any{
				"range": map[string]any{f.DateRange.Field: rng},
			})
		}
	}
	return out
}

// buildAliasActions translates the atomic alias transaction into the
// engine's `_aliases` wire body.
func buildAliasActions(actions []model.AliasAction) map[string]any {
	wireActions := make([]any, 0, len(actions))
	for _, a := range actions {
		switch a.Type {
		case model.AliasActionRemove:
			entry := map[string]any{"alias": a.Alias}
			if a.Index != "" {
				entry["index"] = a.Index
			} else {
				entry["index"] = "*"
			}
			wireActions = append(wireActions, map[string]any{"remove": entry})
		case model.AliasActionAdd:
			entry := map[string]any{"alias": a.Alias, "index": a.Index}
			if a.IsWriteIndex {
				entry["is_write_index"] = true
			}
			wireActions = append(wireActions, map[string]any{"add": entry})
		}
	}
	return map[string]any{"actions": wireActions}
}

func lower(s string) string {
	return strings.ToLower(s)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
