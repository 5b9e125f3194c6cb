package bleveengine

import (
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// translate builds the bleve query matching a scoring tree's inner clause
// (multi_match / match_phrase_prefix), unwrapping a function_score node to
// its Inner — the additive functions themselves are applied as a
// client-side re-scoring pass in rescore.go, since bleve has no native
// function_score/rank_feature/decay equivalent.
func translate(n query.Node) bleveQuery.Query {
	switch n.Kind {
	case query.NodeFunctionScore:
		if n.FunctionScore.Inner != nil {
			return translate(*n.FunctionScore.Inner)
		}
		return bleve.NewMatchAllQuery()
	case query.NodeMultiMatch:
		return translateMultiMatch(n.MultiMatch)
	case query.NodeMatchPhrasePrefix:
		return translateMatchPhrasePrefix(n.MatchPhrasePrefix)
	case query.NodeRankFeature:
		return bleve.NewMatchAllQuery()
	default:
		return bleve.NewMatchAllQuery()
	}
}

func translateMultiMatch(c *query.MultiMatchClause) bleveQuery.Query {
	if c == nil || c.Query == "" {
		return bleve.NewMatchAllQuery()
	}

	var disjuncts []bleveQuery.Query
	for field, boost := range c.Fields {
		mq := bleve.NewMatchQuery(c.Query)
		mq.SetField(field)
		mq.SetBoost(boost)
		disjuncts = append(disjuncts, mq)
	}

	dq := bleve.NewDisjunctionQuery(disjuncts...)
	if c.Type == "BEST_FIELDS" {
		dq.SetMin(1)
	}
	return dq
}

func translateMatchPhrasePrefix(c *query.MatchPhrasePrefixClause) bleveQuery.Query {
	if c == nil || c.Query == "" {
		return bleve.NewMatchAllQuery()
	}
	pq := bleve.NewPrefixQuery(c.Query)
	pq.SetField(c.Field)
	return pq
}

func translateFilters(filters []query.Filter) []bleveQuery.Query {
	var conjuncts []bleveQuery.Query
	for _, f := range filters {
		switch f.Kind {
		case query.FilterTerm:
			tq := bleve.NewTermQuery(f.Term.Value)
			tq.SetField(f.Term.Field)
			conjuncts = append(conjuncts, tq)
		case query.FilterTerms:
			var disjuncts []bleveQuery.Query
			for _, v := range f.Terms.Values {
				tq := bleve.NewTermQuery(v)
				tq.SetField(f.Terms.Field)
				disjuncts = append(disjuncts, tq)
			}
			conjuncts = append(conjuncts, bleve.NewDisjunctionQuery(disjuncts...))
		case query.FilterDateRange:
			var from, to *time.Time
			if f.DateRange.From != "" {
				if t, err := time.Parse(time.RFC3339, f.DateRange.From); err == nil {
					from = &t
				}
			}
			if f.DateRange.To != "" {
				if t, err := time.Parse(time.RFC3339, f.DateRange.To); err == nil {
					to = &t
				}
			}
			conjuncts = append(conjuncts, bleve.NewDateRangeInclusiveQuery(derefTime(from), derefTime(to), boolPtr(true), boolPtr(true)))
		}
	}
	return conjuncts
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func boolPtr(b bool) *bool { return &b }
