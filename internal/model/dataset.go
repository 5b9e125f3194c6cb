package model

import (
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

// QueryFilters are the optional structured constraints a query-set entry
// may carry, mirroring SearchRequest's filter fields.
type QueryFilters struct {
	Category        string   `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Author          string   `json:"author,omitempty"`
	PublishedAtFrom string   `json:"publishedAtFrom,omitempty"`
	PublishedAtTo   string   `json:"publishedAtTo,omitempty"`
}

// QueryEntry is one query within a Query Set.
type QueryEntry struct {
	QueryID   string        `json:"queryId"`
	QueryText string        `json:"queryText"`
	Intent    string        `json:"intent,omitempty"`
	Filters   *QueryFilters `json:"filters,omitempty"`
}

// QuerySet is an ordered, immutable list of queries loaded from file.
type QuerySet struct {
	DatasetID string       `json:"datasetId"`
	Queries   []QueryEntry `json:"queries"`
}

// Validate enforces queryId uniqueness within the set.
func (qs *QuerySet) Validate() error {
	seen := make(map[string]bool, len(qs.Queries))
	for _, q := range qs.Queries {
		if q.QueryID == "" {
			return apperrors.BadRequestError("query set contains an entry with an empty queryId")
		}
		if seen[q.QueryID] {
			return apperrors.BadRequestError("duplicate queryId in query set: " + q.QueryID)
		}
		seen[q.QueryID] = true
	}
	return nil
}

// Lookup returns the query entry for an id.
func (qs *QuerySet) Lookup(queryID string) (QueryEntry, bool) {
	for _, q := range qs.Queries {
		if q.QueryID == queryID {
			return q, true
		}
	}
	return QueryEntry{}, false
}

// Judgement is a single (queryId, docId) relevance grade.
type Judgement struct {
	QueryID string `json:"queryId"`
	DocID   string `json:"docId"`
	Grade   int    `json:"grade"`
	Note    string `json:"note,omitempty"`
}

// JudgementSet is an immutable list of judgements loaded from file, paired
// with a query set by dataset id.
type JudgementSet struct {
	DatasetID  string      `json:"datasetId"`
	Judgements []Judgement `json:"judgements"`
}

// Validate enforces that every judgement's grade is in {0,1,2,3} and every
// judgement's queryId exists in the paired query set.
func (js *JudgementSet) Validate(qs *QuerySet) error {
	for _, j := range js.Judgements {
		if j.Grade < 0 || j.Grade > 3 {
			return apperrors.BadRequestError("judgement grade out of range [0,3]")
		}
		if _, ok := qs.Lookup(j.QueryID); !ok {
			return apperrors.BadRequestError("judgement queryId not present in query set: " + j.QueryID)
		}
	}
	return nil
}

// ByQuery groups judgements by queryId, then by docId, for O(1) lookup
// during evaluation.
func (js *JudgementSet) ByQuery() map[string]map[string]Judgement {
	out := make(map[string]map[string]Judgement)
	for _, j := range js.Judgements {
		m, ok := out[j.QueryID]
		if !ok {
			m = make(map[string]Judgement)
			out[j.QueryID] = m
		}
		m[j.DocID] = j
	}
	return out
}
