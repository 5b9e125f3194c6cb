package bleveengine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// Engine implements engine.Port against a set of in-memory bleve indices,
// one per generation, plus an alias table the Alias Manager mutates through
// UpdateAliases. It never touches disk.
type Engine struct {
	mu      sync.RWMutex
	indices map[string]bleve.Index
	aliases map[string][]string // alias name -> index names it currently resolves to
}

// New returns an empty Engine with no indices and no alias bindings.
func New() *Engine {
	return &Engine{
		indices: make(map[string]bleve.Index),
		aliases: make(map[string][]string),
	}
}

func (e *Engine) CreateIndex(ctx context.Context, name string, template map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indices[name]; exists {
		return fmt.Errorf("index %s already exists", name)
	}

	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating index %s: %w", name, err)
	}
	e.indices[name] = idx
	return nil
}

func (e *Engine) IndexExists(ctx context.Context, name string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.indices[name]
	return exists, nil
}

func (e *Engine) DeleteIndex(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, exists := e.indices[name]
	if !exists {
		return fmt.Errorf("index %s does not exist", name)
	}
	if err := idx.Close(); err != nil {
		return fmt.Errorf("closing index %s: %w", name, err)
	}
	delete(e.indices, name)

	for alias, targets := range e.aliases {
		e.aliases[alias] = removeString(targets, name)
	}
	return nil
}

func (e *Engine) Count(ctx context.Context, index string) (int64, error) {
	idx, err := e.resolve(index)
	if err != nil {
		return 0, err
	}
	n, err := idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// Scan returns up to size documents from index starting at offset from,
// sorted ascending by id so repeated calls page deterministically.
func (e *Engine) Scan(ctx context.Context, index string, from, size int) ([]model.Document, error) {
	idx, err := e.resolve(index)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), size, from, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"id"})

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", index, err)
	}

	docs := make([]model.Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docs = append(docs, docFromFields(hit.ID, hit.Fields))
	}
	return docs, nil
}

func (e *Engine) Search(ctx context.Context, target string, tree query.Tree) (model.SearchResult, error) {
	idx, err := e.resolve(target)
	if err != nil {
		return model.SearchResult{}, err
	}

	base := translate(tree.Query)
	filters := translateFilters(tree.Filters)

	q := base
	if len(filters) > 0 {
		conjuncts := append([]bleveQuery.Query{base}, filters...)
		q = bleve.NewConjunctionQuery(conjuncts...)
	}

	size := tree.Size
	if size <= 0 {
		size = 10
	}
	req := bleve.NewSearchRequestOptions(q, size, tree.From, false)
	req.Fields = []string{"*"}
	if len(tree.Highlight) > 0 {
		req.Highlight = bleve.NewHighlight()
		for _, f := range tree.Highlight {
			req.Highlight.AddField(f)
		}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("searching %s: %w", target, err)
	}

	highlightsByID := make(map[string]map[string][]string, len(res.Hits))
	hits := make([]scoredHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc := docFromFields(hit.ID, hit.Fields)
		hits = append(hits, scoredHit{doc: doc, score: hit.Score})
		if len(hit.Fragments) > 0 {
			highlightsByID[hit.ID] = hit.Fragments
		}
	}
	hits = applyFunctions(tree.Query, hits)

	if len(tree.Sort) > 0 {
		sortHitsByClause(hits, tree.Sort)
	} else {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	}

	out := model.SearchResult{
		Total:  int64(res.Total),
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]model.SearchHit, 0, len(hits)),
	}
	for _, h := range hits {
		out.Hits = append(out.Hits, model.SearchHit{
			Document:   h.doc,
			Score:      h.score,
			Highlights: highlightsByID[h.doc.ID],
		})
	}
	return out, nil
}

func (e *Engine) Bulk(ctx context.Context, target string, ops []engine.BulkOp) ([]model.BulkItemResult, error) {
	idx, err := e.resolve(target)
	if err != nil {
		return nil, err
	}

	results := make([]model.BulkItemResult, len(ops))
	batch := idx.NewBatch()
	for i, op := range ops {
		if err := batch.Index(op.ID, docToFields(op.Document)); err != nil {
			results[i] = model.BulkItemResult{ID: op.ID, Status: "error", Error: err.Error()}
			continue
		}
		results[i] = model.BulkItemResult{ID: op.ID, Status: "indexed"}
	}

	if err := idx.Batch(batch); err != nil {
		for i := range results {
			if results[i].Status == "indexed" {
				results[i] = model.BulkItemResult{ID: ops[i].ID, Status: "error", Error: err.Error()}
			}
		}
	}
	return results, nil
}

func (e *Engine) Reindex(ctx context.Context, source, target string, waitForCompletion, refresh bool) (engine.ReindexResult, error) {
	start := time.Now()

	const pageSize = 500
	var failures []string
	from := 0
	for {
		docs, err := e.Scan(ctx, source, from, pageSize)
		if err != nil {
			return engine.ReindexResult{}, fmt.Errorf("scanning %s: %w", source, err)
		}
		if len(docs) == 0 {
			break
		}

		ops := make([]engine.BulkOp, len(docs))
		for i, d := range docs {
			ops[i] = engine.BulkOp{ID: d.DocumentID(), Document: d}
		}

		results, err := e.Bulk(ctx, target, ops)
		if err != nil {
			return engine.ReindexResult{}, fmt.Errorf("bulk indexing into %s: %w", target, err)
		}
		for _, r := range results {
			if r.Status != "indexed" {
				failures = append(failures, r.ID)
			}
		}

		from += len(docs)
		if len(docs) < pageSize {
			break
		}
	}

	return engine.ReindexResult{
		TookMs:   time.Since(start).Milliseconds(),
		Failures: failures,
	}, nil
}

func (e *Engine) UpdateAliases(ctx context.Context, actions []model.AliasAction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range actions {
		if a.Type == model.AliasActionAdd {
			if _, exists := e.indices[a.Index]; !exists {
				return fmt.Errorf("alias target index %s does not exist", a.Index)
			}
		}
	}

	for _, a := range actions {
		switch a.Type {
		case model.AliasActionRemove:
			if a.Index == "" {
				e.aliases[a.Alias] = nil
			} else {
				e.aliases[a.Alias] = removeString(e.aliases[a.Alias], a.Index)
			}
		case model.AliasActionAdd:
			if !containsString(e.aliases[a.Alias], a.Index) {
				e.aliases[a.Alias] = append(e.aliases[a.Alias], a.Index)
			}
		}
	}
	return nil
}

func (e *Engine) CurrentAliasState(ctx context.Context) (model.AliasState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return model.AliasState{
		ReadTargets:  append([]string{}, e.aliases[model.ReadAlias]...),
		WriteTargets: append([]string{}, e.aliases[model.WriteAlias]...),
	}, nil
}

// Refresh only checks that index resolves, returning an error if it does
// not: bleve's in-memory indices make writes immediately visible to
// subsequent searches, so there is nothing to flush.
func (e *Engine) Refresh(ctx context.Context, index string) error {
	_, err := e.resolve(index)
	return err
}

// resolve maps an alias or concrete index name to a bleve.Index.
func (e *Engine) resolve(target string) (bleve.Index, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if idx, exists := e.indices[target]; exists {
		return idx, nil
	}
	if targets, isAlias := e.aliases[target]; isAlias && len(targets) > 0 {
		if idx, exists := e.indices[targets[0]]; exists {
			return idx, nil
		}
	}
	return nil, fmt.Errorf("index or alias %s not found", target)
}

func removeString(s []string, v string) []string {
	out := s[:0:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func sortHitsByClause(hits []scoredHit, clauses []query.SortClause) {
	sort.SliceStable(hits, func(i, j int) bool {
		for _, c := range clauses {
			var less, greater bool
			switch c.Field {
			case "publishedAt":
				less = hits[i].doc.PublishedAt.Before(hits[j].doc.PublishedAt)
				greater = hits[i].doc.PublishedAt.After(hits[j].doc.PublishedAt)
			case "popularityScore":
				less = hits[i].doc.PopularityScore < hits[j].doc.PopularityScore
				greater = hits[i].doc.PopularityScore > hits[j].doc.PopularityScore
			default:
				continue
			}
			if !less && !greater {
				continue
			}
			if c.Ascending {
				return less
			}
			return greater
		}
		return false
	})
}
