package httpengine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// Engine implements engine.Port as a REST client against a running engine.
// It carries no local state beyond the transport: alias bindings, index
// contents and document counts all live server-side.
type Engine struct {
	client *Client
}

// New wraps cfg in an Engine.
func New(cfg Config) *Engine {
	return &Engine{client: NewClient(cfg)}
}

func (e *Engine) CreateIndex(ctx context.Context, name string, template map[string]any) error {
	body := template
	if body == nil {
		body = map[string]any{}
	}
	return e.client.put(ctx, "/"+name, body, nil)
}

func (e *Engine) IndexExists(ctx context.Context, name string) (bool, error) {
	err := e.client.get(ctx, "/"+name, nil)
	if err == nil {
		return true, nil
	}
	var engErr *EngineError
	if errors.As(err, &engErr) && engErr.StatusCode == 404 {
		return false, nil
	}
	return false, err
}

func (e *Engine) DeleteIndex(ctx context.Context, name string) error {
	return e.client.deleteReq(ctx, "/"+name)
}

func (e *Engine) Count(ctx context.Context, index string) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := e.client.get(ctx, "/"+index+"/_count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (e *Engine) Scan(ctx context.Context, index string, from, size int) ([]model.Document, error) {
	body := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"sort":  []any{map[string]any{"id": map[string]any{"order": "asc"}}},
		"from":  from,
		"size":  size,
	}

	var resp searchResponse
	if err := e.client.post(ctx, "/"+index+"/_search", body, &resp); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", index, err)
	}

	docs := make([]model.Document, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []searchHitWire `json:"hits"`
	} `json:"hits"`
}

type searchHitWire struct {
	ID         string              `json:"_id"`
	Score      float64             `json:"_score"`
	Source     model.Document      `json:"_source"`
	Highlight  map[string][]string `json:"highlight,omitempty"`
}

func (e *Engine) Search(ctx context.Context, target string, tree query.Tree) (model.SearchResult, error) {
	body := buildQueryBody(tree)

	var resp searchResponse
	if err := e.client.post(ctx, "/"+target+"/_search", body, &resp); err != nil {
		return model.SearchResult{}, fmt.Errorf("searching %s: %w", target, err)
	}

	result := model.SearchResult{
		Total:  resp.Hits.Total.Value,
		TookMs: resp.Took,
		Hits:   make([]model.SearchHit, 0, len(resp.Hits.Hits)),
	}
	for _, h := range resp.Hits.Hits {
		result.Hits = append(result.Hits, model.SearchHit{
			Document:   h.Source,
			Score:      h.Score,
			Highlights: h.Highlight,
		})
	}
	return result, nil
}

func (e *Engine) Bulk(ctx context.Context, target string, ops []engine.BulkOp) ([]model.BulkItemResult, error) {
	var buf strings.Builder
	enc := newNDJSONEncoder(&buf)
	for _, op := range ops {
		if err := enc.encode(map[string]any{
			"index": map[string]any{"_index": target, "_id": op.ID},
		}); err != nil {
			return nil, err
		}
		if err := enc.encode(op.Document); err != nil {
			return nil, err
		}
	}

	var resp struct {
		Items []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  *struct {
					Reason string `json:"reason"`
				} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := e.client.postRaw(ctx, "/_bulk", buf.String(), &resp); err != nil {
		return nil, fmt.Errorf("bulk indexing into %s: %w", target, err)
	}

	results := make([]model.BulkItemResult, len(resp.Items))
	for i, item := range resp.Items {
		if item.Index.Error != nil || item.Index.Status >= 300 {
			reason := ""
			if item.Index.Error != nil {
				reason = item.Index.Error.Reason
			}
			results[i] = model.BulkItemResult{ID: item.Index.ID, Status: "error", Error: reason}
			continue
		}
		results[i] = model.BulkItemResult{ID: item.Index.ID, Status: "indexed"}
	}
	return results, nil
}

func (e *Engine) Reindex(ctx context.Context, source, target string, waitForCompletion, refresh bool) (engine.ReindexResult, error) {
	start := time.Now()

	body := map[string]any{
		"source": map[string]any{"index": source},
		"dest":   map[string]any{"index": target},
	}
	path := "/_reindex?wait_for_completion=" + strconv.FormatBool(waitForCompletion)
	if refresh {
		path += "&refresh=true"
	}

	var resp struct {
		Took     int64 `json:"took"`
		Failures []struct {
			ID    string `json:"_id"`
			Cause struct {
				Reason string `json:"reason"`
			} `json:"cause"`
		} `json:"failures"`
	}
	if err := e.client.post(ctx, path, body, &resp); err != nil {
		return engine.ReindexResult{}, fmt.Errorf("reindexing %s into %s: %w", source, target, err)
	}

	failures := make([]string, 0, len(resp.Failures))
	for _, f := range resp.Failures {
		failures = append(failures, f.ID)
	}

	return engine.ReindexResult{
		TookMs:   time.Since(start).Milliseconds(),
		Failures: failures,
	}, nil
}

func (e *Engine) UpdateAliases(ctx context.Context, actions []model.AliasAction) error {
	return e.client.post(ctx, "/_aliases", buildAliasActions(actions), nil)
}

func (e *Engine) CurrentAliasState(ctx context.Context) (model.AliasState, error) {
	var resp map[string]struct {
		Aliases map[string]struct {
			IsWriteIndex bool `json:"is_write_index"`
		} `json:"aliases"`
	}
	if err := e.client.get(ctx, "/_alias", &resp); err != nil {
		return model.AliasState{}, fmt.Errorf("fetching alias state: %w", err)
	}

	state := model.AliasState{}
	for index, entry := range resp {
		for alias := range entry.Aliases {
			switch alias {
			case model.ReadAlias:
				state.ReadTargets = append(state.ReadTargets, index)
			case model.WriteAlias:
				state.WriteTargets = append(state.WriteTargets, index)
			}
		}
	}
	return state, nil
}

func (e *Engine) Refresh(ctx context.Context, index string) error {
	return e.client.post(ctx, "/"+index+"/_refresh", nil, nil)
}
