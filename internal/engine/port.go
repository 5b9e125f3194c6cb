// Package engine defines the narrow port the core consumes an external
// full-text search engine through, plus the bulk/reindex/alias types that
// cross that boundary.
package engine

import (
	"context"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// Port is the abstract interface the core requires from the search engine.
// Every method blocks until the engine responds; none busy-wait.
type Port interface {
	// CreateIndex creates name from the given template and fails if it
	// already exists.
	CreateIndex(ctx context.Context, name string, template map[string]any) error
	// IndexExists reports whether name currently exists.
	IndexExists(ctx context.Context, name string) (bool, error)
	// DeleteIndex removes name.
	DeleteIndex(ctx context.Context, name string) error
	// Count returns the number of documents in index.
	Count(ctx context.Context, index string) (int64, error)
	// Scan returns up to size documents starting at offset from, sorted
	// ascending by document id, to guarantee deterministic pagination for
	// hashing.
	Scan(ctx context.Context, index string, from, size int) ([]model.Document, error)
	// Search executes a composed scoring tree against target (an alias or
	// a concrete index name).
	Search(ctx context.Context, target string, tree query.Tree) (model.SearchResult, error)
	// Bulk submits ops to target and preserves per-item order in the
	// response.
	Bulk(ctx context.Context, target string, ops []BulkOp) ([]model.BulkItemResult, error)
	// Reindex copies every document from source into target.
	Reindex(ctx context.Context, source, target string, waitForCompletion, refresh bool) (ReindexResult, error)
	// UpdateAliases applies actions as a single atomic transaction.
	UpdateAliases(ctx context.Context, actions []model.AliasAction) error
	// CurrentAliasState returns the indices each alias currently resolves to.
	CurrentAliasState(ctx context.Context) (model.AliasState, error)
	// Refresh makes recently written documents visible to search.
	Refresh(ctx context.Context, index string) error
}

// BulkOp is one item of a bulk() call: index the document under id.
type BulkOp struct {
	ID       string
	Document model.Document
}

// ReindexResult is the engine's reindex() response.
type ReindexResult struct {
	TookMs   int64
	Failures []string
}
