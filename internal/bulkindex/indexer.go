// Package bulkindex chunks a document set into bounded-size batches and
// indexes them concurrently, retrying only the items that failed.
package bulkindex

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
)

const (
	// DefaultChunkSize is the number of documents submitted per bulk call.
	DefaultChunkSize = 500
	// DefaultMaxRetries is how many additional attempts a failed item gets.
	DefaultMaxRetries = 2
	// DefaultWorkers bounds the number of chunks indexed concurrently.
	DefaultWorkers = 4
)

// Options configures one Bulk call.
type Options struct {
	Target     string
	ChunkSize  int
	MaxRetries int
	Workers    int
	// Backoff, if set, is called before each retry attempt (1-indexed) and
	// its return value is slept before resubmitting the failed items. Nil
	// means no delay is imposed between retries.
	Backoff func(attempt int) time.Duration
}

func (o Options) withDefaults() Options {
	if o.Target == "" {
		o.Target = model.WriteAlias
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// Indexer submits documents to an engine.Port in chunked, retried batches.
type Indexer struct {
	port engine.Port
}

// New wraps port in an Indexer.
func New(port engine.Port) *Indexer {
	return &Indexer{port: port}
}

// Bulk indexes docs into opts.Target, chunking and retrying failed items up
// to opts.MaxRetries times, and returns the aggregate outcome.
func (ix *Indexer) Bulk(ctx context.Context, docs []model.Document, opts Options) (model.BulkIndexResult, error) {
	opts = opts.withDefaults()
	start := time.Now()

	chunks := chunkDocuments(docs, opts.ChunkSize)

	var successCount int64
	var attemptsTotal int64
	failuresCh := make(chan model.BulkFailure, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			success, failures, attempts := ix.indexChunkWithRetries(gctx, chunk, opts)
			atomic.AddInt64(&successCount, int64(success))
			atomic.AddInt64(&attemptsTotal, int64(attempts))
			for _, f := range failures {
				failuresCh <- f
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.BulkIndexResult{}, err
	}
	close(failuresCh)

	failures := make([]model.BulkFailure, 0, len(docs))
	for f := range failuresCh {
		failures = append(failures, f)
	}

	return model.BulkIndexResult{
		Total:    len(docs),
		Success:  int(successCount),
		Failed:   len(failures),
		Failures: failures,
		Attempts: int(attemptsTotal),
		TookMs:   time.Since(start).Milliseconds(),
	}, nil
}

// indexChunkWithRetries submits one chunk, resubmitting only the items that
// failed up to opts.MaxRetries additional times.
func (ix *Indexer) indexChunkWithRetries(ctx context.Context, chunk []model.Document, opts Options) (success int, failures []model.BulkFailure, attempts int) {
	pending := chunk

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		attempts++
		if attempt > 0 && opts.Backoff != nil {
			if d := opts.Backoff(attempt); d > 0 {
				timer := time.NewTimer(d)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
		}

		ops := make([]engine.BulkOp, len(pending))
		for i, d := range pending {
			ops[i] = engine.BulkOp{ID: d.DocumentID(), Document: d}
		}

		results, err := ix.port.Bulk(ctx, opts.Target, ops)
		if err != nil {
			// The whole submission failed; every pending item is retried
			// (or fails terminally on the last attempt).
			if attempt == opts.MaxRetries {
				for _, d := range pending {
					failures = append(failures, model.BulkFailure{ID: d.DocumentID(), Status: "error", Reason: err.Error(), Attempt: attempt + 1})
				}
				return success, failures, attempts
			}
			continue
		}

		byID := make(map[string]model.Document, len(pending))
		for _, d := range pending {
			byID[d.DocumentID()] = d
		}

		var retry []model.Document
		for _, r := range results {
			if r.Status == "indexed" {
				success++
				continue
			}
			if attempt == opts.MaxRetries {
				failures = append(failures, model.BulkFailure{ID: r.ID, Status: "error", Reason: r.Error, Attempt: attempt + 1})
				continue
			}
			if d, ok := byID[r.ID]; ok {
				retry = append(retry, d)
			}
		}

		if len(retry) == 0 {
			return success, failures, attempts
		}
		pending = retry
	}

	return success, failures, attempts
}

func chunkDocuments(docs []model.Document, size int) [][]model.Document {
	if len(docs) == 0 {
		return nil
	}
	var chunks [][]model.Document
	for i := 0; i < len(docs); i += size {
		end := i + size
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[i:end])
	}
	return chunks
}
