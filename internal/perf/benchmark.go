// Package perf implements the Performance Benchmarker and its comparator:
// measuring per-query and pooled search latency over repeated iterations
// and diffing two benchmark runs.
package perf

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/dataset"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// Benchmarker runs repeated searches for every query in a dataset and
// reports latency/throughput statistics.
type Benchmarker struct {
	loader *dataset.Loader
	port   engine.Port
}

func NewBenchmarker(loader *dataset.Loader, port engine.Port) *Benchmarker {
	return &Benchmarker{loader: loader, port: port}
}

// Options configures one benchmark run.
type Options struct {
	Iterations      int
	Warmups         int
	TargetIndex     string
	ReportIDPrefix  string
}

// Run loads datasetID's query set (which must be non-empty), executes
// Warmups discarded searches followed by Iterations recorded searches per
// query at size=topK, and aggregates per-query and pooled latency
// statistics plus QPS.
func (b *Benchmarker) Run(ctx context.Context, datasetID string, topK int, opts Options) (model.BenchmarkResult, error) {
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	if opts.Warmups < 0 {
		opts.Warmups = 0
	}

	qs, err := b.loader.LoadQuerySet(datasetID)
	if err != nil {
		return model.BenchmarkResult{}, err
	}
	if len(qs.Queries) == 0 {
		return model.BenchmarkResult{}, apperrors.BadRequestError(fmt.Sprintf("dataset %s has no queries to benchmark", datasetID))
	}

	target := opts.TargetIndex
	if target == "" {
		target = model.ReadAlias
	}

	perQuery := make([]model.QueryLatency, 0, len(qs.Queries))
	pooled := make([]float64, 0, len(qs.Queries)*opts.Iterations)

	started := time.Now()
	for _, q := range qs.Queries {
		req := model.SearchRequest{Query: q.QueryText, Sort: model.SortRelevance, Size: topK, TargetIndex: target}
		if q.Filters != nil {
			req.Category = q.Filters.Category
			req.Tags = q.Filters.Tags
			req.Author = q.Filters.Author
			req.PublishedFrom = q.Filters.PublishedAtFrom
			req.PublishedTo = q.Filters.PublishedAtTo
		}
		tree := query.Compose(req)

		for i := 0; i < opts.Warmups; i++ {
			if _, err := b.port.Search(ctx, target, tree); err != nil {
				return model.BenchmarkResult{}, fmt.Errorf("warmup search for query %s: %w", q.QueryID, err)
			}
		}

		samples := make([]float64, 0, opts.Iterations)
		for i := 0; i < opts.Iterations; i++ {
			result, err := b.port.Search(ctx, target, tree)
			if err != nil {
				return model.BenchmarkResult{}, fmt.Errorf("search for query %s: %w", q.QueryID, err)
			}
			samples = append(samples, float64(result.TookMs))
		}

		pooled = append(pooled, samples...)
		perQuery = append(perQuery, model.QueryLatency{QueryID: q.QueryID, Samples: samples, Stats: statsOf(samples)})
	}
	elapsed := time.Since(started)

	totalSamples := len(pooled)
	elapsedSeconds := elapsed.Seconds()
	var qps float64
	if elapsedSeconds > 0 {
		qps = float64(totalSamples) / elapsedSeconds
	} else {
		qps = float64(totalSamples)
	}

	runID := fmt.Sprintf("%s_%s_%s", opts.ReportIDPrefix, datasetID, time.Now().UTC().Format("20060102_150405"))
	if opts.ReportIDPrefix == "" {
		runID = fmt.Sprintf("%s_%s", datasetID, time.Now().UTC().Format("20060102_150405"))
	}

	return model.BenchmarkResult{
		RunID:       runID,
		DatasetID:   datasetID,
		TopK:        topK,
		Iterations:  opts.Iterations,
		Warmups:     opts.Warmups,
		TargetIndex: opts.TargetIndex,
		QPS:         qps,
		Global:      statsOf(pooled),
		PerQuery:    perQuery,
	}, nil
}

// statsOf computes {min,P50,P95,max,avg} over samples. Percentiles use
// index = clamp(ceil(p*n) - 1, 0, n-1) on the ascending sample list.
func statsOf(samples []float64) model.LatencyStats {
	if len(samples) == 0 {
		return model.LatencyStats{}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}

	return model.LatencyStats{
		Min: sorted[0],
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
	}
}

func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}
