// Package eval implements the Evaluation Runner and Metric Calculator:
// scoring ranked retrieval against human relevance judgements and
// aggregating the result into a comparable summary.
package eval

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Junhan0037/SearchFoundry/internal/bus"
	"github.com/Junhan0037/SearchFoundry/internal/dataset"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

// Runner loads a paired query/judgement set, runs each query against the
// engine, and scores the retrieval against the judgements.
type Runner struct {
	loader *dataset.Loader
	port   engine.Port
	bus    bus.Bus
}

// New wires a Runner. b may be nil, in which case completion events are
// dropped.
func New(loader *dataset.Loader, port engine.Port, b bus.Bus) *Runner {
	if b == nil {
		b = bus.NilBus{}
	}
	return &Runner{loader: loader, port: port, bus: b}
}

// Options configures one evaluation run beyond the dataset and topK.
type Options struct {
	TargetIndex    string
	MultiMatchType model.MultiMatchType
	RankingTuning  *model.RankingTuning
}

// Run loads datasetID's query and judgement sets, searches every query at
// size=topK, scores the hits against the judgements, and aggregates.
func (r *Runner) Run(ctx context.Context, datasetID string, topK int, opts Options) (model.EvaluationRunResult, error) {
	startedAt := time.Now().UTC()

	qs, js, err := r.loader.LoadDataset(datasetID)
	if err != nil {
		return model.EvaluationRunResult{}, err
	}

	byQuery := js.ByQuery()
	results := make([]model.QueryResult, 0, len(qs.Queries))

	for _, q := range qs.Queries {
		qr, err := r.evaluateQuery(ctx, q, byQuery[q.QueryID], topK, opts)
		if err != nil {
			return model.EvaluationRunResult{}, err
		}
		results = append(results, qr)
	}

	completedAt := time.Now().UTC()
	summary := aggregate(results, topK)

	runResult := model.EvaluationRunResult{
		DatasetID:   datasetID,
		TopK:        topK,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		ElapsedMs:   completedAt.Sub(startedAt).Milliseconds(),
		TargetIndex: opts.TargetIndex,
		Summary:     summary,
		Results:     results,
	}

	r.publishCompleted(ctx, runResult)

	return runResult, nil
}

func (r *Runner) evaluateQuery(ctx context.Context, q model.QueryEntry, judged map[string]model.Judgement, topK int, opts Options) (model.QueryResult, error) {
	req := toSearchRequest(q, topK, opts)

	target := opts.TargetIndex
	if target == "" {
		target = model.ReadAlias
	}

	searchResult, err := r.port.Search(ctx, target, query.Compose(req))
	if err != nil {
		return model.QueryResult{}, err
	}

	hits := searchResult.Hits
	if len(hits) > topK {
		hits = hits[:topK]
	}

	evaluated := make([]model.EvaluatedHit, 0, len(hits))
	hitGrades := make([]int, 0, len(hits))

	for i, h := range hits {
		docID := h.Document.DocumentID()
		score := h.Score
		eh := model.EvaluatedHit{Rank: i + 1, Document: h.Document, Score: &score}
		if j, ok := judged[docID]; ok {
			grade := j.Grade
			eh.Grade = &grade
			eh.Judged = true
			hitGrades = append(hitGrades, grade)
		} else {
			hitGrades = append(hitGrades, 0)
		}
		evaluated = append(evaluated, eh)
	}

	allPositive := make([]int, 0, len(judged))
	for _, j := range judged {
		allPositive = append(allPositive, j.Grade)
	}

	precision, recall, mrr, ndcg, relevantRetrieved := computeQueryMetrics(hitGrades, allPositive, topK)

	return model.QueryResult{
		QueryID:   q.QueryID,
		QueryText: q.QueryText,
		Intent:    q.Intent,
		Hits:      evaluated,
		Metrics: model.QueryMetrics{
			PrecisionAtK:       precision,
			RecallAtK:          recall,
			MRR:                mrr,
			NDCGAtK:            ndcg,
			RelevantJudgements: countPositive(allPositive),
			RelevantRetrieved:  relevantRetrieved,
		},
	}, nil
}

func toSearchRequest(q model.QueryEntry, topK int, opts Options) model.SearchRequest {
	req := model.SearchRequest{
		Query:          q.QueryText,
		Sort:           model.SortRelevance,
		MultiMatchType: opts.MultiMatchType,
		Size:           topK,
		TargetIndex:    opts.TargetIndex,
	}
	if req.MultiMatchType == "" {
		req.MultiMatchType = model.MultiMatchBestFields
	}
	if opts.RankingTuning != nil {
		req.RankingTuning = *opts.RankingTuning
	}
	if q.Filters != nil {
		req.Category = q.Filters.Category
		req.Tags = q.Filters.Tags
		req.Author = q.Filters.Author
		req.PublishedFrom = q.Filters.PublishedAtFrom
		req.PublishedTo = q.Filters.PublishedAtTo
	}
	return req
}

func countPositive(grades []int) int {
	n := 0
	for _, g := range grades {
		if g > 0 {
			n++
		}
	}
	return n
}

// aggregate computes the arithmetic mean of every QueryMetrics field
// across results; with no results every mean and topK is 0.
func aggregate(results []model.QueryResult, topK int) model.EvaluationSummary {
	if len(results) == 0 {
		return model.EvaluationSummary{}
	}

	var sumP, sumR, sumMRR, sumNDCG float64
	for _, qr := range results {
		sumP += qr.Metrics.PrecisionAtK
		sumR += qr.Metrics.RecallAtK
		sumMRR += qr.Metrics.MRR
		sumNDCG += qr.Metrics.NDCGAtK
	}
	n := float64(len(results))

	return model.EvaluationSummary{
		TopK:             topK,
		TotalQueries:     len(results),
		MeanPrecisionAtK: sumP / n,
		MeanRecallAtK:    sumR / n,
		MeanMRR:          sumMRR / n,
		MeanNDCGAtK:      sumNDCG / n,
	}
}

func (r *Runner) publishCompleted(ctx context.Context, result model.EvaluationRunResult) {
	_ = r.bus.Publish(ctx, bus.TopicEvalRunCompleted, bus.Event{
		ID:        uuid.NewString(),
		Type:      bus.TopicEvalRunCompleted,
		Source:    "eval",
		Timestamp: time.Now().UTC().Unix(),
		Payload: map[string]any{
			"datasetId": result.DatasetID,
			"topK":      result.TopK,
			"summary":   result.Summary,
		},
	})
}
