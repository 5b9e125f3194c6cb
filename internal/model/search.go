package model

import "time"

// SortMode selects how results are ordered.
type SortMode string

const (
	SortRelevance SortMode = "RELEVANCE"
	SortRecency   SortMode = "RECENCY"
	SortPopularity SortMode = "POPULARITY"
)

// MultiMatchType selects the multi-field text match mode.
type MultiMatchType string

const (
	MultiMatchBestFields  MultiMatchType = "BEST_FIELDS"
	MultiMatchMostFields  MultiMatchType = "MOST_FIELDS"
	MultiMatchCrossFields MultiMatchType = "CROSS_FIELDS"
)

// PopularityMode selects how popularity tuning contributes to scoring.
type PopularityMode string

const (
	PopularityRankFeature    PopularityMode = "RANK_FEATURE"
	PopularityFieldValueFactor PopularityMode = "FIELD_VALUE_FACTOR"
)

// RecencyTuning configures the Gaussian decay applied to publishedAt.
type RecencyTuning struct {
	Enabled bool    `json:"enabled"`
	Scale   string  `json:"scale"` // e.g. "30d"
	Decay   float64 `json:"decay"` // in [0,1]
	Weight  float64 `json:"weight"`
}

// PopularityTuning configures the popularity boosting clause.
type PopularityTuning struct {
	Enabled  bool           `json:"enabled"`
	Mode     PopularityMode `json:"mode"`
	Pivot    float64        `json:"pivot"`    // RANK_FEATURE saturation pivot
	Boost    float64        `json:"boost"`    // RANK_FEATURE boost
	Modifier string         `json:"modifier"` // FIELD_VALUE_FACTOR modifier, e.g. "log1p"
	Missing  float64        `json:"missing"`  // FIELD_VALUE_FACTOR missing default
	Weight   float64        `json:"weight"`   // FIELD_VALUE_FACTOR weight
}

// RankingTuning bundles every scoring knob the query composer consults.
type RankingTuning struct {
	Recency    RecencyTuning    `json:"recency"`
	Popularity PopularityTuning `json:"popularity"`
	ScoreMode  string           `json:"scoreMode"` // default SUM
	BoostMode  string           `json:"boostMode"` // default SUM
}

// SearchRequest is the input to the Query Composer.
type SearchRequest struct {
	Query           string         `json:"query"`
	Category        string         `json:"category,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Author          string         `json:"author,omitempty"`
	PublishedFrom   string         `json:"publishedFrom,omitempty"`
	PublishedTo     string         `json:"publishedTo,omitempty"`
	Sort            SortMode       `json:"sort"`
	MultiMatchType  MultiMatchType `json:"multiMatchType"`
	Page            int            `json:"page"`
	Size            int            `json:"size"`
	TargetIndex     string         `json:"targetIndex,omitempty"`
	RankingTuning   RankingTuning  `json:"rankingTuning"`
}

// SearchHit is one result within a SearchResult.
type SearchHit struct {
	Document   Document          `json:"document"`
	Score      float64           `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// SearchResult is the Engine Port's search() response.
type SearchResult struct {
	Total  int64       `json:"total"`
	TookMs int64       `json:"tookMs"`
	Hits   []SearchHit `json:"hits"`
}

// EvaluatedHit pairs one retrieved document with its judgement, if any.
type EvaluatedHit struct {
	Rank     int      `json:"rank"`
	Document Document `json:"document"`
	Score    *float64 `json:"score,omitempty"`
	Grade    *int     `json:"grade,omitempty"`
	Judged   bool     `json:"judged"`
}

// QueryMetrics holds the per-query IR metrics computed from EvaluatedHits
// and the paired judgement set.
type QueryMetrics struct {
	PrecisionAtK       float64 `json:"precisionAtK"`
	RecallAtK          float64 `json:"recallAtK"`
	MRR                float64 `json:"mrr"`
	NDCGAtK            float64 `json:"ndcgAtK"`
	RelevantJudgements int     `json:"relevantJudgements"`
	RelevantRetrieved  int     `json:"relevantRetrieved"`
}

// QueryResult bundles one query's hits and metrics for a single evaluation
// run.
type QueryResult struct {
	QueryID   string         `json:"queryId"`
	QueryText string         `json:"queryText"`
	Intent    string         `json:"intent,omitempty"`
	Hits      []EvaluatedHit `json:"hits"`
	Metrics   QueryMetrics   `json:"metrics"`
}

// EvaluationSummary is the arithmetic mean of QueryMetrics across a run.
type EvaluationSummary struct {
	TopK              int     `json:"topK"`
	TotalQueries      int     `json:"totalQueries"`
	MeanPrecisionAtK  float64 `json:"meanPrecisionAtK"`
	MeanRecallAtK     float64 `json:"meanRecallAtK"`
	MeanMRR           float64 `json:"meanMrr"`
	MeanNDCGAtK       float64 `json:"meanNdcgAtK"`
}

// EvaluationRunResult is the Evaluation Runner's complete output for one
// dataset run.
type EvaluationRunResult struct {
	DatasetID    string        `json:"datasetId"`
	TopK         int           `json:"topK"`
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  time.Time     `json:"completedAt"`
	ElapsedMs    int64         `json:"elapsedMs"`
	TargetIndex  string        `json:"targetIndex,omitempty"`
	Summary      EvaluationSummary `json:"summary"`
	Results      []QueryResult `json:"results"`
}
