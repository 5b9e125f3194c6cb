package model

import "time"

// Report is the persisted form of an EvaluationRunResult plus its worst
// queries, matching the metrics.json schema exactly.
type Report struct {
	ReportID     string            `json:"reportId"`
	DatasetID    string            `json:"datasetId"`
	TopK         int               `json:"topK"`
	TotalQueries int               `json:"totalQueries"`
	StartedAt    time.Time         `json:"startedAt"`
	CompletedAt  time.Time         `json:"completedAt"`
	ElapsedMs    int64             `json:"elapsedMs"`
	Summary      EvaluationSummary `json:"summary"`
	WorstQueries []WorstQuery      `json:"worstQueries"`
}

// WorstQuery is one row of the worst-queries table.
type WorstQuery struct {
	QueryID      string  `json:"queryId"`
	Intent       string  `json:"intent,omitempty"`
	PrecisionAtK float64 `json:"precisionAtK"`
	RecallAtK    float64 `json:"recallAtK"`
	MRR          float64 `json:"mrr"`
	NDCGAtK      float64 `json:"ndcgAtK"`
	JudgedHits   int     `json:"judgedHits"`
	RelevantHits int     `json:"relevantHits"`
	TotalHits    int     `json:"totalHits"`
}

// MetricDelta is one row of a comparator's metricsDelta list.
type MetricDelta struct {
	Name   string  `json:"name"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"`
}

// WorstQueryChangeStatus classifies how a query's worst-query membership
// changed between two reports.
type WorstQueryChangeStatus string

const (
	ChangeImproved        WorstQueryChangeStatus = "IMPROVED"
	ChangeRegressed       WorstQueryChangeStatus = "REGRESSED"
	ChangeUnchanged       WorstQueryChangeStatus = "UNCHANGED"
	ChangeRemovedFromWorst WorstQueryChangeStatus = "REMOVED_FROM_WORST"
	ChangeNewInWorst       WorstQueryChangeStatus = "NEW_IN_WORST"
)

// WorstQueryChange describes one query's movement between two worst-query
// lists.
type WorstQueryChange struct {
	QueryID string                  `json:"queryId"`
	Status  WorstQueryChangeStatus  `json:"status"`
	Delta   float64                 `json:"delta"`
}

// ReportComparison is the Comparator's complete output.
type ReportComparison struct {
	BeforeReportID    string              `json:"beforeReportId"`
	AfterReportID     string              `json:"afterReportId"`
	MetricsDelta      []MetricDelta       `json:"metricsDelta"`
	WorstQueryChanges []WorstQueryChange  `json:"worstQueryChanges"`
	TopImprovements   []WorstQueryChange  `json:"topImprovements"`
	TopRegressions    []WorstQueryChange  `json:"topRegressions"`
}

// ValidationResult is the Reindex Validator's per-migration output.
type ValidationResult struct {
	Count        *CountCheckResult  `json:"count,omitempty"`
	SampleQuery  *SampleCheckResult `json:"sampleQuery,omitempty"`
	Hash         *HashCheckResult   `json:"hash,omitempty"`
	Passed       bool               `json:"passed"`
	FailureReasons []string         `json:"failureReasons,omitempty"`
}

// CountCheckResult is the outcome of the count check.
type CountCheckResult struct {
	SourceCount int64 `json:"sourceCount"`
	TargetCount int64 `json:"targetCount"`
	Passed      bool  `json:"passed"`
}

// SampleQueryDiff is one configured sample query's top-K overlap outcome.
type SampleQueryDiff struct {
	Query            string   `json:"query"`
	Jaccard          float64  `json:"jaccard"`
	Passed           bool     `json:"passed"`
	MissingInTarget  []string `json:"missingInTarget,omitempty"`
	MissingInSource  []string `json:"missingInSource,omitempty"`
}

// SampleCheckResult is the outcome of the top-K overlap check across every
// configured sample query.
type SampleCheckResult struct {
	Diffs  []SampleQueryDiff `json:"diffs"`
	Passed bool              `json:"passed"`
}

// HashCheckResult is the outcome of the content-hash check.
type HashCheckResult struct {
	SourceDigest string `json:"sourceDigest"`
	TargetDigest string `json:"targetDigest"`
	ScannedCount int    `json:"scannedCount"`
	Passed       bool   `json:"passed"`
}

// RetentionManifest is the record written after every successful migration.
type RetentionManifest struct {
	Timestamp       time.Time  `json:"timestamp"`
	SourceIndex     string     `json:"sourceIndex"`
	TargetIndex     string     `json:"targetIndex"`
	AliasBefore     AliasState `json:"aliasBefore"`
	SourceCount     int64      `json:"sourceCount"`
	TargetCount     int64      `json:"targetCount"`
}

// BlueGreenResult is the orchestrator's complete output.
type BlueGreenResult struct {
	SourceIndex            string            `json:"sourceIndex"`
	TargetIndex             string            `json:"targetIndex"`
	SourceCount             int64             `json:"sourceCount"`
	TargetCount             int64             `json:"targetCount"`
	ReindexTookMs           int64             `json:"reindexTookMs"`
	Failures                []string          `json:"failures,omitempty"`
	AliasBefore             AliasState        `json:"aliasBefore"`
	AliasAfter              AliasState        `json:"aliasAfter"`
	Validation              ValidationResult  `json:"validation"`
	RetentionManifestPath   string            `json:"retentionManifestPath"`
}
