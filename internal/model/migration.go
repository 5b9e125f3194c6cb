package model

// ValidationOptions configures the Reindex Validator's three checks for a
// single migration attempt; zero-valued fields fall back to config defaults
// via validate.ResolveOptions.
type ValidationOptions struct {
	EnableCountValidation       *bool    `json:"enableCountValidation,omitempty"`
	EnableSampleQueryValidation *bool    `json:"enableSampleQueryValidation,omitempty"`
	EnableHashValidation        *bool    `json:"enableHashValidation,omitempty"`
	SampleQueries               []string `json:"sampleQueries,omitempty"`
	SampleTopK                  int      `json:"sampleTopK,omitempty"`
	MinJaccard                  *float64 `json:"minJaccard,omitempty"`
	HashMaxDocs                 int      `json:"hashMaxDocs,omitempty"`
	HashPageSize                int      `json:"hashPageSize,omitempty"`
}

// BlueGreenRequest is the orchestrator's input contract.
type BlueGreenRequest struct {
	SourceVersion      int               `json:"sourceVersion"`
	TargetVersion      int               `json:"targetVersion"`
	ValidationOptions  ValidationOptions `json:"validationOptions"`
	WaitForCompletion  bool              `json:"waitForCompletion"`
	RefreshAfter       bool              `json:"refreshAfter"`
}

// RollbackRequest is the Rollback Service's input contract.
type RollbackRequest struct {
	CurrentIndex    string `json:"currentIndex"`
	RollbackToIndex string `json:"rollbackToIndex"`
}

// RollbackResult captures the alias state before and after a rollback.
type RollbackResult struct {
	Before AliasState `json:"before"`
	After  AliasState `json:"after"`
}

// BulkItemResult is one item's outcome from a bulk() call.
type BulkItemResult struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "indexed" or "error"
	Error  string `json:"error,omitempty"`
}

// BulkFailure is one document's terminal failure after retries are
// exhausted.
type BulkFailure struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Attempt int    `json:"attempt"`
}

// BulkIndexResult is the Bulk Indexer's contract output.
type BulkIndexResult struct {
	Total    int           `json:"total"`
	Success  int           `json:"success"`
	Failed   int           `json:"failed"`
	Failures []BulkFailure `json:"failures,omitempty"`
	Attempts int           `json:"attempts"`
	TookMs   int64         `json:"tookMs"`
}

// LatencyStats summarizes a pooled sample set: min, P50, P95, max, avg.
type LatencyStats struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// QueryLatency is one query's pooled sample stats within a benchmark run.
type QueryLatency struct {
	QueryID string       `json:"queryId"`
	Samples []float64    `json:"-"`
	Stats   LatencyStats `json:"stats"`
}

// BenchmarkResult is the Performance Benchmarker's complete output.
type BenchmarkResult struct {
	RunID        string         `json:"runId"`
	DatasetID    string         `json:"datasetId"`
	TopK         int            `json:"topK"`
	Iterations   int            `json:"iterations"`
	Warmups      int            `json:"warmups"`
	TargetIndex  string         `json:"targetIndex,omitempty"`
	QPS          float64        `json:"qps"`
	Global       LatencyStats   `json:"global"`
	PerQuery     []QueryLatency `json:"perQuery"`
}

// BenchmarkComparison is the PerformanceComparator's output.
type BenchmarkComparison struct {
	BeforeRunID string        `json:"beforeRunId"`
	AfterRunID  string        `json:"afterRunId"`
	LatencyDelta map[string]float64 `json:"latencyDelta"` // keyed by "min","p50","p95","max","avg"
	QPSDelta     float64            `json:"qpsDelta"`
	Regressions  []string           `json:"regressions"`
	Improvements []string           `json:"improvements"`
}
