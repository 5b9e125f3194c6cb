package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Junhan0037/SearchFoundry/internal/eval"
	"github.com/Junhan0037/SearchFoundry/internal/perf"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

const defaultWorstQueries = 10

func (s *Server) handleEvalRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	datasetID := q.Get("datasetId")
	if datasetID == "" {
		writeBadRequest(w, "datasetId query parameter is required")
		return
	}

	topK, err := intParam(q, "topK", s.cfg.Benchmark.TopK)
	if err != nil {
		writeBadRequest(w, "topK must be an integer")
		return
	}
	worstQueries, err := intParam(q, "worstQueries", defaultWorstQueries)
	if err != nil {
		writeBadRequest(w, "worstQueries must be an integer")
		return
	}
	generateReport := q.Get("generateReport") == "true"

	result, err := s.evalRunner.Run(r.Context(), datasetID, topK, eval.Options{})
	if err != nil {
		writeAppError(w, err)
		return
	}

	if !generateReport {
		writeOK(w, result)
		return
	}

	rep, err := s.reportWriter.Write(result, worstQueries, "")
	if err != nil {
		writeAppError(w, apperrors.InternalError("writing evaluation report", err))
		return
	}
	writeCreated(w, rep)
}

type evalRegressionRequest struct {
	DatasetID        string `json:"datasetId"`
	BaselineReportID string `json:"baselineReportId"`
	TopK             int    `json:"topK"`
	WorstQueries     int    `json:"worstQueries"`
	TargetIndex      string `json:"targetIndex"`
	ReportIDPrefix   string `json:"reportIdPrefix"`
}

func (s *Server) handleEvalRegression(w http.ResponseWriter, r *http.Request) {
	var req evalRegressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.DatasetID == "" {
		writeBadRequest(w, "datasetId is required")
		return
	}
	if req.BaselineReportID == "" {
		writeBadRequest(w, "baselineReportId is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = s.cfg.Benchmark.TopK
	}
	if req.WorstQueries <= 0 {
		req.WorstQueries = defaultWorstQueries
	}

	result, err := s.evalRunner.Run(r.Context(), req.DatasetID, req.TopK, eval.Options{TargetIndex: req.TargetIndex})
	if err != nil {
		writeAppError(w, err)
		return
	}

	rep, err := s.reportWriter.Write(result, req.WorstQueries, req.ReportIDPrefix)
	if err != nil {
		writeAppError(w, apperrors.InternalError("writing evaluation report", err))
		return
	}

	comparison, err := s.comparator.Compare(req.BaselineReportID, rep.ReportID, req.WorstQueries)
	if err != nil {
		writeAppError(w, apperrors.InternalError("comparing evaluation reports", err))
		return
	}

	writeOK(w, map[string]any{
		"report":     rep,
		"comparison": comparison,
	})
}

type benchmarkRequest struct {
	DatasetID        string `json:"datasetId"`
	TopK             int    `json:"topK"`
	Iterations       int    `json:"iterations"`
	Warmups          int    `json:"warmups"`
	TargetIndex      string `json:"targetIndex"`
	ReportIDPrefix   string `json:"reportIdPrefix"`
	BaselineReportID string `json:"baselineReportId"`
}

func (s *Server) handlePerformanceBenchmark(w http.ResponseWriter, r *http.Request) {
	var req benchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.DatasetID == "" {
		writeBadRequest(w, "datasetId is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = s.cfg.Benchmark.TopK
	}
	if req.Iterations <= 0 {
		req.Iterations = s.cfg.Benchmark.Iterations
	}
	if req.Warmups <= 0 {
		req.Warmups = s.cfg.Benchmark.Warmups
	}

	result, err := s.benchmarker.Run(r.Context(), req.DatasetID, req.TopK, perf.Options{
		Iterations:     req.Iterations,
		Warmups:        req.Warmups,
		TargetIndex:    req.TargetIndex,
		ReportIDPrefix: req.ReportIDPrefix,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := s.perfWriter.Write(result); err != nil {
		writeAppError(w, apperrors.InternalError("writing performance report", err))
		return
	}

	if req.BaselineReportID == "" {
		writeCreated(w, result)
		return
	}

	comparison, err := s.perfComparator.Compare(req.BaselineReportID, result.RunID)
	if err != nil {
		writeAppError(w, apperrors.InternalError("comparing performance runs", err))
		return
	}

	writeOK(w, map[string]any{
		"result":     result,
		"comparison": comparison,
	})
}

func intParam(q map[string][]string, key string, def int) (int, error) {
	v := q[key]
	if len(v) == 0 || v[0] == "" {
		return def, nil
	}
	return strconv.Atoi(v[0])
}
