package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Junhan0037/SearchFoundry/internal/bulkindex"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

// docsIndexTemplate is the mapping-like template handed to the engine port
// when a new generation is created. The bleve/http ports treat it as an
// opaque settings blob keyed by field name.
var docsIndexTemplate = map[string]any{
	"fields": []string{"title", "summary", "body", "category", "author", "tags", "publishedAt", "popularityScore"},
}

func (s *Server) handleIndexCreate(w http.ResponseWriter, r *http.Request) {
	versionStr := r.URL.Query().Get("version")
	version, err := strconv.Atoi(versionStr)
	if err != nil || version < 1 {
		writeBadRequest(w, "version query parameter must be a positive integer")
		return
	}

	gen := model.Generation{Version: version}
	if err := s.port.CreateIndex(r.Context(), gen.IndexName(), docsIndexTemplate); err != nil {
		writeAppError(w, apperrors.EngineErrorWrap("creating index", err))
		return
	}
	writeCreated(w, map[string]string{"index": gen.IndexName()})
}

type bulkIndexRequest struct {
	Target    string           `json:"target"`
	Documents []model.Document `json:"documents"`
}

func (s *Server) handleIndexBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeBadRequest(w, "documents must not be empty")
		return
	}

	result, err := s.indexer.Bulk(r.Context(), req.Documents, bulkindex.Options{Target: req.Target})
	if err != nil {
		writeAppError(w, apperrors.EngineErrorWrap("bulk indexing", err))
		return
	}
	writeOK(w, result)
}

type reindexRequest struct {
	SourceVersion     int                     `json:"sourceVersion"`
	TargetVersion     int                     `json:"targetVersion"`
	ValidationOptions model.ValidationOptions `json:"validationOptions"`
	WaitForCompletion bool                    `json:"waitForCompletion"`
	RefreshAfter      bool                    `json:"refreshAfter"`
}

func (s *Server) handleIndexReindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.SourceVersion < 1 || req.TargetVersion < 1 {
		writeBadRequest(w, "sourceVersion and targetVersion must be positive integers")
		return
	}

	result, err := s.orchestrator.Reindex(r.Context(), model.BlueGreenRequest{
		SourceVersion:     req.SourceVersion,
		TargetVersion:     req.TargetVersion,
		ValidationOptions: req.ValidationOptions,
		WaitForCompletion: req.WaitForCompletion,
		RefreshAfter:      req.RefreshAfter,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeOK(w, result)
}

func (s *Server) handleIndexRollback(w http.ResponseWriter, r *http.Request) {
	var req model.RollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.CurrentIndex == "" || req.RollbackToIndex == "" {
		writeBadRequest(w, "currentIndex and rollbackToIndex are required")
		return
	}

	result, err := s.rollback.Rollback(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeOK(w, result)
}
