package server

import (
	"net/http"
	"strings"

	"github.com/Junhan0037/SearchFoundry/internal/model"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
	"github.com/Junhan0037/SearchFoundry/internal/query"
)

const (
	defaultSearchSize  = 10
	defaultSuggestSize = 5
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q, "page", 0)
	if err != nil || page < 0 {
		writeBadRequest(w, "page must be a non-negative integer")
		return
	}
	size, err := intParam(q, "size", defaultSearchSize)
	if err != nil || size < 1 {
		writeBadRequest(w, "size must be a positive integer")
		return
	}

	req := model.SearchRequest{
		Query:          q.Get("q"),
		Category:       q.Get("category"),
		Author:         q.Get("author"),
		PublishedFrom:  q.Get("publishedFrom"),
		PublishedTo:    q.Get("publishedTo"),
		Sort:           model.SortMode(q.Get("sort")),
		MultiMatchType: model.MultiMatchType(q.Get("multiMatchType")),
		Page:           page,
		Size:           size,
		TargetIndex:    q.Get("targetIndex"),
	}
	if tags := q.Get("tags"); tags != "" {
		req.Tags = strings.Split(tags, ",")
	}

	tree := query.Compose(req)
	target := req.TargetIndex
	if target == "" {
		target = model.ReadAlias
	}

	result, err := s.port.Search(r.Context(), target, tree)
	if err != nil {
		writeAppError(w, apperrors.EngineErrorWrap("searching", err))
		return
	}
	writeOK(w, result)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	size, err := intParam(q, "size", defaultSuggestSize)
	if err != nil || size < 1 {
		writeBadRequest(w, "size must be a positive integer")
		return
	}
	queryText := q.Get("q")
	if queryText == "" {
		writeBadRequest(w, "q query parameter is required")
		return
	}

	tree := query.ComposeSuggest(query.SuggestRequest{
		Query:    queryText,
		Category: q.Get("category"),
		Size:     size,
	})

	result, err := s.port.Search(r.Context(), model.ReadAlias, tree)
	if err != nil {
		writeAppError(w, apperrors.EngineErrorWrap("suggesting", err))
		return
	}
	writeOK(w, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state, _ := s.aliasMgr.CurrentAliasState(r.Context())
	status := "ok"
	if !state.Healthy() {
		status = "degraded"
	}
	writeOK(w, map[string]any{
		"status": status,
		"alias":  state,
	})
}
