// Package server provides the HTTP admin and search surface: thin
// request-to-core adapters wiring the orchestrator, rollback service,
// evaluation runner, report/performance writers, and the query composer to
// an external engine port.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Junhan0037/SearchFoundry/internal/alias"
	"github.com/Junhan0037/SearchFoundry/internal/bulkindex"
	"github.com/Junhan0037/SearchFoundry/internal/bus"
	"github.com/Junhan0037/SearchFoundry/internal/cache"
	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/dataset"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/engine/bleveengine"
	"github.com/Junhan0037/SearchFoundry/internal/engine/httpengine"
	"github.com/Junhan0037/SearchFoundry/internal/eval"
	"github.com/Junhan0037/SearchFoundry/internal/orchestrator"
	"github.com/Junhan0037/SearchFoundry/internal/perf"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/logger"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/middleware"
	"github.com/Junhan0037/SearchFoundry/internal/report"
	"github.com/Junhan0037/SearchFoundry/internal/retention"
	"github.com/Junhan0037/SearchFoundry/internal/rollback"
)

// Server wires every core component to the HTTP admin and search surface.
type Server struct {
	cfg *config.Config
	log *logger.Logger

	httpServer *http.Server

	port           engine.Port
	aliasMgr       *alias.Manager
	aliasCache     cache.AliasStateCache
	eventBus       bus.Bus
	orchestrator   *orchestrator.Orchestrator
	rollback       *rollback.Service
	indexer        *bulkindex.Indexer
	evalRunner     *eval.Runner
	reportWriter   *report.Writer
	comparator     *report.Comparator
	benchmarker    *perf.Benchmarker
	perfWriter     *perf.Writer
	perfComparator *perf.Comparator

	rateLimiter *middleware.RateLimiter

	mu      sync.RWMutex
	started bool
}

// New wires a Server from cfg. It does not start listening.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	port, err := newEnginePort(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("creating engine port: %w", err)
	}

	aliasCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating alias state cache: %w", err)
	}

	eventBus, err := bus.NewBus(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	aliasMgr := alias.New(port, log, aliasCache)
	recorder := retention.New(cfg.Reports.BaseDir)
	loader := dataset.NewLoader(cfg.Datasets.RootDir)
	reportWriter := report.NewWriter(cfg.Reports.BaseDir)
	perfWriter := perf.NewWriter(cfg.Reports.BaseDir)

	s := &Server{
		cfg:            cfg,
		log:            log,
		port:           port,
		aliasMgr:       aliasMgr,
		aliasCache:     aliasCache,
		eventBus:       eventBus,
		orchestrator:   orchestrator.New(port, aliasMgr, recorder, eventBus, cfg.Validation, log),
		rollback:       rollback.New(aliasMgr),
		indexer:        bulkindex.New(port),
		evalRunner:     eval.New(loader, port, eventBus),
		reportWriter:   reportWriter,
		comparator:     report.NewComparator(reportWriter),
		benchmarker:    perf.NewBenchmarker(loader, port),
		perfWriter:     perfWriter,
		perfComparator: perf.NewComparator(perfWriter),
	}

	if cfg.Security.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(cfg.Security.RateLimit),
			Burst:             cfg.Security.RateLimitBurst,
			CleanupInterval:   time.Minute,
		})
	}

	return s, nil
}

func newEnginePort(cfg config.EngineConfig) (engine.Port, error) {
	switch cfg.Driver {
	case "http":
		return httpengine.New(httpengine.Config{BaseURL: cfg.URL, Timeout: 30 * time.Second}), nil
	default:
		return bleveengine.New(), nil
	}
}

// Start begins serving HTTP on cfg.Address().
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	mux := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.log.Info("starting HTTP server", "addr", s.cfg.Address())
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the HTTP server down and closes its collaborators.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP shutdown error", "error", err)
	}
	if err := s.eventBus.Close(); err != nil {
		s.log.Error("event bus close error", "error", err)
	}
	if err := s.aliasCache.Close(); err != nil {
		s.log.Error("alias cache close error", "error", err)
	}

	s.started = false
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /admin/index/create", s.handleIndexCreate)
	mux.HandleFunc("POST /admin/index/bulk", s.handleIndexBulk)
	mux.HandleFunc("POST /admin/index/reindex", s.handleIndexReindex)
	mux.HandleFunc("POST /admin/index/rollback", s.handleIndexRollback)
	mux.HandleFunc("POST /admin/eval/run", s.handleEvalRun)
	mux.HandleFunc("POST /admin/eval/regression", s.handleEvalRegression)
	mux.HandleFunc("POST /admin/performance/benchmark", s.handlePerformanceBenchmark)

	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	var handler http.Handler = mux
	if s.rateLimiter != nil {
		handler = s.rateLimiter.Middleware(handler)
	}
	return withLogging(handler, s.log)
}

func withLogging(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
