package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Junhan0037/SearchFoundry/internal/alias"
	"github.com/Junhan0037/SearchFoundry/internal/bulkindex"
	"github.com/Junhan0037/SearchFoundry/internal/bus"
	"github.com/Junhan0037/SearchFoundry/internal/cache"
	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/dataset"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/eval"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/perf"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/logger"
	"github.com/Junhan0037/SearchFoundry/internal/query"
	"github.com/Junhan0037/SearchFoundry/internal/report"
	"github.com/Junhan0037/SearchFoundry/internal/rollback"
)

// fakePort is a minimal engine.Port stub exercising only what the handlers
// under test touch.
type fakePort struct {
	engine.Port
	indices map[string]bool
	state   model.AliasState
	lastSearchTree   query.Tree
	lastSearchTarget string
	searchResult     model.SearchResult
}

func newFakePort() *fakePort {
	return &fakePort{
		indices: map[string]bool{"docs_v1": true},
		state:   model.AliasState{ReadTargets: []string{"docs_v1"}, WriteTargets: []string{"docs_v1"}},
	}
}

func (f *fakePort) CreateIndex(ctx context.Context, name string, template map[string]any) error {
	if f.indices[name] {
		return apperrors.ConflictError("index " + name + " already exists")
	}
	f.indices[name] = true
	return nil
}

func (f *fakePort) IndexExists(ctx context.Context, name string) (bool, error) {
	return f.indices[name], nil
}

func (f *fakePort) CurrentAliasState(ctx context.Context) (model.AliasState, error) {
	return f.state, nil
}

func (f *fakePort) Bulk(ctx context.Context, target string, ops []engine.BulkOp) ([]model.BulkItemResult, error) {
	out := make([]model.BulkItemResult, 0, len(ops))
	for _, op := range ops {
		out = append(out, model.BulkItemResult{ID: op.ID, Status: "indexed"})
	}
	return out, nil
}

func (f *fakePort) Search(ctx context.Context, target string, tree query.Tree) (model.SearchResult, error) {
	f.lastSearchTree = tree
	f.lastSearchTarget = target
	return f.searchResult, nil
}

func newTestServer(t *testing.T) (*Server, *fakePort) {
	t.Helper()
	port := newFakePort()
	aliasCache, _ := cache.New(config.CacheConfig{Type: "none"})
	log := logger.New("error", "text")
	aliasMgr := alias.New(port, log, aliasCache)
	reportWriter := report.NewWriter(t.TempDir())
	perfWriter := perf.NewWriter(t.TempDir())
	loader := newEmptyLoader(t)

	s := &Server{
		port:           port,
		aliasMgr:       aliasMgr,
		aliasCache:     aliasCache,
		eventBus:       bus.NilBus{},
		rollback:       rollback.New(aliasMgr),
		indexer:        bulkindex.New(port),
		evalRunner:     eval.New(loader, port, bus.NilBus{}),
		reportWriter:   reportWriter,
		comparator:     report.NewComparator(reportWriter),
		benchmarker:    perf.NewBenchmarker(loader, port),
		perfWriter:     perfWriter,
		perfComparator: perf.NewComparator(perfWriter),
	}
	s.cfg = &config.Config{}
	s.cfg.Benchmark.TopK = 10
	s.cfg.Benchmark.Iterations = 2
	s.cfg.Benchmark.Warmups = 0
	return s, port
}

func newEmptyLoader(t *testing.T) *dataset.Loader {
	t.Helper()
	return dataset.NewLoader(t.TempDir())
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return env
}

func TestHandleIndexCreate_CreatesNewGeneration(t *testing.T) {
	s, port := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/index/create?version=2", nil)
	rec := httptest.NewRecorder()
	s.handleIndexCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !port.indices["docs_v2"] {
		t.Errorf("expected docs_v2 to be created")
	}
}

func TestHandleIndexCreate_RejectsMissingVersion(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/index/create", nil)
	rec := httptest.NewRecorder()
	s.handleIndexCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleIndexBulk_IndexesDocuments(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"target":"docs_v1","documents":[{"id":"d1","title":"t","body":"b","category":"c","author":"a"}]}`
	req := httptest.NewRequest(http.MethodPost, "/admin/index/bulk", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleIndexBulk(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleIndexBulk_RejectsEmptyDocuments(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"target":"docs_v1","documents":[]}`
	req := httptest.NewRequest(http.MethodPost, "/admin/index/bulk", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleIndexBulk(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearch_ComposesTreeAndReturnsResult(t *testing.T) {
	s, port := newTestServer(t)
	port.searchResult = model.SearchResult{Total: 1, Hits: []model.SearchHit{{Document: model.Document{ID: "d1"}, Score: 1.5}}}

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=golang&size=5&page=0", nil)
	rec := httptest.NewRecorder()
	s.handleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if port.lastSearchTree.Query.MultiMatch == nil || port.lastSearchTree.Query.MultiMatch.Query != "golang" {
		t.Errorf("expected composed tree to carry query text, got %+v", port.lastSearchTree.Query)
	}
	if port.lastSearchTarget != model.ReadAlias {
		t.Errorf("target = %q, want default read alias %q", port.lastSearchTarget, model.ReadAlias)
	}
}

func TestHandleSuggest_DefaultsTargetToReadAlias(t *testing.T) {
	s, port := newTestServer(t)
	port.searchResult = model.SearchResult{Total: 0}

	req := httptest.NewRequest(http.MethodGet, "/api/suggest?q=golang", nil)
	rec := httptest.NewRecorder()
	s.handleSuggest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if port.lastSearchTarget != model.ReadAlias {
		t.Errorf("target = %q, want default read alias %q", port.lastSearchTarget, model.ReadAlias)
	}
}

func TestHandleSuggest_RequiresQuery(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/suggest", nil)
	rec := httptest.NewRecorder()
	s.handleSuggest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth_ReportsOKWhenAliasesPopulated(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]any)
	if !ok || data["status"] != "ok" {
		t.Errorf("expected status ok, got %+v", env.Data)
	}
}
