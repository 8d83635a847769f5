package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dgallion1/guides/internal/builtin"
	"github.com/dgallion1/guides/internal/config"
	"github.com/dgallion1/guides/internal/pipeline"
	"github.com/dgallion1/guides/internal/render"
	"github.com/dgallion1/guides/internal/render/html"
	"github.com/dgallion1/guides/internal/render/text"
)

var sources = fstest.MapFS{
	"index.rst": {Data: []byte("Home\n====\n\n.. toctree::\n\n   guide\n\nSee `missing`_.\n")},
	"guide.rst": {Data: []byte("Guide\n=====\n\nBack :doc:`index`.\n")},
}

func newTestServer(t *testing.T, apiKey string, build bool) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	reg := render.NewRegistry()
	html.Register(reg)
	text.Register(reg)
	b := &pipeline.Builder{
		Extensions: builtin.NewRegistry(),
		Renderers:  reg,
		Formats:    []string{"html", "text"},
		Root:       "index",
		Workers:    2,
		Cache:      pipeline.NewCache(),
	}
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{MaxQueueSize: 1}, b, sources, log)
	if build {
		job := pipeline.NewJob("test")
		orch.Process(context.Background(), job)
		if job.Snapshot().Status != pipeline.StatusCompleted {
			t.Fatalf("build failed: %v", job.Snapshot().Progress.Errors)
		}
	}
	return NewServer(orch, log, config.Config{APIKey: apiKey, Root: "index"}), orch
}

func do(s *Server, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "secret", false)
	rec := do(s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decode(t, rec)["status"] != "ok" {
		t.Errorf("expected ok, got %s", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, "secret", true)

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodGet, "/api/toc", tt.token)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestAuth_DisabledWithoutKey(t *testing.T) {
	s, _ := newTestServer(t, "", true)
	if rec := do(s, http.MethodGet, "/api/toc", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 without api key configured, got %d", rec.Code)
	}
}

func TestNoBuildYet(t *testing.T) {
	s, _ := newTestServer(t, "", false)
	for _, target := range []string{"/api/builds/latest", "/api/toc", "/api/diagnostics", "/docs/html/index.html"} {
		if rec := do(s, http.MethodGet, target, ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", target, rec.Code)
		}
	}
}

func TestSubmitBuild(t *testing.T) {
	s, orch := newTestServer(t, "", false)

	rec := do(s, http.MethodPost, "/api/builds?trigger=test", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	id, _ := body["build_id"].(string)
	if id == "" {
		t.Fatalf("expected build_id, got %v", body)
	}
	if body["poll_url"] != "/api/builds/"+id+"/status" {
		t.Errorf("unexpected poll_url %v", body["poll_url"])
	}

	status := do(s, http.MethodGet, "/api/builds/"+id+"/status", "")
	if status.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", status.Code)
	}
	snap := decode(t, status)
	if snap["status"] != "queued" || snap["trigger"] != "test" {
		t.Errorf("unexpected status %v", snap)
	}

	// The queue holds one build and nothing drains it.
	if rec := do(s, http.MethodPost, "/api/builds", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 on full queue, got %d", rec.Code)
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", orch.QueueDepth())
	}
}

func TestBuildStatus_NotFound(t *testing.T) {
	s, _ := newTestServer(t, "", false)
	if rec := do(s, http.MethodGet, "/api/builds/nope/status", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestLatestBuild(t *testing.T) {
	s, _ := newTestServer(t, "", true)
	rec := do(s, http.MethodGet, "/api/builds/latest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["documents"] != float64(2) {
		t.Errorf("expected 2 documents, got %v", body["documents"])
	}
	formats, _ := body["formats"].([]any)
	if len(formats) != 2 || formats[0] != "html" || formats[1] != "text" {
		t.Errorf("expected [html text], got %v", body["formats"])
	}
}

func TestDocument(t *testing.T) {
	s, _ := newTestServer(t, "", true)

	tests := []struct {
		target string
		code   int
		ctype  string
		want   string
	}{
		{"/docs/html/guide.html", http.StatusOK, "text/html", `href="index.html"`},
		{"/docs/html/", http.StatusOK, "text/html", "Home"},
		{"/docs/text/guide.txt", http.StatusOK, "text/plain", "Guide"},
		{"/docs/html/nope.html", http.StatusNotFound, "application/json", "document not found"},
		{"/docs/latex/index.tex", http.StatusNotFound, "application/json", "format not built"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(s, http.MethodGet, tt.target, "")
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.ctype) {
				t.Errorf("expected content type %q, got %q", tt.ctype, ct)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("expected body to contain %q, got:\n%s", tt.want, rec.Body.String())
			}
		})
	}
}

func TestDiagnostics(t *testing.T) {
	s, _ := newTestServer(t, "", true)

	body := decode(t, do(s, http.MethodGet, "/api/diagnostics?severity=warning&file=index.rst", ""))
	list, _ := body["diagnostics"].([]any)
	found := false
	for _, d := range list {
		m := d.(map[string]any)
		if m["severity"] != "warning" {
			t.Errorf("expected only warnings, got %v", m)
		}
		if strings.Contains(m["message"].(string), `undefined label: "missing"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected undefined label warning, got %v", list)
	}
	if body["warnings"].(float64) < 1 {
		t.Errorf("expected warning count, got %v", body["warnings"])
	}

	body = decode(t, do(s, http.MethodGet, "/api/diagnostics?file=guide.rst&severity=error", ""))
	if list, _ := body["diagnostics"].([]any); len(list) != 0 {
		t.Errorf("expected no errors in guide.rst, got %v", list)
	}
}

func TestTOC(t *testing.T) {
	s, _ := newTestServer(t, "", true)
	body := decode(t, do(s, http.MethodGet, "/api/toc", ""))
	if body["url"] != "index" || body["title"] != "Home" {
		t.Errorf("unexpected toc root %v", body)
	}
	if !strings.Contains(do(s, http.MethodGet, "/api/toc", "").Body.String(), `"url":"guide"`) {
		t.Error("expected guide in the toc")
	}
}

func TestBuildStats(t *testing.T) {
	s, _ := newTestServer(t, "", true)
	body := decode(t, do(s, http.MethodGet, "/api/stats/builds", ""))
	stats := body["stats"].(map[string]any)
	if stats["count"] != float64(1) {
		t.Errorf("expected 1 build, got %v", stats["count"])
	}
	if body["queue_depth"] != float64(0) {
		t.Errorf("expected empty queue, got %v", body["queue_depth"])
	}
}
