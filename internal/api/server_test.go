package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"prcast/pkg/template"
	"prcast/pkg/tracker"
	"prcast/pkg/version"
)

func testServer(t *testing.T, shutdown func()) *http.Server {
	t.Helper()
	if shutdown == nil {
		shutdown = func() {}
	}
	scripts := newTestHandler(&MockFetcher{}, NewMockStore())
	templates := NewTemplatesHandler(template.NewRegistry())
	stats := NewStatsHandler(tracker.New())
	return NewServer("127.0.0.1:0", scripts, templates, stats, shutdown)
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestHandleVersion(t *testing.T) {
	srv := testServer(t, nil)

	req := httptest.NewRequest("GET", "/api/version", http.NoBody)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != version.Version {
		t.Errorf("version = %q, want %q", resp.Version, version.Version)
	}
}

func TestHandleShutdown(t *testing.T) {
	var called atomic.Bool
	srv := testServer(t, func() { called.Store(true) })

	req := httptest.NewRequest("POST", "/api/shutdown", http.NoBody)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !called.Load() {
		if time.Now().After(deadline) {
			t.Fatal("shutdown func not called")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(t, nil)

	req := httptest.NewRequest("DELETE", "/api/scripts", http.NoBody)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
