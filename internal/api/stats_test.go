package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prcast/pkg/tracker"
)

func TestHandleStats(t *testing.T) {
	tr := tracker.New()
	tr.TrackAPISuccess("github")
	tr.TrackAPIRetry("github")
	h := NewStatsHandler(tr)

	req := httptest.NewRequest("GET", "/api/stats", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Sources map[string]tracker.SourceStats `json:"sources"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := resp.Sources["github"]
	if s.APISuccess != 1 || s.APIRetries != 1 {
		t.Errorf("unexpected snapshot: %+v", s)
	}
}

func TestAggregateCacheCounters(t *testing.T) {
	tr := tracker.New()
	fetcher := &MockFetcher{agg: apiAggregate()}
	st := NewMockStore()
	h := newTestHandler(fetcher, st)
	h.SetTracker(tr)

	// First call misses, fetches, and caches.
	w := postJSON(t, h.HandleGenerate, "/api/scripts/generate", GenerateRequest{
		Repo: "acme/cachekit", PRNumber: 51, Config: validConfig(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// Second call hits the cache.
	w = postJSON(t, h.HandleGenerate, "/api/scripts/generate", GenerateRequest{
		Repo: "acme/cachekit", PRNumber: 51, Config: validConfig(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	snap := tr.Snapshot()["aggregate-cache"]
	if snap.CacheMisses != 1 || snap.CacheHits != 1 {
		t.Errorf("cache counters = %+v, want 1 hit and 1 miss", snap)
	}
}
