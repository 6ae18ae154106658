package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prcast/pkg/config"
	"prcast/pkg/tracker"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.GitHubConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Retries: 3,
		Timeout: config.Duration(5 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(time.Millisecond),
			MaxDelay:  config.Duration(10 * time.Millisecond),
		},
		PerPage: 2,
	})
}

func TestGetSendsAuthHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	body, _, err := testClient(srv.URL).get(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	tr := tracker.New()
	c.SetTracker(tr)

	_, _, err := c.get(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("get after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	snap := tr.Snapshot()["github"]
	if snap.APIRetries != 2 || snap.APISuccess != 1 {
		t.Errorf("tracker = %+v, want 2 retries and 1 success", snap)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rate_limit" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"resources":{}}`)
	}))
	defer srv.Close()

	if err := testClient(srv.URL).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	srv.Close()
	if err := testClient(srv.URL).Ping(context.Background()); err == nil {
		t.Error("expected error against closed server")
	}
}

func TestGetDoesNotRetryClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).get(context.Background(), "/x", nil)
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (4xx is terminal)", calls)
	}
}

func TestGetPagedFollowsLinkHeader(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=2>; rel="next", <%s/items?page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[1,2]`)
		default:
			fmt.Fprint(w, `[3]`)
		}
	}))
	defer srv.Close()

	pages, err := testClient(srv.URL).getPaged(context.Background(), "/items", nil)
	if err != nil {
		t.Fatalf("getPaged: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if string(pages[1]) != `[3]` {
		t.Errorf("second page = %s", pages[1])
	}
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"no next", `<https://x/a?page=1>; rel="prev"`, ""},
		{
			"next among several",
			`<https://x/a?page=3>; rel="next", <https://x/a?page=9>; rel="last"`,
			"https://x/a?page=3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextLink(tt.header); got != tt.want {
				t.Errorf("nextLink(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestRecordRateLimit(t *testing.T) {
	c := testClient("http://example.invalid")
	h := http.Header{}
	h.Set("X-Ratelimit-Remaining", "7")
	h.Set("X-Ratelimit-Reset", "1767225600")
	c.recordRateLimit(h)

	if c.rateRemaining != 7 {
		t.Errorf("rateRemaining = %d, want 7", c.rateRemaining)
	}
	if c.rateReset.Unix() != 1767225600 {
		t.Errorf("rateReset = %v", c.rateReset)
	}
}
