// Package github fetches pull request activity from the GitHub REST API and
// folds it into the aggregate the engine consumes.
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"prcast/pkg/config"
	"prcast/pkg/tracker"
)

const defaultUserAgent = "prcast/1.0"

// Client is a minimal GitHub REST client with retries, pagination, and
// rate-limit awareness. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retries    int
	baseDelay  time.Duration
	maxDelay   time.Duration
	perPage    int

	mu            sync.Mutex
	rateRemaining int
	rateReset     time.Time

	tracker *tracker.Tracker
}

// trackerSource labels this client's counters in stats snapshots.
const trackerSource = "github"

// SetTracker attaches a usage tracker. Call before the first request; the
// client works fine without one.
func (c *Client) SetTracker(t *tracker.Tracker) {
	c.tracker = t
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.GitHubConfig) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	perPage := cfg.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	return &Client{
		httpClient:    &http.Client{Timeout: time.Duration(cfg.Timeout)},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         cfg.Token,
		retries:       retries,
		baseDelay:     time.Duration(cfg.Backoff.BaseDelay),
		maxDelay:      time.Duration(cfg.Backoff.MaxDelay),
		perPage:       perPage,
		rateRemaining: -1,
	}
}

// Ping checks API reachability and token validity without spending much of
// the rate budget. The rate_limit endpoint itself is not rate limited.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.get(ctx, "/rate_limit", nil)
	if err != nil {
		return fmt.Errorf("github api unreachable: %w", err)
	}
	return nil
}

// get performs one GET against the API and returns the body and headers.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getURL(ctx, u)
}

// getURL fetches an absolute URL with exponential backoff on retryable
// errors. 429 and 5xx responses are retried; other 4xx are terminal.
func (c *Client) getURL(ctx context.Context, u string) ([]byte, http.Header, error) {
	c.waitForRateLimit(ctx)

	for attempt := 0; attempt < c.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Accept", "application/vnd.github+json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		slog.Debug("github request", "url", u, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			slog.Warn("github request failed, retrying", "url", u, "attempt", attempt+1, "error", err)
			c.trackRetry()
			if err := c.sleep(ctx, attempt); err != nil {
				return nil, nil, err
			}
			continue
		}

		c.recordRateLimit(resp.Header)

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			slog.Warn("github backoff", "status", resp.StatusCode, "url", u, "attempt", attempt+1)
			c.trackRetry()
			if err := c.sleep(ctx, attempt); err != nil {
				return nil, nil, err
			}
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			c.trackFailure()
			return nil, nil, fmt.Errorf("github api error: status %d for %s", resp.StatusCode, u)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read error: %w", err)
		}
		c.trackSuccess()
		return body, resp.Header, nil
	}
	c.trackFailure()
	return nil, nil, fmt.Errorf("max retries exceeded for %s", u)
}

func (c *Client) trackSuccess() {
	if c.tracker != nil {
		c.tracker.TrackAPISuccess(trackerSource)
	}
}

func (c *Client) trackFailure() {
	if c.tracker != nil {
		c.tracker.TrackAPIFailure(trackerSource)
	}
}

func (c *Client) trackRetry() {
	if c.tracker != nil {
		c.tracker.TrackAPIRetry(trackerSource)
	}
}

// getPaged fetches every page of a list endpoint by following the Link
// header's rel="next" until it runs out.
func (c *Client) getPaged(ctx context.Context, path string, query url.Values) ([][]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(c.perPage))

	var pages [][]byte
	next := c.baseURL + path + "?" + query.Encode()
	for next != "" {
		body, headers, err := c.getURL(ctx, next)
		if err != nil {
			return nil, err
		}
		pages = append(pages, body)
		next = nextLink(headers.Get("Link"))
	}
	return pages, nil
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	d := time.Duration(math.Pow(2, float64(attempt))) * c.baseDelay
	if c.maxDelay > 0 && d > c.maxDelay {
		d = c.maxDelay
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recordRateLimit remembers the server's rate-limit headers.
func (c *Client) recordRateLimit(h http.Header) {
	remaining, err := strconv.Atoi(h.Get("X-Ratelimit-Remaining"))
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateRemaining = remaining
	if reset, err := strconv.ParseInt(h.Get("X-Ratelimit-Reset"), 10, 64); err == nil {
		c.rateReset = time.Unix(reset, 0)
	}
}

// waitForRateLimit blocks until the rate-limit window resets when the
// remaining quota is exhausted.
func (c *Client) waitForRateLimit(ctx context.Context) {
	c.mu.Lock()
	remaining, reset := c.rateRemaining, c.rateReset
	c.mu.Unlock()

	if remaining != 0 || reset.IsZero() {
		return
	}
	wait := time.Until(reset)
	if wait <= 0 {
		return
	}
	slog.Warn("github rate limit exhausted, waiting", "until", reset)
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

// nextLink extracts the rel="next" URL from a Link header, or "".
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		if len(fields) < 2 {
			continue
		}
		if strings.TrimSpace(fields[1]) != `rel="next"` {
			continue
		}
		u := strings.TrimSpace(fields[0])
		return strings.Trim(u, "<>")
	}
	return ""
}
