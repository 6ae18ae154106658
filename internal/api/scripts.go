package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"prcast/pkg/generator"
	"prcast/pkg/model"
	"prcast/pkg/store"
	"prcast/pkg/tracker"
)

// AggregateFetcher fetches pull request activity from the forge.
type AggregateFetcher interface {
	FetchAggregate(ctx context.Context, owner, repo string, number int) (*model.PRAggregate, error)
}

// ScriptGenerator runs generation requests.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, agg *model.PRAggregate, cfg generator.Config) *generator.Result
}

// ScriptsHandler handles script generation and history endpoints.
type ScriptsHandler struct {
	gen      ScriptGenerator
	fetcher  AggregateFetcher
	store    store.ScriptStore
	cacheAge time.Duration
	tracker  *tracker.Tracker
}

// aggregateCacheSource labels the aggregate cache in stats snapshots.
const aggregateCacheSource = "aggregate-cache"

// SetTracker attaches a usage tracker for cache hit and miss counters.
func (h *ScriptsHandler) SetTracker(tr *tracker.Tracker) {
	h.tracker = tr
}

// NewScriptsHandler creates a new ScriptsHandler. cacheAge bounds how old a
// cached PR aggregate may be before it is refetched.
func NewScriptsHandler(gen ScriptGenerator, fetcher AggregateFetcher, st store.ScriptStore, cacheAge time.Duration) *ScriptsHandler {
	return &ScriptsHandler{
		gen:      gen,
		fetcher:  fetcher,
		store:    st,
		cacheAge: cacheAge,
	}
}

// GenerateRequest is the body of POST /api/scripts/generate.
type GenerateRequest struct {
	Repo     string           `json:"repo"` // "owner/name"
	PRNumber int              `json:"pr_number"`
	Config   generator.Config `json:"config"`
}

// GenerateResponse wraps the generation result with its storage ID.
type GenerateResponse struct {
	ID     string            `json:"id"`
	Result *generator.Result `json:"result"`
}

// HandleGenerate handles POST /api/scripts/generate.
func (h *ScriptsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("API: HandleGenerate decode error", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	owner, name, ok := splitRepo(req.Repo)
	if !ok {
		http.Error(w, "repo must be owner/name", http.StatusBadRequest)
		return
	}
	if req.PRNumber <= 0 {
		http.Error(w, "pr_number must be positive", http.StatusBadRequest)
		return
	}
	if v := generator.ValidateConfig(req.Config); !v.IsValid {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": v.Errors})
		return
	}

	agg, err := h.aggregate(r.Context(), owner, name, req.PRNumber)
	if err != nil {
		slog.Error("API: aggregate fetch failed", "repo", req.Repo, "pr", req.PRNumber, "error", err)
		http.Error(w, fmt.Sprintf("fetch PR data: %v", err), http.StatusBadGateway)
		return
	}

	result := h.gen.GenerateScript(r.Context(), agg, req.Config)

	if result.Success {
		if err := h.store.SaveScript(r.Context(), req.Repo, req.PRNumber, result.Script); err != nil {
			slog.Error("API: failed to persist script", "error", err)
			// The caller still gets their script; history is best effort.
		}
	}

	writeJSON(w, http.StatusOK, GenerateResponse{ID: result.Script.ID, Result: result})
}

// ValidateRequest is the body of POST /api/scripts/validate.
type ValidateRequest struct {
	Config generator.Config `json:"config"`
}

// HandleValidate handles POST /api/scripts/validate. It checks a generation
// config without fetching anything or running the pipeline.
func (h *ScriptsHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, generator.ValidateConfig(req.Config))
}

// HandleList handles GET /api/scripts.
func (h *ScriptsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	summaries, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("API: failed to list scripts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"scripts": summaries})
}

// HandleGet handles GET /api/scripts/{id}.
func (h *ScriptsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	script, err := h.store.GetScript(r.Context(), id)
	if err != nil {
		slog.Error("API: failed to load script", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if script == nil {
		http.Error(w, "script not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, script)
}

// aggregate returns a cached PR aggregate when fresh enough, fetching and
// caching otherwise.
func (h *ScriptsHandler) aggregate(ctx context.Context, owner, name string, number int) (*model.PRAggregate, error) {
	repo := owner + "/" + name
	if cached, err := h.store.GetAggregate(ctx, repo, number, h.cacheAge); err == nil && cached != nil {
		slog.Debug("API: aggregate cache hit", "repo", repo, "pr", number)
		if h.tracker != nil {
			h.tracker.TrackCacheHit(aggregateCacheSource)
		}
		return cached, nil
	}
	if h.tracker != nil {
		h.tracker.TrackCacheMiss(aggregateCacheSource)
	}

	agg, err := h.fetcher.FetchAggregate(ctx, owner, name, number)
	if err != nil {
		return nil, err
	}
	if err := h.store.SaveAggregate(ctx, repo, number, agg); err != nil {
		slog.Warn("API: failed to cache aggregate", "repo", repo, "error", err)
	}
	return agg, nil
}

func splitRepo(s string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(s, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("API: failed to encode response", "error", err)
	}
}
