package api

import (
	"net/http"

	"prcast/pkg/tracker"
)

// StatsHandler exposes request and cache counters.
type StatsHandler struct {
	tracker *tracker.Tracker
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(tr *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: tr}
}

// HandleStats handles GET /api/stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sources": h.tracker.Snapshot()})
}
