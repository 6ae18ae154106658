package api

import (
	"log/slog"
	"net/http"

	"prcast/pkg/template"
)

// TemplatesHandler serves the template catalog.
type TemplatesHandler struct {
	registry *template.Registry
}

// NewTemplatesHandler creates a new TemplatesHandler.
func NewTemplatesHandler(registry *template.Registry) *TemplatesHandler {
	return &TemplatesHandler{registry: registry}
}

// TemplateSummary is one entry of the template listing.
type TemplateSummary struct {
	Type        template.Type `json:"type"`
	Name        string        `json:"name"`
	MinDuration float64       `json:"min_duration_seconds"`
	MaxDuration float64       `json:"max_duration_seconds"`
	Default     float64       `json:"default_duration_seconds"`
	Sections    int           `json:"sections"`
	Style       string        `json:"style"`
}

// HandleList handles GET /api/templates.
func (h *TemplatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	types := h.registry.Available()
	summaries := make([]TemplateSummary, 0, len(types))
	for _, tt := range types {
		tpl, err := h.registry.Get(tt)
		if err != nil {
			slog.Error("API: registry inconsistency", "type", tt, "error", err)
			continue
		}
		summaries = append(summaries, TemplateSummary{
			Type:        tpl.Type,
			Name:        tpl.Name,
			MinDuration: tpl.Duration.Min,
			MaxDuration: tpl.Duration.Max,
			Default:     tpl.Duration.Default,
			Sections:    len(tpl.Sections),
			Style:       tpl.Defaults.Style,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"templates": summaries})
}
