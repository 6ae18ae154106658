package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prcast/pkg/template"
)

func TestTemplatesHandleList(t *testing.T) {
	h := NewTemplatesHandler(template.NewRegistry())

	req := httptest.NewRequest("GET", "/api/templates", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleList(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Templates []TemplateSummary `json:"templates"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Templates) != 4 {
		t.Fatalf("templates = %d, want 4", len(resp.Templates))
	}
	seen := make(map[template.Type]bool)
	for _, s := range resp.Templates {
		seen[s.Type] = true
		if s.Name == "" || s.Sections == 0 {
			t.Errorf("template %s missing name or sections", s.Type)
		}
		if s.MinDuration <= 0 || s.MaxDuration < s.MinDuration {
			t.Errorf("template %s has bad duration bounds %v..%v", s.Type, s.MinDuration, s.MaxDuration)
		}
	}
	for _, tt := range []template.Type{template.TypeSummary, template.TypeDetailed, template.TypeTechnical, template.TypeOverview} {
		if !seen[tt] {
			t.Errorf("missing template %s", tt)
		}
	}
}
