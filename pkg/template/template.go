// Package template holds the declarative video template definitions: which
// sections a video style carries, how long they run, and how they are
// ordered. Templates are plain immutable data loaded at startup; a new
// template is data, not code.
package template

import (
	"fmt"

	"prcast/pkg/model"
)

// Type names one video template style.
type Type string

const (
	TypeSummary   Type = "summary"
	TypeDetailed  Type = "detailed"
	TypeTechnical Type = "technical"
	TypeOverview  Type = "overview"
)

// DurationRange bounds the target duration a template supports.
type DurationRange struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

// DynamicRule scales a section's duration with its content volume.
type DynamicRule struct {
	PerItemSeconds float64 `yaml:"per_item_seconds"`
	MaxScale       float64 `yaml:"max_scale"`
}

// DurationAllocation bounds one section's duration within a template.
// Percentage, when set, is the share of the target duration the section may
// grow to under content expansion.
type DurationAllocation struct {
	Min        float64      `yaml:"min"`
	Max        float64      `yaml:"max"`
	Preferred  float64      `yaml:"preferred"`
	Percentage float64      `yaml:"percentage,omitempty"`
	Dynamic    *DynamicRule `yaml:"dynamic,omitempty"`
}

// SectionDefinition declares one section a template may emit.
type SectionDefinition struct {
	Type     model.SectionType  `yaml:"type"`
	Title    string             `yaml:"title"`
	Required bool               `yaml:"required"`
	Duration DurationAllocation `yaml:"duration"`

	// ContentRequirements lists the content types that feed this section.
	// Empty for framing sections (intro, summary) that need no source data.
	ContentRequirements []model.ContentType `yaml:"content_requirements,omitempty"`
	VisualRequirements  []string            `yaml:"visual_requirements,omitempty"`
}

// OrderingRule is a directed precedence edge: Before should appear before
// After. Priority breaks ties when rules conflict; Condition optionally gates
// the edge on data availability ("has_<section type>").
type OrderingRule struct {
	Before    model.SectionType `yaml:"before"`
	After     model.SectionType `yaml:"after"`
	Priority  int               `yaml:"priority"`
	Condition string            `yaml:"condition,omitempty"`
}

// TransitionRule annotates the handover between two adjacent section types.
type TransitionRule struct {
	From     model.SectionType `yaml:"from"`
	To       model.SectionType `yaml:"to"`
	Style    string            `yaml:"style"`
	Duration float64           `yaml:"duration"`
}

// Defaults carries template-level presentation defaults.
type Defaults struct {
	Style  string `yaml:"style"`  // professional, conversational, technical
	Pacing string `yaml:"pacing"` // brisk, measured, relaxed
}

// SuitabilityScoring weights how well a template fits a given audience and
// PR size. Used to rank alternatives, not to gate generation.
type SuitabilityScoring struct {
	AudienceWeights map[model.AudienceType]float64 `yaml:"audience_weights"`
	SmallPRBias     float64                        `yaml:"small_pr_bias"` // added when files < 5
	LargePRBias     float64                        `yaml:"large_pr_bias"` // added when files >= 15
}

// Template describes one video style. Immutable and shared across concurrent
// generation runs; never mutated after registration.
type Template struct {
	ID          string              `yaml:"id"`
	Type        Type                `yaml:"type"`
	Name        string              `yaml:"name"`
	Duration    DurationRange       `yaml:"duration"`
	Sections    []SectionDefinition `yaml:"sections"`
	Ordering    []OrderingRule      `yaml:"ordering,omitempty"`
	Transitions []TransitionRule    `yaml:"transitions,omitempty"`
	Defaults    Defaults            `yaml:"defaults"`
	Suitability SuitabilityScoring  `yaml:"suitability"`
}

// Section returns a template's definition for the given section type.
func (t *Template) Section(st model.SectionType) (SectionDefinition, bool) {
	for _, s := range t.Sections {
		if s.Type == st {
			return s, true
		}
	}
	return SectionDefinition{}, false
}

// RequiredSections returns the declared required-section sequence in order.
func (t *Template) RequiredSections() []SectionDefinition {
	var out []SectionDefinition
	for _, s := range t.Sections {
		if s.Required {
			out = append(out, s)
		}
	}
	return out
}

// DeclaredIndex returns the section type's position in the declared sequence,
// used as the tie-break when ordering rules leave sections unconstrained.
func (t *Template) DeclaredIndex(st model.SectionType) int {
	for i, s := range t.Sections {
		if s.Type == st {
			return i
		}
	}
	return len(t.Sections)
}

// TransitionFor returns the transition rule between two section types, if any.
func (t *Template) TransitionFor(from, to model.SectionType) *TransitionRule {
	for i := range t.Transitions {
		r := &t.Transitions[i]
		if r.From == from && r.To == to {
			return r
		}
	}
	return nil
}

// SuitabilityScore rates how well this template fits the audience and PR
// shape. Pure; deterministic for identical inputs.
func (t *Template) SuitabilityScore(audience model.Audience, filesChanged int) float64 {
	score := 0.5
	if w, ok := t.Suitability.AudienceWeights[audience.Primary]; ok {
		score = w
	}
	switch {
	case filesChanged < 5:
		score += t.Suitability.SmallPRBias
	case filesChanged >= 15:
		score += t.Suitability.LargePRBias
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Validate checks structural sanity of a template definition.
func (t *Template) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("template missing type")
	}
	if t.Duration.Min <= 0 || t.Duration.Max < t.Duration.Min {
		return fmt.Errorf("template %s: invalid duration range [%g, %g]", t.Type, t.Duration.Min, t.Duration.Max)
	}
	if len(t.Sections) == 0 {
		return fmt.Errorf("template %s: no sections declared", t.Type)
	}
	seen := make(map[model.SectionType]bool, len(t.Sections))
	for _, s := range t.Sections {
		if seen[s.Type] {
			return fmt.Errorf("template %s: duplicate section %s", t.Type, s.Type)
		}
		seen[s.Type] = true
		if s.Duration.Min < 0 || (s.Duration.Max > 0 && s.Duration.Max < s.Duration.Min) {
			return fmt.Errorf("template %s: section %s has invalid duration allocation", t.Type, s.Type)
		}
	}
	for _, r := range t.Ordering {
		if !seen[r.Before] || !seen[r.After] {
			return fmt.Errorf("template %s: ordering rule references undeclared section (%s -> %s)", t.Type, r.Before, r.After)
		}
	}
	return nil
}

// DynamicDuration computes a content-count-driven duration: baseline plus a
// per-item rate, capped at maxScale times the baseline.
func DynamicDuration(baseline, perItem float64, itemCount int, maxScale float64) float64 {
	if baseline <= 0 {
		return 0
	}
	d := baseline + perItem*float64(itemCount)
	if maxScale > 0 && d > baseline*maxScale {
		return baseline * maxScale
	}
	return d
}
