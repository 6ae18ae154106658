package timeline

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"prcast/pkg/model"
	"prcast/pkg/template"
)

// Strategy names the optimization regime chosen from the ratio of target to
// natural duration.
type Strategy string

const (
	StrategyCompression Strategy = "aggressive_compression"
	StrategyExpansion   Strategy = "content_expansion"
	StrategyBalanced    Strategy = "balanced_optimization"
)

// Ratio boundaries for strategy choice.
const (
	compressionBelow = 0.7
	expansionAbove   = 1.3
)

// defaultFloor is the minimum seconds any planned section keeps when its
// template allocation declares no minimum.
const defaultFloor = 5.0

// tierMultiplier weights a section's duration by the priority of its content.
var tierMultiplier = map[model.PriorityTier]float64{
	model.TierCritical: 1.15,
	model.TierHigh:     1.05,
	model.TierMedium:   1.0,
	model.TierLow:      0.9,
	model.TierOptional: 0.8,
}

// sectionMultiplier weights durations by section kind: walkable code earns
// more screen time per second of estimate than a contributor roll call.
var sectionMultiplier = map[model.SectionType]float64{
	model.SectionIntro:       1.0,
	model.SectionOverview:    1.1,
	model.SectionCommits:     1.0,
	model.SectionFileChanges: 1.05,
	model.SectionCodeWalk:    1.2,
	model.SectionReview:      1.0,
	model.SectionTeam:        0.85,
	model.SectionMetrics:     0.9,
	model.SectionTimeline:    0.9,
	model.SectionImpact:      1.1,
	model.SectionSummary:     1.0,
}

// ContentCut records trimming applied to a section during compression.
type ContentCut struct {
	Section       model.SectionType `json:"section"`
	Kind          string            `json:"kind"` // detail_reduction, example_removal
	Seconds       float64           `json:"seconds"`
	QualityImpact float64           `json:"quality_impact"`
}

// PlannedSection is one section with its content and final duration budget.
type PlannedSection struct {
	Type      model.SectionType
	Title     string
	Tier      model.PriorityTier
	Items     []*model.ContentItem
	Natural   float64
	Allocated float64
}

// Plan is the optimizer's output: sections in the template's declared order
// with final durations, plus the bookkeeping the quality assessor and the
// caller's warnings need.
type Plan struct {
	Sections   []PlannedSection
	Strategy   Strategy
	Total      float64
	Target     float64
	Compliance float64
	Cuts       []ContentCut
	Warnings   []string
}

// ChooseStrategy picks the regime from the target-to-natural ratio. A zero
// natural duration means there is nothing to compress, so expansion applies.
func ChooseStrategy(natural, target float64) Strategy {
	if natural <= 0 {
		return StrategyExpansion
	}
	ratio := target / natural
	switch {
	case ratio < compressionBelow:
		return StrategyCompression
	case ratio > expansionAbove:
		return StrategyExpansion
	default:
		return StrategyBalanced
	}
}

// Optimize maps the selected items onto the template's sections and fits the
// section durations to the target. Sections keep the template's declared
// order here; narrative ordering rules are applied later by the assembler.
func Optimize(sel Selection, tpl *template.Template, target float64) *Plan {
	plan := &Plan{Target: target}
	plan.Sections = buildSections(sel.Items, tpl, plan)

	var natural float64
	for i := range plan.Sections {
		natural += plan.Sections[i].Natural
	}
	plan.Strategy = ChooseStrategy(natural, target)
	slog.Debug("optimization strategy chosen",
		"strategy", plan.Strategy, "natural", natural, "target", target)

	// First pass: multiplier-adjusted durations, never below the section
	// floor. Low-tier multipliers can pull an allocation under a declared
	// minimum even when no compression runs.
	for i := range plan.Sections {
		s := &plan.Sections[i]
		s.Allocated = s.Natural * tierMultiplier[s.Tier] * multiplierFor(s.Type)
		if floor := floorFor(tpl, s.Type); s.Allocated < floor {
			s.Allocated = floor
		}
	}

	if plan.Strategy == StrategyExpansion {
		expand(plan, tpl, target)
	}

	if total := planTotal(plan); total > target {
		compress(plan, tpl, target)
	}

	plan.Total = planTotal(plan)
	plan.Compliance = math.Max(0, 1-math.Abs(plan.Total-target)/target)

	if deviation := math.Abs(plan.Total-target) / target; deviation > 0.10 {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"final duration %.0fs deviates %.0f%% from the %.0fs target",
			plan.Total, deviation*100, target))
	}
	impactBySection := make(map[model.SectionType]float64)
	for _, cut := range plan.Cuts {
		impactBySection[cut.Section] += cut.QualityImpact
	}
	for i := range plan.Sections {
		st := plan.Sections[i].Type
		if impactBySection[st] > 0.3 {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"section %s was cut hard enough to hurt quality", st))
		}
	}
	return plan
}

func multiplierFor(st model.SectionType) float64 {
	if m, ok := sectionMultiplier[st]; ok {
		return m
	}
	return 1.0
}

// buildSections groups the selected items under the template's declared
// sections. Framing sections with no content requirements are always
// planned at their preferred duration; content sections are planned only
// when at least one selected item feeds them. A required section left
// without content produces a warning instead of an empty section.
func buildSections(items []*model.ContentItem, tpl *template.Template, plan *Plan) []PlannedSection {
	byType := make(map[model.ContentType][]*model.ContentItem)
	for _, item := range items {
		byType[item.Type] = append(byType[item.Type], item)
	}

	var sections []PlannedSection
	for _, def := range tpl.Sections {
		if len(def.ContentRequirements) == 0 {
			sections = append(sections, PlannedSection{
				Type: def.Type, Title: def.Title,
				Tier: model.TierCritical, Natural: def.Duration.Preferred,
			})
			continue
		}

		var feed []*model.ContentItem
		for _, ct := range def.ContentRequirements {
			feed = append(feed, byType[ct]...)
		}
		if len(feed) == 0 {
			if def.Required {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf(
					"no content available for required section %s", def.Type))
			}
			continue
		}

		s := PlannedSection{Type: def.Type, Title: def.Title, Items: feed, Tier: model.TierOptional}
		volume := 0
		for _, item := range feed {
			s.Natural += item.DurationImpact
			volume += int(itemVolume(item))
			if item.Priority.Rank() < s.Tier.Rank() {
				s.Tier = item.Priority
			}
		}
		if dyn := def.Duration.Dynamic; dyn != nil {
			s.Natural = template.DynamicDuration(s.Natural, dyn.PerItemSeconds, volume, dyn.MaxScale)
		}
		sections = append(sections, s)
	}
	return sections
}

func itemVolume(item *model.ContentItem) float64 {
	if v, ok := item.Field("volume").(int); ok {
		return float64(v)
	}
	return 1
}

// expand raises sections toward their template percentage share of the
// target. Only sections that declare a percentage grow; the rest keep their
// adjusted duration.
func expand(plan *Plan, tpl *template.Template, target float64) {
	for i := range plan.Sections {
		s := &plan.Sections[i]
		def, ok := tpl.Section(s.Type)
		if !ok || def.Duration.Percentage <= 0 {
			continue
		}
		if share := def.Duration.Percentage * target; share > s.Allocated {
			s.Allocated = share
		}
	}
}

// compress fits the plan into the target by walking sections in priority
// order and clamping each to what the remaining budget allows, never below
// its floor. Cuts below the natural duration are recorded with a quality
// impact so the assessor and the caller can surface the damage.
func compress(plan *Plan, tpl *template.Template, target float64) {
	order := make([]*PlannedSection, len(plan.Sections))
	for i := range plan.Sections {
		order[i] = &plan.Sections[i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		if ra, rb := order[i].Tier.Rank(), order[j].Tier.Rank(); ra != rb {
			return ra < rb
		}
		return tpl.DeclaredIndex(order[i].Type) < tpl.DeclaredIndex(order[j].Type)
	})

	remaining := target
	for _, s := range order {
		allowed := math.Min(s.Allocated, remaining*0.9)
		if floor := floorFor(tpl, s.Type); allowed < floor {
			allowed = floor
		}
		if allowed < s.Natural {
			cut := ContentCut{Section: s.Type, Seconds: s.Natural - allowed}
			if allowed < s.Natural*0.75 {
				cut.Kind = "detail_reduction"
				cut.QualityImpact = 0.2
			} else {
				cut.Kind = "example_removal"
				cut.QualityImpact = 0.1
			}
			plan.Cuts = append(plan.Cuts, cut)
			slog.Debug("compressed section",
				"section", s.Type, "from", s.Natural, "to", allowed, "kind", cut.Kind)
		}
		s.Allocated = allowed
		remaining = math.Max(0, remaining-allowed)
	}
}

func floorFor(tpl *template.Template, st model.SectionType) float64 {
	if def, ok := tpl.Section(st); ok && def.Duration.Min > 0 {
		return def.Duration.Min
	}
	return defaultFloor
}

func planTotal(plan *Plan) float64 {
	var total float64
	for i := range plan.Sections {
		total += plan.Sections[i].Allocated
	}
	return total
}
