package timeline

import (
	"math"
	"testing"

	"prcast/pkg/model"
	"prcast/pkg/template"
)

func builtinTemplate(t *testing.T, tt template.Type) *template.Template {
	t.Helper()
	for _, tpl := range template.Builtin() {
		if tpl.Type == tt {
			return tpl
		}
	}
	t.Fatalf("no builtin template %s", tt)
	return nil
}

func TestChooseStrategyBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		natural float64
		target  float64
		want    Strategy
	}{
		{"ratio well below", 100, 50, StrategyCompression},
		{"ratio 0.69", 100, 69, StrategyCompression},
		{"ratio 0.71", 100, 71, StrategyBalanced},
		{"ratio 1.0", 100, 100, StrategyBalanced},
		{"ratio 1.29", 100, 129, StrategyBalanced},
		{"ratio 1.31", 100, 131, StrategyExpansion},
		{"nothing selected", 0, 120, StrategyExpansion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseStrategy(tt.natural, tt.target); got != tt.want {
				t.Errorf("ChooseStrategy(%.0f, %.0f) = %s, want %s", tt.natural, tt.target, got, tt.want)
			}
		})
	}
}

func richSelection() Selection {
	items := []*model.ContentItem{
		tierItem(model.ContentPROverview, model.TierCritical, 0.9, 15),
		tierItem(model.ContentCommitHistory, model.TierHigh, 0.7, 12),
		tierItem(model.ContentFileChanges, model.TierHigh, 0.72, 18),
		tierItem(model.ContentReviewFeedback, model.TierMedium, 0.5, 15),
		tierItem(model.ContentMetrics, model.TierMedium, 0.45, 10),
	}
	var sel Selection
	for _, item := range items {
		sel.keep(item)
	}
	return sel
}

func TestOptimizeBalancedHitsTarget(t *testing.T) {
	tpl := builtinTemplate(t, template.TypeSummary)
	plan := Optimize(richSelection(), tpl, 90)

	if plan.Strategy != StrategyBalanced {
		t.Fatalf("strategy = %s, want balanced", plan.Strategy)
	}
	if plan.Total > 90*1.05 {
		t.Errorf("total %.1f overshoots the 90s target", plan.Total)
	}
	if plan.Compliance < 0.8 {
		t.Errorf("compliance %.2f unexpectedly low", plan.Compliance)
	}
}

func TestOptimizeCompressionRespectsFloors(t *testing.T) {
	tpl := builtinTemplate(t, template.TypeSummary)
	plan := Optimize(richSelection(), tpl, 30) // natural ~86, ratio ~0.35

	if plan.Strategy != StrategyCompression {
		t.Fatalf("strategy = %s, want compression", plan.Strategy)
	}
	for _, s := range plan.Sections {
		def, ok := tpl.Section(s.Type)
		floor := defaultFloor
		if ok && def.Duration.Min > 0 {
			floor = def.Duration.Min
		}
		if s.Allocated < floor {
			t.Errorf("section %s allocated %.1f below floor %.1f", s.Type, s.Allocated, floor)
		}
	}
	if len(plan.Cuts) == 0 {
		t.Error("heavy compression recorded no cuts")
	}
	// Floors can push the total past the target, but never past twice it.
	if plan.Total >= 60 {
		t.Errorf("total %.1f, want under 2x the 30s target", plan.Total)
	}
	if len(plan.Warnings) == 0 {
		t.Error("expected a deviation warning for an unreachable target")
	}
}

func TestOptimizeBalancedKeepsSectionFloors(t *testing.T) {
	// A low-tier item and a sub-1.0 section multiplier pull the adjusted
	// duration under the declared minimum without any compression running.
	tpl := &template.Template{
		ID:       "floor-check",
		Type:     "custom",
		Duration: template.DurationRange{Min: 10, Max: 60, Default: 20},
		Sections: []template.SectionDefinition{
			{
				Type: model.SectionMetrics, Title: "By the Numbers", Required: true,
				Duration:            template.DurationAllocation{Min: 12, Max: 25, Preferred: 15},
				ContentRequirements: []model.ContentType{model.ContentMetrics},
			},
		},
	}
	var sel Selection
	sel.keep(tierItem(model.ContentMetrics, model.TierMedium, 0.5, 10))

	plan := Optimize(sel, tpl, 13) // 10 x 1.0 tier x 0.9 type = 9 before the floor

	if plan.Strategy != StrategyBalanced {
		t.Fatalf("strategy = %s, want balanced", plan.Strategy)
	}
	if len(plan.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(plan.Sections))
	}
	if got := plan.Sections[0].Allocated; got != 12 {
		t.Errorf("allocated %.2f, want the 12s floor", got)
	}
	if len(plan.Cuts) != 0 {
		t.Errorf("floor raise recorded cuts: %+v", plan.Cuts)
	}
}

func TestOptimizeExpansionFillsLongTarget(t *testing.T) {
	tpl := builtinTemplate(t, template.TypeDetailed)
	plan := Optimize(richSelection(), tpl, 1800) // natural ~100, ratio > 1.3

	if plan.Strategy != StrategyExpansion {
		t.Fatalf("strategy = %s, want expansion", plan.Strategy)
	}
	if plan.Total <= 600 {
		t.Errorf("total %.1f, expansion should exceed a third of the 1800s target", plan.Total)
	}
	for _, s := range plan.Sections {
		if s.Allocated < s.Natural {
			t.Errorf("section %s shrank under expansion: %.1f < %.1f", s.Type, s.Allocated, s.Natural)
		}
	}
}

func TestOptimizeRequiredSectionWithoutContentWarns(t *testing.T) {
	tpl := builtinTemplate(t, template.TypeDetailed)
	var sel Selection
	sel.keep(tierItem(model.ContentPROverview, model.TierCritical, 0.9, 15))

	plan := Optimize(sel, tpl, 300)

	for _, s := range plan.Sections {
		if s.Type == model.SectionCommits {
			t.Error("commit section planned with no commit content")
		}
	}
	if len(plan.Warnings) == 0 {
		t.Error("missing required-section warnings")
	}
}

func TestOptimizeComplianceFormula(t *testing.T) {
	tpl := builtinTemplate(t, template.TypeSummary)
	plan := Optimize(richSelection(), tpl, 90)

	want := math.Max(0, 1-math.Abs(plan.Total-90)/90)
	if math.Abs(plan.Compliance-want) > 1e-9 {
		t.Errorf("compliance %.4f, want %.4f", plan.Compliance, want)
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	tpl := builtinTemplate(t, template.TypeSummary)
	a := Optimize(richSelection(), tpl, 75)
	b := Optimize(richSelection(), tpl, 75)

	if len(a.Sections) != len(b.Sections) {
		t.Fatal("section counts differ across identical runs")
	}
	for i := range a.Sections {
		if a.Sections[i].Type != b.Sections[i].Type || a.Sections[i].Allocated != b.Sections[i].Allocated {
			t.Errorf("section %d differs across identical runs", i)
		}
	}
}
