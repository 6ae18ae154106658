package timeline

import (
	"testing"

	"prcast/pkg/model"
)

func tierItem(ct model.ContentType, tier model.PriorityTier, score, impact float64) *model.ContentItem {
	return &model.ContentItem{
		Type: ct, Priority: tier,
		PriorityScore: score, RelevanceScore: score,
		DurationImpact: impact,
		Fields:         map[string]any{"volume": 1},
	}
}

func TestSelectCriticalAlwaysKept(t *testing.T) {
	items := []*model.ContentItem{
		tierItem(model.ContentPROverview, model.TierCritical, 0.9, 50),
		tierItem(model.ContentImpact, model.TierCritical, 0.85, 50),
	}
	sel := Select(items, 30) // both exceed the target on their own

	if len(sel.Items) != 2 {
		t.Fatalf("kept %d critical items, want 2", len(sel.Items))
	}
	if sel.Natural != 100 {
		t.Errorf("natural = %.0f, want 100", sel.Natural)
	}
}

func TestSelectHighTierCap(t *testing.T) {
	// Target 100: high items fit while total <= 80.
	items := []*model.ContentItem{
		tierItem(model.ContentFileChanges, model.TierHigh, 0.75, 50),
		tierItem(model.ContentCommitHistory, model.TierHigh, 0.70, 30),
		tierItem(model.ContentCodeSamples, model.TierHigh, 0.65, 10), // 50+30+10 > 80
	}
	sel := Select(items, 100)

	if len(sel.Items) != 2 {
		t.Fatalf("kept %d high items, want 2", len(sel.Items))
	}
	if len(sel.Skipped) != 1 || sel.Skipped[0].Type != model.ContentCodeSamples {
		t.Error("lowest-scored high item should be the one skipped")
	}
}

func TestSelectLowerTiersFillTo95(t *testing.T) {
	items := []*model.ContentItem{
		tierItem(model.ContentPROverview, model.TierHigh, 0.7, 60),
		tierItem(model.ContentMetrics, model.TierMedium, 0.5, 30),   // 90 <= 95
		tierItem(model.ContentTimeline, model.TierLow, 0.3, 10),     // 100 > 95
		tierItem(model.ContentParticipants, model.TierLow, 0.25, 5), // 95 <= 95
	}
	sel := Select(items, 100)

	kept := make(map[model.ContentType]bool)
	for _, item := range sel.Items {
		kept[item.Type] = true
	}
	if !kept[model.ContentMetrics] || !kept[model.ContentParticipants] {
		t.Error("items under the 95% cap should be kept")
	}
	if kept[model.ContentTimeline] {
		t.Error("item pushing past the 95% cap should be skipped")
	}
}

func TestSelectPriorityOrderPreserved(t *testing.T) {
	// Input deliberately shuffled; selection must re-establish priority order.
	items := []*model.ContentItem{
		tierItem(model.ContentMetrics, model.TierMedium, 0.5, 5),
		tierItem(model.ContentPROverview, model.TierCritical, 0.9, 5),
		tierItem(model.ContentFileChanges, model.TierHigh, 0.7, 5),
	}
	sel := Select(items, 1000)

	want := []model.ContentType{model.ContentPROverview, model.ContentFileChanges, model.ContentMetrics}
	for i, ct := range want {
		if sel.Items[i].Type != ct {
			t.Fatalf("position %d: got %s, want %s", i, sel.Items[i].Type, ct)
		}
	}
}
