// Package timeline turns a prioritized item list into a duration-respecting
// section plan: greedy selection under tiered budget caps, then per-section
// duration optimization against the template's allocations.
package timeline

import (
	"log/slog"
	"sort"

	"prcast/pkg/model"
)

// Budget caps, as fractions of the target duration, applied per tier group.
// Critical items ignore the budget entirely.
const (
	highTierCap  = 0.80
	lowerTierCap = 0.95
)

// Selection is the outcome of duration-constrained content selection.
type Selection struct {
	Items   []*model.ContentItem // kept, in priority order
	Skipped []*model.ContentItem // rejected for budget reasons, in priority order
	Natural float64              // summed duration impact of the kept items
}

// Select walks the items in priority order and keeps them under the target
// budget. Critical items are always kept, even past the budget. High items
// are kept while the running total stays within 80% of the target, leaving
// headroom for the tiers below; everything else fills up to 95%. The final
// fit to the exact target is the optimizer's job.
func Select(items []*model.ContentItem, target float64) Selection {
	ordered := append([]*model.ContentItem(nil), items...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		return a.RelevanceScore > b.RelevanceScore
	})

	var sel Selection
	for _, item := range ordered {
		switch {
		case item.Priority == model.TierCritical:
			sel.keep(item)
		case item.Priority == model.TierHigh && sel.Natural+item.DurationImpact <= target*highTierCap:
			sel.keep(item)
		case item.Priority != model.TierHigh && sel.Natural+item.DurationImpact <= target*lowerTierCap:
			sel.keep(item)
		default:
			slog.Debug("selection skipped item over budget",
				"type", item.Type, "tier", item.Priority,
				"impact", item.DurationImpact, "running", sel.Natural, "target", target)
			sel.Skipped = append(sel.Skipped, item)
		}
	}
	return sel
}

func (s *Selection) keep(item *model.ContentItem) {
	s.Items = append(s.Items, item)
	s.Natural += item.DurationImpact
}
