package content

import (
	"sort"

	"prcast/pkg/model"
)

// Prioritize computes each item's priority score and tier, then returns the
// items in selection order: tier ascending, priority score descending,
// relevance descending. The sort is stable and the inputs are never mutated
// beyond the score fields, so identical inputs always produce identical
// orderings.
func Prioritize(items []*model.ContentItem, rules []PrioritizationRule) []*model.ContentItem {
	for _, item := range items {
		boost := 0.0
		for _, rule := range rules {
			if !ruleApplies(rule, item.Type) {
				continue
			}
			boost += ruleScore(rule.Scoring, item) * rule.Weight
		}
		item.PriorityScore = clamp01(item.RelevanceScore + boost)
		item.Priority = model.TierForScore(item.PriorityScore)
	}

	sorted := append([]*model.ContentItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		return a.RelevanceScore > b.RelevanceScore
	})
	return sorted
}

func ruleApplies(rule PrioritizationRule, ct model.ContentType) bool {
	if len(rule.ContentTypes) == 0 {
		return true
	}
	for _, t := range rule.ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// ruleScore evaluates one named scoring strategy against an item, 0..1.
// Unknown kinds score zero so a typo in a custom strategy cannot inflate
// priorities.
func ruleScore(kind ScoringKind, item *model.ContentItem) float64 {
	switch kind {
	case ScoreVolume:
		return clamp01(asFloat(item.Field("volume")) / 15)
	case ScoreSignificance:
		if r := asFloat(item.Field("significant_ratio")); r > 0 {
			return clamp01(r)
		}
		return clamp01(asFloat(item.Field("major_ratio")))
	case ScoreUrgency:
		if consensus, _ := item.Field("consensus").(string); consensus == "blocked" {
			return 1
		}
		if asFloat(item.Field("unresolved_count")) > 0 {
			return 0.8
		}
		return 0.2
	case ScoreRecency:
		return clamp01(asFloat(item.Field("freshness")))
	case ScoreMerged:
		if b, _ := item.Field("merged").(bool); b {
			return 1
		}
		return 0.3
	case ScoreConstant:
		return 1
	default:
		return 0
	}
}
