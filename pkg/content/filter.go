package content

import (
	"fmt"
	"log/slog"
	"strings"

	"prcast/pkg/model"
)

// Filter applies the filtering rules in order and drops items below the
// importance threshold. Boost and demote adjust the priority score only; the
// tier assigned during prioritization stands. A field missing from an item
// makes every comparison false, so rules never panic on sparse data.
func Filter(items []*model.ContentItem, rules []FilteringRule, threshold float64) []*model.ContentItem {
	kept := make([]*model.ContentItem, 0, len(items))

	for _, item := range items {
		excluded := false
		for _, rule := range rules {
			if !matches(rule, item) {
				continue
			}
			switch rule.Action {
			case ActionExclude:
				excluded = true
			case ActionInclude:
				excluded = false
			case ActionBoost:
				item.PriorityScore = clamp01(item.PriorityScore + amountOf(rule))
			case ActionDemote:
				item.PriorityScore = clamp01(item.PriorityScore - amountOf(rule))
			}
		}
		if excluded {
			slog.Debug("filter excluded item", "type", item.Type)
			continue
		}
		if item.RelevanceScore < threshold && item.Priority != model.TierCritical {
			slog.Debug("filter dropped item below threshold",
				"type", item.Type, "relevance", item.RelevanceScore, "threshold", threshold)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func amountOf(rule FilteringRule) float64 {
	if rule.Amount > 0 {
		return rule.Amount
	}
	return 0.1
}

func matches(rule FilteringRule, item *model.ContentItem) bool {
	val := item.Field(rule.Field)
	if rule.Operator == "exists" {
		return val != nil
	}
	if val == nil {
		return false
	}

	switch rule.Operator {
	case "eq":
		return equalValues(val, rule.Value)
	case "neq":
		return !equalValues(val, rule.Value)
	case "contains":
		return strings.Contains(fmt.Sprint(val), fmt.Sprint(rule.Value))
	}

	// Remaining operators are numeric.
	a, aok := numeric(val)
	b, bok := numeric(rule.Value)
	if !aok || !bok {
		return false
	}
	switch rule.Operator {
	case "gt":
		return a > b
	case "gte":
		return a >= b
	case "lt":
		return a < b
	case "lte":
		return a <= b
	}
	return false
}

func equalValues(a, b any) bool {
	if fa, ok := numeric(a); ok {
		if fb, ok := numeric(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
