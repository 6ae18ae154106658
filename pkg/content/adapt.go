package content

import (
	"log/slog"

	"prcast/pkg/model"
)

// baseDurations is the estimated narration cost, in seconds, of each content
// type. Duration impact is intentionally independent of which adaptations
// fired, so the same selection always budgets the same total.
var baseDurations = map[model.ContentType]float64{
	model.ContentPROverview:     15,
	model.ContentCommitHistory:  12,
	model.ContentFileChanges:    18,
	model.ContentCodeSamples:    20,
	model.ContentReviewFeedback: 15,
	model.ContentDiscussion:     10,
	model.ContentParticipants:   8,
	model.ContentMetrics:        10,
	model.ContentTimeline:       12,
	model.ContentImpact:         12,
}

// BaseDuration returns the narration cost estimate for a content type.
func BaseDuration(ct model.ContentType) float64 {
	if d, ok := baseDurations[ct]; ok {
		return d
	}
	return 10
}

// Adapt evaluates the adaptation rules against each item and returns adapted
// copies; the input items are left untouched. A rule fires when all of its
// triggers hold, appending its actions as adaptation tags and marking the
// transformation hints the assembler's voiceover passes read. Duration
// impact is also assigned here, from the base table.
func Adapt(items []*model.ContentItem, rules []AdaptationRule, audience model.Audience) []*model.ContentItem {
	out := make([]*model.ContentItem, 0, len(items))
	for _, item := range items {
		adapted := item.Clone()
		adapted.DurationImpact = BaseDuration(adapted.Type)

		for _, rule := range rules {
			if !ruleCoversType(rule, adapted.Type) || !triggersHold(rule.Triggers, adapted, audience) {
				continue
			}
			for _, action := range rule.Actions {
				applyAction(adapted, action)
			}
			slog.Debug("adaptation rule fired", "rule", rule.Name, "type", adapted.Type)
		}
		out = append(out, adapted)
	}
	return out
}

func ruleCoversType(rule AdaptationRule, ct model.ContentType) bool {
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

func triggersHold(triggers []AdaptationTrigger, item *model.ContentItem, audience model.Audience) bool {
	for _, tr := range triggers {
		switch tr.Kind {
		case TriggerAudience:
			if audience.Primary != tr.Audience {
				return false
			}
		case TriggerTechLevel:
			if audience.TechnicalLevel != tr.Level {
				return false
			}
		case TriggerVolume:
			if int(asFloat(item.Field("volume"))) < tr.MinVolume {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// applyAction records the transformation on the item. The textual effect is
// realized later when voiceover is generated; here we only tag the item and
// set the hints, so applying the same action twice is a no-op.
func applyAction(item *model.ContentItem, action AdaptAction) {
	tag := string(action)
	for _, existing := range item.Adaptations {
		if existing == tag {
			return
		}
	}
	item.Adaptations = append(item.Adaptations, tag)

	switch action {
	case AdaptSimplifyLanguage:
		item.Fields["language"] = "simplified"
	case AdaptReduceDetail:
		item.Fields["detail_level"] = "reduced"
	case AdaptExpandDetail:
		item.Fields["detail_level"] = "expanded"
	case AdaptAddExplanation:
		item.Fields["annotate"] = true
	}
}
