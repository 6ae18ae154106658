package content

import (
	"log/slog"
	"math"

	"prcast/pkg/model"
	"prcast/pkg/template"
)

// audienceAffinity maps how much each viewer group cares about each content
// type. Hand-tuned, not learned.
var audienceAffinity = map[model.ContentType]map[model.AudienceType]float64{
	model.ContentPROverview:     {model.AudienceEngineering: 0.70, model.AudienceExecutive: 0.95, model.AudienceProduct: 0.90, model.AudienceGeneral: 0.85},
	model.ContentCommitHistory:  {model.AudienceEngineering: 0.85, model.AudienceExecutive: 0.35, model.AudienceProduct: 0.50, model.AudienceGeneral: 0.45},
	model.ContentFileChanges:    {model.AudienceEngineering: 0.90, model.AudienceExecutive: 0.30, model.AudienceProduct: 0.50, model.AudienceGeneral: 0.40},
	model.ContentCodeSamples:    {model.AudienceEngineering: 0.95, model.AudienceExecutive: 0.15, model.AudienceProduct: 0.35, model.AudienceGeneral: 0.25},
	model.ContentReviewFeedback: {model.AudienceEngineering: 0.80, model.AudienceExecutive: 0.50, model.AudienceProduct: 0.65, model.AudienceGeneral: 0.50},
	model.ContentDiscussion:     {model.AudienceEngineering: 0.70, model.AudienceExecutive: 0.40, model.AudienceProduct: 0.60, model.AudienceGeneral: 0.45},
	model.ContentParticipants:   {model.AudienceEngineering: 0.50, model.AudienceExecutive: 0.70, model.AudienceProduct: 0.65, model.AudienceGeneral: 0.60},
	model.ContentMetrics:        {model.AudienceEngineering: 0.65, model.AudienceExecutive: 0.85, model.AudienceProduct: 0.75, model.AudienceGeneral: 0.60},
	model.ContentTimeline:       {model.AudienceEngineering: 0.55, model.AudienceExecutive: 0.60, model.AudienceProduct: 0.65, model.AudienceGeneral: 0.50},
	model.ContentImpact:         {model.AudienceEngineering: 0.60, model.AudienceExecutive: 0.95, model.AudienceProduct: 0.85, model.AudienceGeneral: 0.70},
}

// templateAffinity maps how well each content type fits each template.
var templateAffinity = map[template.Type]map[model.ContentType]float64{
	template.TypeSummary: {
		model.ContentPROverview: 0.95, model.ContentCommitHistory: 0.55, model.ContentFileChanges: 0.55,
		model.ContentCodeSamples: 0.25, model.ContentReviewFeedback: 0.55, model.ContentDiscussion: 0.40,
		model.ContentParticipants: 0.50, model.ContentMetrics: 0.75, model.ContentTimeline: 0.45,
		model.ContentImpact: 0.85,
	},
	template.TypeDetailed: {
		model.ContentPROverview: 0.85, model.ContentCommitHistory: 0.85, model.ContentFileChanges: 0.85,
		model.ContentCodeSamples: 0.65, model.ContentReviewFeedback: 0.85, model.ContentDiscussion: 0.75,
		model.ContentParticipants: 0.70, model.ContentMetrics: 0.75, model.ContentTimeline: 0.75,
		model.ContentImpact: 0.75,
	},
	template.TypeTechnical: {
		model.ContentPROverview: 0.70, model.ContentCommitHistory: 0.85, model.ContentFileChanges: 0.95,
		model.ContentCodeSamples: 0.95, model.ContentReviewFeedback: 0.75, model.ContentDiscussion: 0.60,
		model.ContentParticipants: 0.35, model.ContentMetrics: 0.65, model.ContentTimeline: 0.45,
		model.ContentImpact: 0.55,
	},
	template.TypeOverview: {
		model.ContentPROverview: 0.95, model.ContentCommitHistory: 0.45, model.ContentFileChanges: 0.40,
		model.ContentCodeSamples: 0.15, model.ContentReviewFeedback: 0.50, model.ContentDiscussion: 0.45,
		model.ContentParticipants: 0.70, model.ContentMetrics: 0.80, model.ContentTimeline: 0.60,
		model.ContentImpact: 0.90,
	},
}

// ScoreContext carries the run-level inputs the scorer needs beyond the item.
type ScoreContext struct {
	Audience  model.Audience
	Template  template.Type
	Criteria  Criteria
	Freshness float64 // 0..1, from timeline stats; 0 when unknown
}

// Score computes the relevance score for every item in place. Scores are
// clamped to [0,1] and depend only on the inputs, never on iteration order.
func Score(items []*model.ContentItem, sc ScoreContext) {
	for _, item := range items {
		item.RelevanceScore = scoreItem(item, sc)
	}
}

func scoreItem(item *model.ContentItem, sc ScoreContext) float64 {
	aud := audienceAffinity[item.Type][sc.Audience.Primary]
	tpl := templateAffinity[sc.Template][item.Type]
	heur := heuristicScore(item)

	c := sc.Criteria
	norm := c.Normalization
	if norm <= 0 {
		norm = c.AudienceAlignmentWeight + c.TemplateAlignmentWeight + c.HeuristicWeight + c.FreshnessWeight
	}
	if norm <= 0 {
		norm = 1
	}

	sum := aud*c.AudienceAlignmentWeight +
		tpl*c.TemplateAlignmentWeight +
		heur*c.HeuristicWeight +
		sc.Freshness*c.FreshnessWeight

	score := clamp01(sum / norm)
	slog.Debug("scored content item",
		"type", item.Type,
		"audience", aud,
		"template", tpl,
		"heuristic", heur,
		"score", score)
	return score
}

// heuristicScore estimates intrinsic interest from the item's own facts.
func heuristicScore(item *model.ContentItem) float64 {
	switch item.Type {
	case model.ContentPROverview:
		// A described, labeled PR narrates better than a bare title.
		s := 0.4
		if asFloat(item.Field("body_length")) > 80 {
			s += 0.3
		}
		if asFloat(item.Field("label_count")) > 0 {
			s += 0.15
		}
		if b, _ := item.Field("merged").(bool); b {
			s += 0.15
		}
		return clamp01(s)
	case model.ContentCommitHistory:
		count := asFloat(item.Field("commit_count"))
		return clamp01(math.Sqrt(count/20)*0.6 + asFloat(item.Field("major_ratio"))*0.4)
	case model.ContentFileChanges:
		count := asFloat(item.Field("file_count"))
		return clamp01(math.Sqrt(count/25)*0.5 + asFloat(item.Field("significant_ratio"))*0.5)
	case model.ContentCodeSamples:
		return clamp01(0.3 + asFloat(item.Field("sample_count"))*0.14)
	case model.ContentReviewFeedback:
		s := clamp01(asFloat(item.Field("review_count")) / 6 * 0.5)
		if consensus, _ := item.Field("consensus").(string); consensus == "blocked" || consensus == "mixed" {
			s += 0.3
		}
		if asFloat(item.Field("unresolved_count")) > 0 {
			s += 0.2
		}
		return clamp01(s)
	case model.ContentDiscussion:
		s := clamp01(asFloat(item.Field("comment_count")) / 15 * 0.6)
		if asFloat(item.Field("unresolved_count")) > 0 {
			s += 0.3
		}
		return clamp01(s)
	case model.ContentParticipants:
		return clamp01(asFloat(item.Field("participant_count")) / 8)
	case model.ContentMetrics:
		churn := asFloat(item.Field("additions")) + asFloat(item.Field("deletions"))
		return clamp01(math.Log1p(churn) / 9)
	case model.ContentTimeline:
		return clamp01(asFloat(item.Field("event_count")) / 30)
	case model.ContentImpact:
		s := 0.4
		if b, _ := item.Field("merged").(bool); b {
			s += 0.4
		}
		if asFloat(item.Field("significant_files")) > 0 {
			s += 0.2
		}
		return clamp01(s)
	default:
		return 0.5
	}
}

// FreshnessFor converts timeline stats into a 0..1 freshness factor: a PR
// wrapped up in a day scores near 1, one dragging for a month near 0.
func FreshnessFor(ts model.TimelineStats) float64 {
	if ts.EventCount == 0 {
		return 0
	}
	return clamp01(1 - ts.DurationDays/30)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// asFloat coerces the numeric field kinds the categorizer writes.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
