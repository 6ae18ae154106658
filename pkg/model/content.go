package model

// ContentType identifies one bucket of PR-derived information.
type ContentType string

const (
	ContentPROverview     ContentType = "pr_overview"
	ContentCommitHistory  ContentType = "commit_history"
	ContentFileChanges    ContentType = "file_changes"
	ContentCodeSamples    ContentType = "code_samples"
	ContentReviewFeedback ContentType = "review_feedback"
	ContentDiscussion     ContentType = "discussion"
	ContentParticipants   ContentType = "participants"
	ContentMetrics        ContentType = "metrics"
	ContentTimeline       ContentType = "timeline"
	ContentImpact         ContentType = "impact"
)

// ContentTypes lists every known content type in canonical order. Pipeline
// stages iterate this slice rather than map keys so output order is stable.
var ContentTypes = []ContentType{
	ContentPROverview,
	ContentCommitHistory,
	ContentFileChanges,
	ContentCodeSamples,
	ContentReviewFeedback,
	ContentDiscussion,
	ContentParticipants,
	ContentMetrics,
	ContentTimeline,
	ContentImpact,
}

// PriorityTier is the discrete priority classification driving inclusion.
type PriorityTier string

const (
	TierCritical PriorityTier = "critical"
	TierHigh     PriorityTier = "high"
	TierMedium   PriorityTier = "medium"
	TierLow      PriorityTier = "low"
	TierOptional PriorityTier = "optional"
)

// Rank returns the tier's position in the total order, critical first.
func (t PriorityTier) Rank() int {
	switch t {
	case TierCritical:
		return 0
	case TierHigh:
		return 1
	case TierMedium:
		return 2
	case TierLow:
		return 3
	default:
		return 4
	}
}

// TierForScore converts a priority score to a tier via fixed thresholds.
func TierForScore(score float64) PriorityTier {
	switch {
	case score >= 0.8:
		return TierCritical
	case score >= 0.6:
		return TierHigh
	case score >= 0.4:
		return TierMedium
	case score >= 0.2:
		return TierLow
	default:
		return TierOptional
	}
}

// ContentItem is one scored, prioritized unit of PR-derived information
// destined for possible inclusion in a script section. Items are owned by a
// single generation run and never shared across runs.
type ContentItem struct {
	Type    ContentType `json:"type"`
	Payload any         `json:"payload"`

	// Fields holds flat facts about the payload (counts, ratios, flags) used
	// by filtering rules. Built once by the categorizer.
	Fields map[string]any `json:"fields"`

	RelevanceScore float64      `json:"relevance_score"` // 0..1
	PriorityScore  float64      `json:"priority_score"`
	Priority       PriorityTier `json:"priority"`
	DurationImpact float64      `json:"duration_impact_seconds"`
	Adaptations    []string     `json:"adaptations"`
	Rationale      string       `json:"rationale"`
}

// Field returns the named fact, or nil if the item does not carry it.
func (c *ContentItem) Field(name string) any {
	if c.Fields == nil {
		return nil
	}
	return c.Fields[name]
}

// Clone returns a deep-enough copy for adaptation: the payload pointer is
// shared (payloads are read-only after categorization) but slices and the
// field map are copied so rule actions never leak across items.
func (c *ContentItem) Clone() *ContentItem {
	out := *c
	out.Adaptations = append([]string(nil), c.Adaptations...)
	out.Fields = make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		out.Fields[k] = v
	}
	return &out
}

// AudienceType names the primary viewer group a script is tailored for.
type AudienceType string

const (
	AudienceEngineering AudienceType = "engineering"
	AudienceExecutive   AudienceType = "executive"
	AudienceProduct     AudienceType = "product"
	AudienceGeneral     AudienceType = "general"
)

// TechnicalLevel grades how much technical depth the audience tolerates.
type TechnicalLevel string

const (
	LevelBeginner     TechnicalLevel = "beginner"
	LevelIntermediate TechnicalLevel = "intermediate"
	LevelAdvanced     TechnicalLevel = "advanced"
)

// Audience describes who the generated video is for.
type Audience struct {
	Primary        AudienceType   `json:"primary"`
	TechnicalLevel TechnicalLevel `json:"technical_level"`
}
