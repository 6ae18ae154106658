// Package content implements the first half of the generation pipeline:
// categorizing raw PR data into typed items, scoring their relevance for an
// audience and template, prioritizing, filtering, and adapting them. Every
// stage is a pure function over in-memory collections.
package content

import (
	"prcast/pkg/model"
	"prcast/pkg/template"
)

// ScoringKind names one of the closed set of rule scoring strategies.
// Scoring functions are named values rather than injected closures so
// strategies stay serializable and testable.
type ScoringKind string

const (
	ScoreVolume       ScoringKind = "volume"       // rewards item count
	ScoreSignificance ScoringKind = "significance" // rewards major-change ratio
	ScoreUrgency      ScoringKind = "urgency"      // rewards unresolved/blocked state
	ScoreRecency      ScoringKind = "recency"      // rewards fresh activity
	ScoreMerged       ScoringKind = "merged"       // rewards merged PRs
	ScoreConstant     ScoringKind = "constant"     // flat boost
)

// PrioritizationRule adds a weighted boost to items of the listed content
// types. A rule referencing an unknown content type is a no-op.
type PrioritizationRule struct {
	Name         string              `yaml:"name"`
	ContentTypes []model.ContentType `yaml:"content_types"`
	Scoring      ScoringKind         `yaml:"scoring"`
	Weight       float64             `yaml:"weight"`
}

// FilterAction is what a matched filtering rule does to an item.
type FilterAction string

const (
	ActionInclude FilterAction = "include"
	ActionExclude FilterAction = "exclude"
	ActionBoost   FilterAction = "boost"
	ActionDemote  FilterAction = "demote"
)

// FilteringRule matches an item field against a value and applies an action.
// Rules run in order, after prioritization, so boost/demote affect only the
// final ordering, never the already-assigned tier.
type FilteringRule struct {
	Field    string       `yaml:"field"`
	Operator string       `yaml:"operator"` // eq, neq, gt, gte, lt, lte, contains, exists
	Value    any          `yaml:"value,omitempty"`
	Action   FilterAction `yaml:"action"`
	Amount   float64      `yaml:"amount,omitempty"` // boost/demote delta, default 0.1
}

// AdaptAction is one content transformation an adaptation rule applies.
type AdaptAction string

const (
	AdaptSimplifyLanguage AdaptAction = "simplify_language"
	AdaptReduceDetail     AdaptAction = "reduce_detail"
	AdaptAddExplanation   AdaptAction = "add_explanation"
	AdaptExpandDetail     AdaptAction = "expand_detail"
)

// TriggerKind names what an adaptation trigger inspects.
type TriggerKind string

const (
	TriggerAudience  TriggerKind = "audience"
	TriggerTechLevel TriggerKind = "technical_level"
	TriggerVolume    TriggerKind = "content_volume"
)

// AdaptationTrigger is one condition of an adaptation rule. All triggers of
// a rule must hold for its actions to run.
type AdaptationTrigger struct {
	Kind      TriggerKind          `yaml:"kind"`
	Audience  model.AudienceType   `yaml:"audience,omitempty"`
	Level     model.TechnicalLevel `yaml:"level,omitempty"`
	MinVolume int                  `yaml:"min_volume,omitempty"`
}

// AdaptationRule transforms items of the listed content types when all of
// its triggers evaluate true. Empty ContentTypes means every type.
type AdaptationRule struct {
	Name         string              `yaml:"name"`
	ContentTypes []model.ContentType `yaml:"content_types,omitempty"`
	Triggers     []AdaptationTrigger `yaml:"triggers"`
	Actions      []AdaptAction       `yaml:"actions"`
}

// Criteria tunes the relevance scoring formula.
type Criteria struct {
	ImportanceThreshold     float64  `yaml:"importance_threshold"`
	RelevanceFactors        []string `yaml:"relevance_factors"`
	ScoringAlgorithm        string   `yaml:"scoring_algorithm"`
	Normalization           float64  `yaml:"normalization"`
	FreshnessWeight         float64  `yaml:"freshness_weight"`
	AudienceAlignmentWeight float64  `yaml:"audience_alignment_weight"`
	TemplateAlignmentWeight float64  `yaml:"template_alignment_weight"`
	HeuristicWeight         float64  `yaml:"heuristic_weight"`
}

// Strategy bundles the full content selection configuration. Immutable once
// supplied; safe to share across runs.
type Strategy struct {
	Criteria       Criteria             `yaml:"criteria"`
	Prioritization []PrioritizationRule `yaml:"prioritization_rules"`
	Filtering      []FilteringRule      `yaml:"filtering_rules"`
	Adaptation     []AdaptationRule     `yaml:"adaptation_rules"`
}

// DefaultStrategy returns the stock strategy for an audience and template.
func DefaultStrategy(audience model.Audience, tt template.Type) *Strategy {
	s := &Strategy{
		Criteria: Criteria{
			ImportanceThreshold:     0.15,
			RelevanceFactors:        []string{"audience", "template", "heuristic", "freshness"},
			ScoringAlgorithm:        "weighted_sum",
			Normalization:           2.4,
			FreshnessWeight:         0.2,
			AudienceAlignmentWeight: 1.0,
			TemplateAlignmentWeight: 0.8,
			HeuristicWeight:         0.6,
		},
		Prioritization: []PrioritizationRule{
			{
				Name:         "overview-anchor",
				ContentTypes: []model.ContentType{model.ContentPROverview},
				Scoring:      ScoreConstant,
				Weight:       0.25,
			},
			{
				Name:         "change-volume",
				ContentTypes: []model.ContentType{model.ContentCommitHistory, model.ContentFileChanges, model.ContentCodeSamples},
				Scoring:      ScoreVolume,
				Weight:       0.15,
			},
			{
				Name:         "change-significance",
				ContentTypes: []model.ContentType{model.ContentCommitHistory, model.ContentFileChanges, model.ContentCodeSamples},
				Scoring:      ScoreSignificance,
				Weight:       0.2,
			},
			{
				Name:         "review-urgency",
				ContentTypes: []model.ContentType{model.ContentReviewFeedback, model.ContentDiscussion},
				Scoring:      ScoreUrgency,
				Weight:       0.2,
			},
			{
				Name:         "outcome",
				ContentTypes: []model.ContentType{model.ContentImpact, model.ContentMetrics},
				Scoring:      ScoreMerged,
				Weight:       0.15,
			},
		},
		Filtering: []FilteringRule{
			// Drafts rarely warrant a code deep-dive; nudge samples down.
			{Field: "draft", Operator: "eq", Value: true, Action: ActionDemote, Amount: 0.1},
		},
		Adaptation: DefaultAdaptationRules(),
	}

	if audience.Primary == model.AudienceExecutive || tt == template.TypeOverview {
		s.Filtering = append(s.Filtering, FilteringRule{
			Field: "sample_count", Operator: "gt", Value: 0,
			Action: ActionDemote, Amount: 0.15,
		})
	}

	return s
}

// DefaultAdaptationRules returns the stock audience/volume transformations.
func DefaultAdaptationRules() []AdaptationRule {
	return []AdaptationRule{
		{
			Name:     "beginner-simplify",
			Triggers: []AdaptationTrigger{{Kind: TriggerTechLevel, Level: model.LevelBeginner}},
			Actions:  []AdaptAction{AdaptSimplifyLanguage, AdaptAddExplanation},
		},
		{
			Name: "executive-condense",
			ContentTypes: []model.ContentType{
				model.ContentCodeSamples, model.ContentFileChanges, model.ContentCommitHistory,
			},
			Triggers: []AdaptationTrigger{{Kind: TriggerAudience, Audience: model.AudienceExecutive}},
			Actions:  []AdaptAction{AdaptReduceDetail, AdaptSimplifyLanguage},
		},
		{
			Name:         "advanced-deep-dive",
			ContentTypes: []model.ContentType{model.ContentCodeSamples},
			Triggers: []AdaptationTrigger{
				{Kind: TriggerAudience, Audience: model.AudienceEngineering},
				{Kind: TriggerTechLevel, Level: model.LevelAdvanced},
			},
			Actions: []AdaptAction{AdaptExpandDetail},
		},
		{
			Name:         "high-volume-trim",
			ContentTypes: []model.ContentType{model.ContentFileChanges, model.ContentCommitHistory},
			Triggers:     []AdaptationTrigger{{Kind: TriggerVolume, MinVolume: 15}},
			Actions:      []AdaptAction{AdaptReduceDetail},
		},
	}
}
