package template

import (
	"prcast/pkg/model"
)

// Builtin returns the built-in template set. Each call returns fresh values,
// but registered templates are treated as immutable either way.
func Builtin() []*Template {
	return []*Template{
		summaryTemplate(),
		detailedTemplate(),
		technicalTemplate(),
		overviewTemplate(),
	}
}

func summaryTemplate() *Template {
	return &Template{
		ID:   "builtin-summary",
		Type: TypeSummary,
		Name: "Summary",
		Duration: DurationRange{
			Min:     60,
			Max:     420,
			Default: 180,
		},
		Sections: []SectionDefinition{
			{
				Type: model.SectionIntro, Title: "Introduction", Required: true,
				Duration:           DurationAllocation{Min: 4, Max: 12, Preferred: 8, Percentage: 0.06},
				VisualRequirements: []string{"title_card"},
			},
			{
				Type: model.SectionOverview, Title: "What Changed", Required: true,
				Duration:            DurationAllocation{Min: 8, Max: 40, Preferred: 20, Percentage: 0.22},
				ContentRequirements: []model.ContentType{model.ContentPROverview},
				VisualRequirements:  []string{"title_card", "stat_chart"},
			},
			{
				Type: model.SectionCommits, Title: "Commit Highlights", Required: false,
				Duration:            DurationAllocation{Min: 6, Max: 35, Preferred: 16, Percentage: 0.16, Dynamic: &DynamicRule{PerItemSeconds: 1.5, MaxScale: 2.0}},
				ContentRequirements: []model.ContentType{model.ContentCommitHistory},
				VisualRequirements:  []string{"timeline_bar"},
			},
			{
				Type: model.SectionFileChanges, Title: "Files Touched", Required: false,
				Duration:            DurationAllocation{Min: 8, Max: 40, Preferred: 18, Percentage: 0.18, Dynamic: &DynamicRule{PerItemSeconds: 1.0, MaxScale: 2.0}},
				ContentRequirements: []model.ContentType{model.ContentFileChanges},
				VisualRequirements:  []string{"diff_view"},
			},
			{
				Type: model.SectionReview, Title: "Review Notes", Required: false,
				Duration:            DurationAllocation{Min: 6, Max: 30, Preferred: 14, Percentage: 0.14},
				ContentRequirements: []model.ContentType{model.ContentReviewFeedback, model.ContentDiscussion},
				VisualRequirements:  []string{"avatar_wall"},
			},
			{
				Type: model.SectionMetrics, Title: "By the Numbers", Required: false,
				Duration:            DurationAllocation{Min: 5, Max: 20, Preferred: 10, Percentage: 0.10},
				ContentRequirements: []model.ContentType{model.ContentMetrics},
				VisualRequirements:  []string{"stat_chart"},
			},
			{
				Type: model.SectionSummary, Title: "Wrap-up", Required: true,
				Duration:           DurationAllocation{Min: 4, Max: 15, Preferred: 8, Percentage: 0.08},
				VisualRequirements: []string{"title_card"},
			},
		},
		Ordering: []OrderingRule{
			{Before: model.SectionIntro, After: model.SectionOverview, Priority: 10},
			{Before: model.SectionOverview, After: model.SectionCommits, Priority: 8},
			{Before: model.SectionCommits, After: model.SectionFileChanges, Priority: 5, Condition: "has_commits"},
			{Before: model.SectionFileChanges, After: model.SectionReview, Priority: 4},
			{Before: model.SectionMetrics, After: model.SectionSummary, Priority: 6},
		},
		Transitions: []TransitionRule{
			{From: model.SectionIntro, To: model.SectionOverview, Style: "fade", Duration: 0.5},
			{From: model.SectionMetrics, To: model.SectionSummary, Style: "slide", Duration: 0.7},
		},
		Defaults: Defaults{Style: "conversational", Pacing: "brisk"},
		Suitability: SuitabilityScoring{
			AudienceWeights: map[model.AudienceType]float64{
				model.AudienceEngineering: 0.6,
				model.AudienceExecutive:   0.8,
				model.AudienceProduct:     0.75,
				model.AudienceGeneral:     0.85,
			},
			SmallPRBias: 0.1,
			LargePRBias: -0.1,
		},
	}
}

func detailedTemplate() *Template {
	return &Template{
		ID:   "builtin-detailed",
		Type: TypeDetailed,
		Name: "Detailed Walkthrough",
		Duration: DurationRange{
			Min:     180,
			Max:     1200,
			Default: 420,
		},
		Sections: []SectionDefinition{
			{
				Type: model.SectionIntro, Title: "Introduction", Required: true,
				Duration:           DurationAllocation{Min: 5, Max: 15, Preferred: 10, Percentage: 0.04},
				VisualRequirements: []string{"title_card"},
			},
			{
				Type: model.SectionOverview, Title: "Change Overview", Required: true,
				Duration:            DurationAllocation{Min: 10, Max: 60, Preferred: 30, Percentage: 0.14},
				ContentRequirements: []model.ContentType{model.ContentPROverview},
				VisualRequirements:  []string{"title_card", "stat_chart"},
			},
			{
				Type: model.SectionCommits, Title: "Commit History", Required: true,
				Duration:            DurationAllocation{Min: 8, Max: 70, Preferred: 30, Percentage: 0.13, Dynamic: &DynamicRule{PerItemSeconds: 2.5, MaxScale: 2.5}},
				ContentRequirements: []model.ContentType{model.ContentCommitHistory},
				VisualRequirements:  []string{"timeline_bar"},
			},
			{
				Type: model.SectionFileChanges, Title: "File-by-File", Required: true,
				Duration:            DurationAllocation{Min: 10, Max: 90, Preferred: 40, Percentage: 0.16, Dynamic: &DynamicRule{PerItemSeconds: 2.0, MaxScale: 2.5}},
				ContentRequirements: []model.ContentType{model.ContentFileChanges},
				VisualRequirements:  []string{"diff_view"},
			},
			{
				Type: model.SectionCodeWalk, Title: "Code Walkthrough", Required: false,
				Duration:            DurationAllocation{Min: 12, Max: 120, Preferred: 45, Percentage: 0.16},
				ContentRequirements: []model.ContentType{model.ContentCodeSamples},
				VisualRequirements:  []string{"diff_view", "code_pan"},
			},
			{
				Type: model.SectionReview, Title: "Review Discussion", Required: true,
				Duration:            DurationAllocation{Min: 8, Max: 60, Preferred: 28, Percentage: 0.12},
				ContentRequirements: []model.ContentType{model.ContentReviewFeedback, model.ContentDiscussion},
				VisualRequirements:  []string{"avatar_wall", "comment_thread"},
			},
			{
				Type: model.SectionTeam, Title: "Contributors", Required: false,
				Duration:            DurationAllocation{Min: 4, Max: 20, Preferred: 10, Percentage: 0.05},
				ContentRequirements: []model.ContentType{model.ContentParticipants},
				VisualRequirements:  []string{"avatar_wall"},
			},
			{
				Type: model.SectionTimeline, Title: "How It Unfolded", Required: false,
				Duration:            DurationAllocation{Min: 5, Max: 30, Preferred: 15, Percentage: 0.07},
				ContentRequirements: []model.ContentType{model.ContentTimeline},
				VisualRequirements:  []string{"timeline_bar"},
			},
			{
				Type: model.SectionImpact, Title: "Impact", Required: false,
				Duration:            DurationAllocation{Min: 6, Max: 35, Preferred: 16, Percentage: 0.08},
				ContentRequirements: []model.ContentType{model.ContentImpact},
				VisualRequirements:  []string{"stat_chart"},
			},
			{
				Type: model.SectionSummary, Title: "Wrap-up", Required: true,
				Duration:           DurationAllocation{Min: 5, Max: 20, Preferred: 10, Percentage: 0.05},
				VisualRequirements: []string{"title_card"},
			},
		},
		Ordering: []OrderingRule{
			{Before: model.SectionIntro, After: model.SectionOverview, Priority: 10},
			{Before: model.SectionOverview, After: model.SectionCommits, Priority: 8},
			{Before: model.SectionCommits, After: model.SectionFileChanges, Priority: 7},
			{Before: model.SectionFileChanges, After: model.SectionCodeWalk, Priority: 6, Condition: "has_code_walkthrough"},
			{Before: model.SectionCodeWalk, After: model.SectionReview, Priority: 5, Condition: "has_code_walkthrough"},
			{Before: model.SectionFileChanges, After: model.SectionReview, Priority: 4},
			{Before: model.SectionReview, After: model.SectionTimeline, Priority: 3},
			{Before: model.SectionImpact, After: model.SectionSummary, Priority: 6},
		},
		Transitions: []TransitionRule{
			{From: model.SectionIntro, To: model.SectionOverview, Style: "fade", Duration: 0.5},
			{From: model.SectionFileChanges, To: model.SectionCodeWalk, Style: "slide", Duration: 0.8},
			{From: model.SectionImpact, To: model.SectionSummary, Style: "fade", Duration: 0.5},
		},
		Defaults: Defaults{Style: "professional", Pacing: "measured"},
		Suitability: SuitabilityScoring{
			AudienceWeights: map[model.AudienceType]float64{
				model.AudienceEngineering: 0.8,
				model.AudienceExecutive:   0.4,
				model.AudienceProduct:     0.65,
				model.AudienceGeneral:     0.55,
			},
			SmallPRBias: -0.1,
			LargePRBias: 0.15,
		},
	}
}

func technicalTemplate() *Template {
	return &Template{
		ID:   "builtin-technical",
		Type: TypeTechnical,
		Name: "Technical Deep Dive",
		Duration: DurationRange{
			Min:     240,
			Max:     1200,
			Default: 600,
		},
		Sections: []SectionDefinition{
			{
				Type: model.SectionIntro, Title: "Introduction", Required: true,
				Duration:           DurationAllocation{Min: 5, Max: 15, Preferred: 8, Percentage: 0.03},
				VisualRequirements: []string{"title_card"},
			},
			{
				Type: model.SectionOverview, Title: "Technical Context", Required: true,
				Duration:            DurationAllocation{Min: 10, Max: 50, Preferred: 25, Percentage: 0.10},
				ContentRequirements: []model.ContentType{model.ContentPROverview},
				VisualRequirements:  []string{"title_card"},
			},
			{
				Type: model.SectionFileChanges, Title: "Diff Survey", Required: true,
				Duration:            DurationAllocation{Min: 10, Max: 90, Preferred: 40, Percentage: 0.17, Dynamic: &DynamicRule{PerItemSeconds: 2.0, MaxScale: 3.0}},
				ContentRequirements: []model.ContentType{model.ContentFileChanges},
				VisualRequirements:  []string{"diff_view"},
			},
			{
				Type: model.SectionCodeWalk, Title: "Code Deep Dive", Required: true,
				Duration:            DurationAllocation{Min: 15, Max: 180, Preferred: 60, Percentage: 0.26, Dynamic: &DynamicRule{PerItemSeconds: 4.0, MaxScale: 3.0}},
				ContentRequirements: []model.ContentType{model.ContentCodeSamples},
				VisualRequirements:  []string{"diff_view", "code_pan"},
			},
			{
				Type: model.SectionCommits, Title: "Commit Strategy", Required: false,
				Duration:            DurationAllocation{Min: 8, Max: 60, Preferred: 25, Percentage: 0.10, Dynamic: &DynamicRule{PerItemSeconds: 2.0, MaxScale: 2.0}},
				ContentRequirements: []model.ContentType{model.ContentCommitHistory},
				VisualRequirements:  []string{"timeline_bar"},
			},
			{
				Type: model.SectionReview, Title: "Review Threads", Required: true,
				Duration:            DurationAllocation{Min: 8, Max: 70, Preferred: 30, Percentage: 0.13},
				ContentRequirements: []model.ContentType{model.ContentReviewFeedback, model.ContentDiscussion},
				VisualRequirements:  []string{"comment_thread"},
			},
			{
				Type: model.SectionImpact, Title: "Architecture Impact", Required: false,
				Duration:            DurationAllocation{Min: 6, Max: 45, Preferred: 20, Percentage: 0.09},
				ContentRequirements: []model.ContentType{model.ContentImpact},
				VisualRequirements:  []string{"stat_chart"},
			},
			{
				Type: model.SectionSummary, Title: "Wrap-up", Required: true,
				Duration:           DurationAllocation{Min: 5, Max: 20, Preferred: 10, Percentage: 0.04},
				VisualRequirements: []string{"title_card"},
			},
		},
		Ordering: []OrderingRule{
			{Before: model.SectionIntro, After: model.SectionOverview, Priority: 10},
			{Before: model.SectionOverview, After: model.SectionFileChanges, Priority: 8},
			{Before: model.SectionFileChanges, After: model.SectionCodeWalk, Priority: 7},
			{Before: model.SectionCodeWalk, After: model.SectionReview, Priority: 6},
			{Before: model.SectionCommits, After: model.SectionReview, Priority: 3, Condition: "has_commits"},
			{Before: model.SectionImpact, After: model.SectionSummary, Priority: 5},
		},
		Transitions: []TransitionRule{
			{From: model.SectionFileChanges, To: model.SectionCodeWalk, Style: "slide", Duration: 0.8},
			{From: model.SectionReview, To: model.SectionImpact, Style: "fade", Duration: 0.5},
		},
		Defaults: Defaults{Style: "technical", Pacing: "measured"},
		Suitability: SuitabilityScoring{
			AudienceWeights: map[model.AudienceType]float64{
				model.AudienceEngineering: 0.9,
				model.AudienceExecutive:   0.2,
				model.AudienceProduct:     0.4,
				model.AudienceGeneral:     0.3,
			},
			SmallPRBias: -0.05,
			LargePRBias: 0.15,
		},
	}
}

func overviewTemplate() *Template {
	return &Template{
		ID:   "builtin-overview",
		Type: TypeOverview,
		Name: "Executive Overview",
		Duration: DurationRange{
			Min:     60,
			Max:     300,
			Default: 120,
		},
		Sections: []SectionDefinition{
			{
				Type: model.SectionIntro, Title: "Introduction", Required: true,
				Duration:           DurationAllocation{Min: 4, Max: 10, Preferred: 6, Percentage: 0.07},
				VisualRequirements: []string{"title_card"},
			},
			{
				Type: model.SectionOverview, Title: "Summary of Change", Required: true,
				Duration:            DurationAllocation{Min: 10, Max: 50, Preferred: 25, Percentage: 0.30},
				ContentRequirements: []model.ContentType{model.ContentPROverview},
				VisualRequirements:  []string{"title_card", "stat_chart"},
			},
			{
				Type: model.SectionImpact, Title: "Business Impact", Required: true,
				Duration:            DurationAllocation{Min: 6, Max: 40, Preferred: 20, Percentage: 0.25},
				ContentRequirements: []model.ContentType{model.ContentImpact},
				VisualRequirements:  []string{"stat_chart"},
			},
			{
				Type: model.SectionTeam, Title: "Who Was Involved", Required: false,
				Duration:            DurationAllocation{Min: 4, Max: 20, Preferred: 10, Percentage: 0.12},
				ContentRequirements: []model.ContentType{model.ContentParticipants},
				VisualRequirements:  []string{"avatar_wall"},
			},
			{
				Type: model.SectionMetrics, Title: "Key Numbers", Required: false,
				Duration:            DurationAllocation{Min: 5, Max: 20, Preferred: 10, Percentage: 0.12},
				ContentRequirements: []model.ContentType{model.ContentMetrics},
				VisualRequirements:  []string{"stat_chart"},
			},
			{
				Type: model.SectionSummary, Title: "Takeaway", Required: true,
				Duration:           DurationAllocation{Min: 4, Max: 15, Preferred: 8, Percentage: 0.09},
				VisualRequirements: []string{"title_card"},
			},
		},
		Ordering: []OrderingRule{
			{Before: model.SectionIntro, After: model.SectionOverview, Priority: 10},
			{Before: model.SectionOverview, After: model.SectionImpact, Priority: 8},
			{Before: model.SectionImpact, After: model.SectionTeam, Priority: 4},
			{Before: model.SectionMetrics, After: model.SectionSummary, Priority: 5},
		},
		Transitions: []TransitionRule{
			{From: model.SectionIntro, To: model.SectionOverview, Style: "fade", Duration: 0.5},
		},
		Defaults: Defaults{Style: "conversational", Pacing: "brisk"},
		Suitability: SuitabilityScoring{
			AudienceWeights: map[model.AudienceType]float64{
				model.AudienceEngineering: 0.3,
				model.AudienceExecutive:   0.9,
				model.AudienceProduct:     0.8,
				model.AudienceGeneral:     0.7,
			},
			SmallPRBias: 0.1,
			LargePRBias: -0.05,
		},
	}
}
