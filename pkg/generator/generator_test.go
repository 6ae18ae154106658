package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prcast/pkg/model"
	"prcast/pkg/template"
)

func testAggregate() *model.PRAggregate {
	base := time.Date(2026, 5, 18, 10, 0, 0, 0, time.UTC)
	return &model.PRAggregate{
		PullRequest: model.PullRequest{
			Number: 204, Title: "Rework retry budget accounting",
			Body:   "Moves retry budgets from per-host to per-cluster. Budgets now follow the config reload.",
			State:  "closed", Merged: true, Author: "lnguyen",
			BaseRef: "main", HeadRef: "retry-budget", Labels: []string{"reliability"},
			CreatedAt: base,
		},
		Repository: model.Repository{Owner: "acme", Name: "proxy", FullName: "acme/proxy", Language: "Go"},
		Commits: []model.Commit{
			{SHA: "f00", Message: "retry: track budgets per cluster", Author: "lnguyen", Additions: 310, Deletions: 120, Date: base},
			{SHA: "f01", Message: "retry: reload budgets with config", Author: "lnguyen", Additions: 90, Deletions: 30, Date: base.Add(3 * time.Hour)},
		},
		Files: []model.FileChange{
			{Path: "retry/budget.go", Status: "modified", Additions: 280, Deletions: 100, Patch: "@@", Significance: "major"},
			{Path: "retry/budget_test.go", Status: "modified", Additions: 120, Deletions: 50, Patch: "@@", Significance: "moderate"},
		},
		Reviews: []model.Review{
			{ID: 1, Author: "sv", State: "APPROVED", SubmittedAt: base.Add(20 * time.Hour)},
		},
		Comments: []model.Comment{
			{ID: 2, Author: "sv", Body: "nice cleanup", Resolved: true, CreatedAt: base.Add(19 * time.Hour)},
		},
		Timeline: []model.TimelineEvent{
			{Kind: "committed", Actor: "lnguyen", CreatedAt: base},
			{Kind: "merged", Actor: "lnguyen", CreatedAt: base.Add(24 * time.Hour)},
		},
		Participants: []model.Participant{
			{Login: "lnguyen", Role: "author", Contributions: 4},
			{Login: "sv", Role: "reviewer", Contributions: 2},
		},
		CodeStats:     model.CodeStats{TotalAdditions: 400, TotalDeletions: 150, FilesChanged: 2, SignificantFiles: 1, SignificantRatio: 0.5, LanguagesTouched: 1},
		ReviewStats:   model.ReviewStats{ReviewCount: 1, ApprovalCount: 1, CommentCount: 1, Consensus: "approved"},
		TimelineStats: model.TimelineStats{FirstActivity: base, LastActivity: base.Add(24 * time.Hour), DurationDays: 1, EventCount: 2},
	}
}

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	return New(template.NewRegistry())
}

func TestGenerateScriptFullPipeline(t *testing.T) {
	g := newGenerator(t)
	res := g.GenerateScript(context.Background(), testAggregate(), Config{
		TemplateType:   template.TypeDetailed,
		TargetDuration: 300,
		Audience:       model.Audience{Primary: model.AudienceEngineering, TechnicalLevel: model.LevelAdvanced},
	})

	require.True(t, res.Success, "errors: %v", res.Errors)
	require.NotNil(t, res.Script)
	assert.Equal(t, model.SectionIntro, res.Script.Sections[0].Type)
	assert.Equal(t, model.SectionSummary, res.Script.Sections[len(res.Script.Sections)-1].Type)

	require.NotNil(t, res.Script.Metadata.Quality)
	assert.Greater(t, res.Script.Metadata.Quality.Overall, 0.0)
	assert.Equal(t, 2, res.Script.Metadata.KeyMetrics.TotalCommits)
	assert.Greater(t, res.Performance.Total, time.Duration(0))

	// Timing windows stay contiguous end to end.
	var cursor float64
	for _, s := range res.Script.Sections {
		assert.InDelta(t, cursor, s.Timing.Start, 1e-9, "section %s", s.Type)
		cursor = s.Timing.End
	}
}

func TestGenerateScriptMinimalPR(t *testing.T) {
	g := newGenerator(t)
	agg := &model.PRAggregate{
		PullRequest: model.PullRequest{Number: 3, Title: "Fix typo", State: "open", Author: "kd"},
		Repository:  model.Repository{FullName: "acme/docs"},
	}
	res := g.GenerateScript(context.Background(), agg, Config{
		TemplateType:   template.TypeSummary,
		TargetDuration: 90,
		Audience:       model.Audience{Primary: model.AudienceGeneral},
	})

	require.True(t, res.Success)
	assert.GreaterOrEqual(t, len(res.Script.Sections), 3, "framing sections must survive sparse data")
	assert.NotEmpty(t, res.Warnings, "sparse data should be called out")
	assert.Zero(t, res.Script.Metadata.KeyMetrics.TotalCommits)
}

func TestGenerateScriptInvalidConfig(t *testing.T) {
	g := newGenerator(t)
	res := g.GenerateScript(context.Background(), testAggregate(), Config{
		TemplateType:   "cinematic",
		TargetDuration: 30,
	})

	assert.False(t, res.Success)
	require.NotNil(t, res.Script, "failed runs still return a placeholder script")
	assert.Len(t, res.Script.Sections, 3)
	assert.GreaterOrEqual(t, len(res.Errors), 3) // template, duration, audience
}

func TestGenerateScriptNilAggregate(t *testing.T) {
	g := newGenerator(t)
	res := g.GenerateScript(context.Background(), nil, Config{
		TemplateType:   template.TypeSummary,
		TargetDuration: 90,
		Audience:       model.Audience{Primary: model.AudienceGeneral},
	})
	require.NotNil(t, res)
	require.NotNil(t, res.Script)
}

func TestGenerateScriptDeterministic(t *testing.T) {
	g := newGenerator(t)
	cfg := Config{
		TemplateType:   template.TypeDetailed,
		TargetDuration: 240,
		Audience:       model.Audience{Primary: model.AudienceProduct, TechnicalLevel: model.LevelIntermediate},
	}
	a := g.GenerateScript(context.Background(), testAggregate(), cfg)
	b := g.GenerateScript(context.Background(), testAggregate(), cfg)

	require.True(t, a.Success)
	require.True(t, b.Success)
	require.Equal(t, len(a.Script.Sections), len(b.Script.Sections))
	for i := range a.Script.Sections {
		sa, sb := a.Script.Sections[i], b.Script.Sections[i]
		assert.Equal(t, sa.Type, sb.Type)
		assert.Equal(t, sa.Duration, sb.Duration)
		assert.Equal(t, sa.Voiceover, sb.Voiceover)
	}
	assert.Equal(t, a.Script.Metadata.Quality.Overall, b.Script.Metadata.Quality.Overall)
}

func TestGenerateScriptAudienceChangesContent(t *testing.T) {
	g := newGenerator(t)
	eng := g.GenerateScript(context.Background(), testAggregate(), Config{
		TemplateType: template.TypeDetailed, TargetDuration: 300,
		Audience: model.Audience{Primary: model.AudienceEngineering, TechnicalLevel: model.LevelAdvanced},
	})
	exec := g.GenerateScript(context.Background(), testAggregate(), Config{
		TemplateType: template.TypeDetailed, TargetDuration: 300,
		Audience: model.Audience{Primary: model.AudienceExecutive, TechnicalLevel: model.LevelBeginner},
	})

	require.True(t, eng.Success)
	require.True(t, exec.Success)

	voiceoverOf := func(r *Result, st model.SectionType) string {
		for _, s := range r.Script.Sections {
			if s.Type == st {
				return s.Voiceover
			}
		}
		return ""
	}
	assert.NotEqual(t, voiceoverOf(eng, model.SectionCommits), voiceoverOf(exec, model.SectionCommits),
		"audience adaptation should change the narration")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		valid bool
	}{
		{
			"valid",
			Config{TemplateType: template.TypeSummary, TargetDuration: 120, Audience: model.Audience{Primary: model.AudienceGeneral}},
			true,
		},
		{
			"duration too short",
			Config{TemplateType: template.TypeSummary, TargetDuration: 45, Audience: model.Audience{Primary: model.AudienceGeneral}},
			false,
		},
		{
			"duration too long",
			Config{TemplateType: template.TypeSummary, TargetDuration: 1500, Audience: model.Audience{Primary: model.AudienceGeneral}},
			false,
		},
		{
			"missing audience",
			Config{TemplateType: template.TypeSummary, TargetDuration: 120},
			false,
		},
		{
			"technical for beginners",
			Config{TemplateType: template.TypeTechnical, TargetDuration: 300, Audience: model.Audience{Primary: model.AudienceEngineering, TechnicalLevel: model.LevelBeginner}},
			false,
		},
		{
			"unknown technical level",
			Config{TemplateType: template.TypeSummary, TargetDuration: 120, Audience: model.Audience{Primary: model.AudienceGeneral, TechnicalLevel: "wizard"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateConfig(tt.cfg)
			assert.Equal(t, tt.valid, v.IsValid, "errors: %v", v.Errors)
			if !tt.valid {
				assert.NotEmpty(t, v.Errors)
			}
		})
	}
}

func TestAlternativesNearSuitability(t *testing.T) {
	g := newGenerator(t)
	res := g.GenerateScript(context.Background(), testAggregate(), Config{
		TemplateType:   template.TypeSummary,
		TargetDuration: 120,
		Audience:       model.Audience{Primary: model.AudienceGeneral},
	})
	require.True(t, res.Success)
	for _, alt := range res.Alternatives {
		assert.NotEqual(t, template.TypeSummary, alt, "chosen template is not its own alternative")
	}
}
