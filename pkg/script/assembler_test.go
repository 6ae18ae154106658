package script

import (
	"math"
	"testing"
	"time"

	"prcast/pkg/content"
	"prcast/pkg/model"
	"prcast/pkg/template"
	"prcast/pkg/timeline"
)

func fixtureAggregate() *model.PRAggregate {
	base := time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)
	return &model.PRAggregate{
		PullRequest: model.PullRequest{
			Number: 951, Title: "Stream uploads instead of buffering",
			Body:    "Switches the upload path to io.Pipe. Memory use drops sharply on large files.",
			State:   "closed", Merged: true, Author: "rdiaz",
			BaseRef: "main", HeadRef: "stream-uploads",
			Labels:  []string{"performance"},
		},
		Repository: model.Repository{Owner: "acme", Name: "vault", FullName: "acme/vault"},
		Commits: []model.Commit{
			{SHA: "111", Message: "upload: stream request bodies", Author: "rdiaz", Additions: 150, Deletions: 90, Date: base},
		},
		Files: []model.FileChange{
			{Path: "upload/stream.go", Status: "added", Additions: 150, Deletions: 0, Significance: "major"},
		},
		Reviews: []model.Review{
			{ID: 1, Author: "kb", State: "APPROVED", SubmittedAt: base.Add(time.Hour)},
		},
		CodeStats:   model.CodeStats{TotalAdditions: 150, TotalDeletions: 90, FilesChanged: 1, SignificantFiles: 1, SignificantRatio: 1},
		ReviewStats: model.ReviewStats{ReviewCount: 1, ApprovalCount: 1, Consensus: "approved"},
	}
}

func fixtureInput(t *testing.T, target float64) AssembleInput {
	t.Helper()
	agg := fixtureAggregate()
	var tpl *template.Template
	for _, cand := range template.Builtin() {
		if cand.Type == template.TypeSummary {
			tpl = cand
		}
	}
	if tpl == nil {
		t.Fatal("summary template missing")
	}

	items := []*model.ContentItem{
		{
			Type:    model.ContentPROverview,
			Payload: &content.OverviewPayload{Title: agg.PullRequest.Title, Body: agg.PullRequest.Body, Labels: agg.PullRequest.Labels},
			Fields:  map[string]any{"volume": 1}, Priority: model.TierCritical,
			PriorityScore: 0.9, RelevanceScore: 0.9, DurationImpact: 15,
			Rationale: "pull request overview",
		},
		{
			Type:    model.ContentCommitHistory,
			Payload: &content.CommitsPayload{Commits: agg.Commits},
			Fields:  map[string]any{"volume": 1}, Priority: model.TierHigh,
			PriorityScore: 0.7, RelevanceScore: 0.7, DurationImpact: 12,
			Rationale: "1 commit",
		},
		{
			Type:    model.ContentReviewFeedback,
			Payload: &content.ReviewsPayload{Reviews: agg.Reviews, Stats: agg.ReviewStats},
			Fields:  map[string]any{"volume": 1}, Priority: model.TierMedium,
			PriorityScore: 0.5, RelevanceScore: 0.5, DurationImpact: 15,
			Rationale: "1 review",
		},
	}
	sel := timeline.Select(items, target)
	plan := timeline.Optimize(sel, tpl, target)

	return AssembleInput{
		Plan: plan, Template: tpl,
		Audience:  model.Audience{Primary: model.AudienceEngineering, TechnicalLevel: model.LevelIntermediate},
		Aggregate: agg, Target: target,
	}
}

func TestAssembleTimingContiguous(t *testing.T) {
	s := Assemble(fixtureInput(t, 90))

	if len(s.Sections) == 0 {
		t.Fatal("no sections assembled")
	}
	if s.Sections[0].Timing.Start != 0 {
		t.Errorf("first section starts at %.1f, want 0", s.Sections[0].Timing.Start)
	}
	for i := 1; i < len(s.Sections); i++ {
		prev, cur := s.Sections[i-1], s.Sections[i]
		if math.Abs(prev.Timing.End-cur.Timing.Start) > 1e-9 {
			t.Errorf("gap between %s and %s: %.3f != %.3f", prev.Type, cur.Type, prev.Timing.End, cur.Timing.Start)
		}
		if math.Abs(cur.Timing.End-cur.Timing.Start-cur.Duration) > 1e-9 {
			t.Errorf("%s window does not match its duration", cur.Type)
		}
	}
}

func TestAssembleIntroFirstSummaryLast(t *testing.T) {
	s := Assemble(fixtureInput(t, 90))

	if s.Sections[0].Type != model.SectionIntro {
		t.Errorf("first section is %s, want intro", s.Sections[0].Type)
	}
	if last := s.Sections[len(s.Sections)-1].Type; last != model.SectionSummary {
		t.Errorf("last section is %s, want summary", last)
	}
}

func TestAssembleTransitions(t *testing.T) {
	s := Assemble(fixtureInput(t, 90))

	for i, sec := range s.Sections {
		if i < len(s.Sections)-1 && sec.Transition == nil {
			t.Errorf("section %s has no transition", sec.Type)
		}
	}
	if last := s.Sections[len(s.Sections)-1]; last.Transition != nil {
		t.Error("final section should not carry a transition")
	}
}

func TestAssembleVoiceoverPresent(t *testing.T) {
	s := Assemble(fixtureInput(t, 90))

	for _, sec := range s.Sections {
		if sec.Voiceover == "" {
			t.Errorf("section %s has empty voiceover", sec.Type)
		}
	}
}

func TestAssembleDeterministicApartFromIDs(t *testing.T) {
	a := Assemble(fixtureInput(t, 90))
	b := Assemble(fixtureInput(t, 90))

	if len(a.Sections) != len(b.Sections) {
		t.Fatal("section counts differ")
	}
	for i := range a.Sections {
		sa, sb := a.Sections[i], b.Sections[i]
		if sa.Type != sb.Type || sa.Duration != sb.Duration || sa.Voiceover != sb.Voiceover {
			t.Errorf("section %d differs across identical runs", i)
		}
	}
	if a.ID == b.ID {
		t.Error("script IDs should be unique per run")
	}
}

func TestOrderSectionsConditionalRule(t *testing.T) {
	tpl := &template.Template{
		Type: "x", Name: "x",
		Duration: template.DurationRange{Min: 10, Max: 100},
		Sections: []template.SectionDefinition{
			{Type: model.SectionIntro, Title: "A"},
			{Type: model.SectionMetrics, Title: "B"},
			{Type: model.SectionImpact, Title: "C"},
		},
		Ordering: []template.OrderingRule{
			// Impact jumps ahead of metrics only when an intro exists.
			{Before: model.SectionImpact, After: model.SectionMetrics, Priority: 5, Condition: "has_intro"},
		},
	}
	sections := []timeline.PlannedSection{
		{Type: model.SectionIntro, Allocated: 5},
		{Type: model.SectionMetrics, Allocated: 5},
		{Type: model.SectionImpact, Allocated: 5},
	}

	got := orderSections(sections, tpl)
	want := []model.SectionType{model.SectionIntro, model.SectionImpact, model.SectionMetrics}
	for i, st := range want {
		if got[i].Type != st {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Type, st)
		}
	}

	// Without the intro the condition fails and declared order stands.
	got = orderSections(sections[1:], tpl)
	if got[0].Type != model.SectionMetrics {
		t.Errorf("conditional rule applied despite failed condition")
	}
}

func TestOrderSectionsConflictingRules(t *testing.T) {
	tpl := &template.Template{
		Type: "x", Name: "x",
		Duration: template.DurationRange{Min: 10, Max: 100},
		Sections: []template.SectionDefinition{
			{Type: model.SectionMetrics, Title: "A"},
			{Type: model.SectionImpact, Title: "B"},
		},
		Ordering: []template.OrderingRule{
			{Before: model.SectionImpact, After: model.SectionMetrics, Priority: 10},
			{Before: model.SectionMetrics, After: model.SectionImpact, Priority: 1},
		},
	}
	sections := []timeline.PlannedSection{
		{Type: model.SectionMetrics},
		{Type: model.SectionImpact},
	}

	got := orderSections(sections, tpl)
	if got[0].Type != model.SectionImpact {
		t.Error("higher-priority ordering rule should win the conflict")
	}
}
