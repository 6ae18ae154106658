package script

import (
	"fmt"
	"math"

	"prcast/pkg/model"
	"prcast/pkg/template"
	"prcast/pkg/timeline"
)

// accuracyBaseline is the fixed accuracy score: content is copied from the
// PR record rather than paraphrased by a model, so factual drift is limited
// to cut material.
const accuracyBaseline = 0.85

// technicalSections are the section types that carry engineering depth.
var technicalSections = map[model.SectionType]bool{
	model.SectionCommits:     true,
	model.SectionFileChanges: true,
	model.SectionCodeWalk:    true,
}

// desiredTechRatio is how much of the runtime each technical level wants
// spent in technical sections.
var desiredTechRatio = map[model.TechnicalLevel]float64{
	model.LevelBeginner:     0.15,
	model.LevelIntermediate: 0.35,
	model.LevelAdvanced:     0.55,
}

// Assess grades the assembled script on the five quality dimensions. Pure
// and deterministic; the same script always earns the same marks.
func Assess(s *model.VideoScript, tpl *template.Template, plan *timeline.Plan, audience model.Audience) *model.QualityMetrics {
	q := &model.QualityMetrics{
		Coherence:          coherence(s, tpl),
		Engagement:         engagement(s),
		Accuracy:           accuracy(plan),
		DurationCompliance: plan.Compliance,
		AudienceAlignment:  audienceAlignment(s, audience),
	}
	q.Overall = (q.Coherence + q.Engagement + q.Accuracy + q.DurationCompliance + q.AudienceAlignment) / 5

	if q.DurationCompliance > 0.9 {
		q.Strengths = append(q.Strengths, "runtime lands close to the requested duration")
	}
	if q.Coherence > 0.8 {
		q.Strengths = append(q.Strengths, "sections follow a natural narrative order")
	}
	if q.DurationCompliance < 0.8 {
		q.Weaknesses = append(q.Weaknesses, fmt.Sprintf(
			"runtime misses the target by more than 20%% (%.0fs vs %.0fs)", plan.Total, plan.Target))
	}
	if q.Engagement < 0.5 {
		q.Weaknesses = append(q.Weaknesses, "pacing is monotonous")
		q.Suggestions = append(q.Suggestions, "vary section lengths or add visual cues")
	}
	if q.AudienceAlignment < 0.6 {
		q.Suggestions = append(q.Suggestions, "pick a template whose depth matches the audience")
	}
	var cutImpact float64
	for _, cut := range plan.Cuts {
		cutImpact += cut.QualityImpact
	}
	if cutImpact > 0.4 {
		q.Risks = append(q.Risks, "heavy compression removed detail viewers may expect")
	}
	return q
}

// coherence blends ordering conformance with duration evenness. A script
// whose sections appear in the template's declared order, with no section
// dwarfing the rest, reads as coherent.
func coherence(s *model.VideoScript, tpl *template.Template) float64 {
	n := len(s.Sections)
	if n < 2 {
		return 1
	}

	inversions, pairs := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs++
			if tpl.DeclaredIndex(s.Sections[i].Type) > tpl.DeclaredIndex(s.Sections[j].Type) {
				inversions++
			}
		}
	}
	orderScore := 1 - float64(inversions)/float64(pairs)

	mean := s.TotalDuration() / float64(n)
	var variance float64
	for i := range s.Sections {
		d := s.Sections[i].Duration - mean
		variance += d * d
	}
	variance /= float64(n)
	spread := clamp01(1 - math.Sqrt(variance)/math.Max(mean, 1))

	return clamp01(0.6*orderScore + 0.4*spread)
}

// engagement rewards variety: different section kinds, different visuals,
// and section lengths in the attention sweet spot.
func engagement(s *model.VideoScript) float64 {
	if len(s.Sections) == 0 {
		return 0
	}
	kinds := make(map[model.SectionType]bool)
	cues := make(map[string]bool)
	inWindow := 0
	for i := range s.Sections {
		sec := &s.Sections[i]
		kinds[sec.Type] = true
		for _, cue := range sec.VisualCues {
			cues[cue.Kind] = true
		}
		if sec.Duration >= 20 && sec.Duration <= 60 {
			inWindow++
		}
	}
	diversity := clamp01(float64(len(kinds)) / 6)
	cueVariety := clamp01(float64(len(cues)) / 4)
	lengths := float64(inWindow) / float64(len(s.Sections))
	return clamp01((diversity + cueVariety + lengths) / 3)
}

func accuracy(plan *timeline.Plan) float64 {
	score := accuracyBaseline
	for _, cut := range plan.Cuts {
		score -= cut.QualityImpact * 0.1
	}
	return clamp01(score)
}

// audienceAlignment compares the share of runtime spent in technical
// sections against what the audience's technical level asks for.
func audienceAlignment(s *model.VideoScript, audience model.Audience) float64 {
	total := s.TotalDuration()
	if total <= 0 {
		return 0
	}
	var technical float64
	for i := range s.Sections {
		if technicalSections[s.Sections[i].Type] {
			technical += s.Sections[i].Duration
		}
	}
	desired, ok := desiredTechRatio[audience.TechnicalLevel]
	if !ok {
		desired = desiredTechRatio[model.LevelIntermediate]
	}
	return clamp01(1 - math.Abs(technical/total-desired))
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
