package model

import (
	"time"
)

// SectionType identifies one kind of script section.
type SectionType string

const (
	SectionIntro       SectionType = "intro"
	SectionOverview    SectionType = "overview"
	SectionCommits     SectionType = "commits"
	SectionFileChanges SectionType = "file_changes"
	SectionCodeWalk    SectionType = "code_walkthrough"
	SectionReview      SectionType = "review_discussion"
	SectionTeam        SectionType = "contributors"
	SectionMetrics     SectionType = "metrics"
	SectionTimeline    SectionType = "timeline"
	SectionImpact      SectionType = "impact"
	SectionSummary     SectionType = "summary"
)

// TimingWindow is the absolute placement of a section on the video timeline.
// Windows of adjacent sections are contiguous: this window's End equals the
// next section's Start.
type TimingWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// VisualCue tells the rendering layer what to show during a section.
type VisualCue struct {
	Kind        string  `json:"kind"` // diff_view, avatar_wall, stat_chart, timeline_bar, title_card
	Description string  `json:"description"`
	Offset      float64 `json:"offset"` // seconds from section start
}

// Transition annotates how one section hands over to the next. Presentation
// metadata only; it has no effect on timing.
type Transition struct {
	Style    string  `json:"style"` // cut, fade, slide
	Duration float64 `json:"duration"`
}

// ScriptSection is one ordered, timed unit of the final script.
type ScriptSection struct {
	ID          string        `json:"id"`
	Type        SectionType   `json:"type"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Voiceover   string        `json:"voiceover"`
	VisualCues  []VisualCue   `json:"visual_cues"`
	Duration    float64       `json:"duration_seconds"`
	Timing      TimingWindow  `json:"timing_window"`
	Priority    PriorityTier  `json:"priority"`
	Transition  *Transition   `json:"transition,omitempty"`
	SourceItems []ContentType `json:"source_items"`
}

// QualityMetrics scores the assembled script on five dimensions, 0..1 each.
// Overall is always the arithmetic mean of the five, recomputed on creation.
type QualityMetrics struct {
	Coherence          float64 `json:"coherence"`
	Engagement         float64 `json:"engagement"`
	Accuracy           float64 `json:"accuracy"`
	DurationCompliance float64 `json:"duration_compliance"`
	AudienceAlignment  float64 `json:"audience_alignment"`
	Overall            float64 `json:"overall"`

	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	Risks       []string `json:"risks"`
}

// ScriptMetadata records how a script was produced.
type ScriptMetadata struct {
	TemplateType string          `json:"template_type"`
	Strategy     string          `json:"strategy"`
	Quality      *QualityMetrics `json:"quality,omitempty"`
	KeyMetrics   KeyMetrics      `json:"key_metrics"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// VideoScript is the final, ordered, timed narration script. Immutable once
// returned; every generation call produces a fresh instance.
type VideoScript struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	TargetDuration float64         `json:"target_duration_seconds"`
	Sections       []ScriptSection `json:"sections"`
	Audience       Audience        `json:"audience"`
	Style          string          `json:"style"`
	Metadata       ScriptMetadata  `json:"metadata"`
}

// TotalDuration sums the section durations.
func (v *VideoScript) TotalDuration() float64 {
	var total float64
	for i := range v.Sections {
		total += v.Sections[i].Duration
	}
	return total
}
