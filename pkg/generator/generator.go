// Package generator is the engine's front door: it runs the full content
// pipeline for one pull request and returns a script result that never
// panics outward and never half-succeeds silently.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"prcast/pkg/content"
	"prcast/pkg/model"
	"prcast/pkg/script"
	"prcast/pkg/template"
	"prcast/pkg/timeline"
)

// Target duration bounds accepted by validation, in seconds.
const (
	MinTargetDuration = 60
	MaxTargetDuration = 1200
)

// alternativeMargin is how close another template's suitability must be to
// the chosen one's to count as a viable alternative.
const alternativeMargin = 0.15

// Config is one generation request.
type Config struct {
	TemplateType   template.Type  `json:"template_type"`
	TargetDuration float64        `json:"target_duration_seconds"`
	Audience       model.Audience `json:"audience"`
	Style          string         `json:"style,omitempty"` // empty means template default

	// Strategy overrides the default content selection strategy when set.
	Strategy *content.Strategy `json:"strategy,omitempty"`
}

// Performance records where generation time went.
type Performance struct {
	Total      time.Duration `json:"total"`
	Processing time.Duration `json:"processing"` // categorize through select
	Timeline   time.Duration `json:"timeline"`   // optimize and assemble
	Quality    time.Duration `json:"quality"`
}

// Result is the complete outcome of one generation run. Success false means
// the script is a minimal placeholder and Errors explains why.
type Result struct {
	Script       *model.VideoScript `json:"script"`
	Success      bool               `json:"success"`
	Warnings     []string           `json:"warnings,omitempty"`
	Errors       []string           `json:"errors,omitempty"`
	Alternatives []template.Type    `json:"alternatives,omitempty"`
	Performance  Performance        `json:"performance"`
}

// Validation is the outcome of checking a generation config.
type Validation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// Generator runs generation requests against a template registry. Stateless
// apart from the registry; safe for concurrent use.
type Generator struct {
	registry *template.Registry
}

// New returns a Generator backed by the given registry.
func New(registry *template.Registry) *Generator {
	return &Generator{registry: registry}
}

// ValidateConfig checks a generation config without running it. All problems
// are reported at once.
func ValidateConfig(cfg Config) Validation {
	var errs []string

	switch cfg.TemplateType {
	case template.TypeSummary, template.TypeDetailed, template.TypeTechnical, template.TypeOverview:
	case "":
		errs = append(errs, "template_type is required")
	default:
		errs = append(errs, fmt.Sprintf("unknown template type %q", cfg.TemplateType))
	}

	if cfg.TargetDuration < MinTargetDuration || cfg.TargetDuration > MaxTargetDuration {
		errs = append(errs, fmt.Sprintf("target duration %.0fs outside the supported range [%d, %d]",
			cfg.TargetDuration, MinTargetDuration, MaxTargetDuration))
	}

	switch cfg.Audience.Primary {
	case model.AudienceEngineering, model.AudienceExecutive, model.AudienceProduct, model.AudienceGeneral:
	case "":
		errs = append(errs, "audience.primary is required")
	default:
		errs = append(errs, fmt.Sprintf("unknown audience %q", cfg.Audience.Primary))
	}

	switch cfg.Audience.TechnicalLevel {
	case model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced, "":
	default:
		errs = append(errs, fmt.Sprintf("unknown technical level %q", cfg.Audience.TechnicalLevel))
	}

	// A code-heavy walkthrough cannot be pitched at beginners.
	if cfg.TemplateType == template.TypeTechnical && cfg.Audience.TechnicalLevel == model.LevelBeginner {
		errs = append(errs, "the technical template is incompatible with a beginner audience")
	}

	return Validation{IsValid: len(errs) == 0, Errors: errs}
}

// GenerateScript runs the full pipeline. It always returns a usable Result:
// validation failures and panics surface as Success=false with a minimal
// placeholder script, never as a nil script or a propagated panic.
func (g *Generator) GenerateScript(ctx context.Context, agg *model.PRAggregate, cfg Config) (result *Result) {
	start := time.Now()
	if agg == nil {
		agg = &model.PRAggregate{}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("generation panicked", "pr", agg.PullRequest.Number, "panic", r)
			result = &Result{
				Script:  placeholderScript(agg, cfg),
				Success: false,
				Errors:  []string{fmt.Sprintf("internal error during generation: %v", r)},
			}
			result.Performance.Total = time.Since(start)
		}
	}()

	if v := ValidateConfig(cfg); !v.IsValid {
		return &Result{
			Script:      placeholderScript(agg, cfg),
			Success:     false,
			Errors:      v.Errors,
			Performance: Performance{Total: time.Since(start)},
		}
	}

	tpl, err := g.registry.Get(cfg.TemplateType)
	if err != nil {
		return &Result{
			Script:      placeholderScript(agg, cfg),
			Success:     false,
			Errors:      []string{err.Error()},
			Performance: Performance{Total: time.Since(start)},
		}
	}

	if cfg.Audience.TechnicalLevel == "" {
		cfg.Audience.TechnicalLevel = model.LevelIntermediate
	}
	strategy := cfg.Strategy
	if strategy == nil {
		strategy = content.DefaultStrategy(cfg.Audience, cfg.TemplateType)
	}

	if err := ctx.Err(); err != nil {
		return &Result{
			Script:      placeholderScript(agg, cfg),
			Success:     false,
			Errors:      []string{fmt.Sprintf("generation cancelled: %v", err)},
			Performance: Performance{Total: time.Since(start)},
		}
	}

	// Content pipeline: categorize, score, prioritize, filter, adapt, select.
	procStart := time.Now()
	items := content.Flatten(content.Categorize(agg))
	content.Score(items, content.ScoreContext{
		Audience:  cfg.Audience,
		Template:  cfg.TemplateType,
		Criteria:  strategy.Criteria,
		Freshness: content.FreshnessFor(agg.TimelineStats),
	})
	items = content.Prioritize(items, strategy.Prioritization)
	items = content.Filter(items, strategy.Filtering, strategy.Criteria.ImportanceThreshold)
	items = content.Adapt(items, strategy.Adaptation, cfg.Audience)
	sel := timeline.Select(items, cfg.TargetDuration)
	processing := time.Since(procStart)

	// Timeline fitting and assembly.
	tlStart := time.Now()
	plan := timeline.Optimize(sel, tpl, cfg.TargetDuration)
	vs := script.Assemble(script.AssembleInput{
		Plan:      plan,
		Template:  tpl,
		Audience:  cfg.Audience,
		Style:     cfg.Style,
		Aggregate: agg,
		Target:    cfg.TargetDuration,
	})
	timelineTime := time.Since(tlStart)

	qStart := time.Now()
	quality := script.Assess(vs, tpl, plan, cfg.Audience)
	qualityTime := time.Since(qStart)

	vs.Metadata = model.ScriptMetadata{
		TemplateType: string(cfg.TemplateType),
		Strategy:     string(plan.Strategy),
		Quality:      quality,
		KeyMetrics: model.KeyMetrics{
			TotalCommits:  len(agg.Commits),
			TotalFiles:    len(agg.Files),
			TotalReviews:  len(agg.Reviews),
			TotalComments: len(agg.Comments),
			Additions:     agg.CodeStats.TotalAdditions,
			Deletions:     agg.CodeStats.TotalDeletions,
		},
		GeneratedAt: time.Now().UTC(),
	}

	warnings := append([]string(nil), plan.Warnings...)
	warnings = append(warnings, sparsityWarnings(agg)...)

	res := &Result{
		Script:       vs,
		Success:      true,
		Warnings:     warnings,
		Alternatives: g.alternatives(cfg, agg),
		Performance: Performance{
			Total:      time.Since(start),
			Processing: processing,
			Timeline:   timelineTime,
			Quality:    qualityTime,
		},
	}
	slog.Info("script generated",
		"pr", agg.PullRequest.Number,
		"template", cfg.TemplateType,
		"strategy", plan.Strategy,
		"sections", len(vs.Sections),
		"duration", vs.TotalDuration(),
		"target", cfg.TargetDuration,
		"quality", quality.Overall,
		"took", res.Performance.Total)
	return res
}

// alternatives lists other templates whose suitability for this PR and
// audience comes within the margin of the chosen one, best first.
func (g *Generator) alternatives(cfg Config, agg *model.PRAggregate) []template.Type {
	chosen, err := g.registry.Get(cfg.TemplateType)
	if err != nil {
		return nil
	}
	chosenScore := chosen.SuitabilityScore(cfg.Audience, agg.CodeStats.FilesChanged)

	type scored struct {
		tt    template.Type
		score float64
	}
	var out []scored
	for _, tt := range g.registry.Available() {
		if tt == cfg.TemplateType {
			continue
		}
		tpl, err := g.registry.Get(tt)
		if err != nil {
			continue
		}
		if score := tpl.SuitabilityScore(cfg.Audience, agg.CodeStats.FilesChanged); score >= chosenScore-alternativeMargin {
			out = append(out, scored{tt, score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].tt < out[j].tt
	})
	types := make([]template.Type, len(out))
	for i, s := range out {
		types[i] = s.tt
	}
	return types
}

// sparsityWarnings flags buckets that were empty in the source data, so the
// caller knows thin sections reflect the PR rather than a bug.
func sparsityWarnings(agg *model.PRAggregate) []string {
	var out []string
	if len(agg.Commits) == 0 {
		out = append(out, "the pull request has no commit data")
	}
	if len(agg.Files) == 0 {
		out = append(out, "the pull request has no file changes")
	}
	if len(agg.Reviews) == 0 && len(agg.Comments) == 0 {
		out = append(out, "the pull request has no review activity")
	}
	return out
}

// placeholderScript is the minimal script returned with failed runs: intro,
// overview, summary, short fixed durations, no quality claims.
func placeholderScript(agg *model.PRAggregate, cfg Config) *model.VideoScript {
	pr := agg.PullRequest
	vs := &model.VideoScript{
		ID:             uuid.NewString(),
		Title:          fmt.Sprintf("PR #%d: %s", pr.Number, pr.Title),
		Description:    "Placeholder script; generation did not complete.",
		TargetDuration: cfg.TargetDuration,
		Audience:       cfg.Audience,
		Style:          cfg.Style,
		Metadata: model.ScriptMetadata{
			TemplateType: string(cfg.TemplateType),
			GeneratedAt:  time.Now().UTC(),
		},
	}
	sections := []struct {
		st       model.SectionType
		title    string
		text     string
		duration float64
	}{
		{model.SectionIntro, "Introduction", fmt.Sprintf("This is pull request %d, %q.", pr.Number, pr.Title), 6},
		{model.SectionOverview, "Overview", fmt.Sprintf("Opened by %s against %s.", pr.Author, pr.BaseRef), 12},
		{model.SectionSummary, "Wrap-up", "A full walkthrough could not be generated.", 6},
	}
	var cursor float64
	for _, s := range sections {
		vs.Sections = append(vs.Sections, model.ScriptSection{
			ID:        uuid.NewString(),
			Type:      s.st,
			Title:     s.title,
			Content:   s.text,
			Voiceover: s.text,
			Duration:  s.duration,
			Timing:    model.TimingWindow{Start: cursor, End: cursor + s.duration},
			Priority:  model.TierCritical,
		})
		cursor += s.duration
	}
	return vs
}
