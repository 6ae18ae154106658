// Package script assembles an optimized section plan into the final video
// script: narrative ordering, voiceover text, visual cues, transitions, and
// contiguous timing, then grades the result.
package script

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"prcast/pkg/model"
	"prcast/pkg/template"
	"prcast/pkg/timeline"
)

// AssembleInput carries everything the assembler needs for one script.
type AssembleInput struct {
	Plan      *timeline.Plan
	Template  *template.Template
	Audience  model.Audience
	Style     string // empty means the template default
	Aggregate *model.PRAggregate
	Target    float64
}

// Assemble builds the ordered, timed script from the plan. The ordering
// rules of the template are applied as precedence edges over the planned
// sections; rules that reference absent sections or whose condition fails
// are dropped, and conflicting rules lose to higher-priority ones. Sections
// left unconstrained keep the template's declared order.
func Assemble(in AssembleInput) *model.VideoScript {
	style := in.Style
	if style == "" {
		style = in.Template.Defaults.Style
	}

	ordered := orderSections(in.Plan.Sections, in.Template)

	pr := in.Aggregate.PullRequest
	script := &model.VideoScript{
		ID:    uuid.NewString(),
		Title: fmt.Sprintf("PR #%d: %s", pr.Number, pr.Title),
		Description: fmt.Sprintf("A %s walkthrough of %s#%d by %s.",
			in.Template.Name, in.Aggregate.Repository.FullName, pr.Number, pr.Author),
		TargetDuration: in.Target,
		Audience:       in.Audience,
		Style:          style,
	}

	for _, ps := range ordered {
		section := model.ScriptSection{
			ID:       uuid.NewString(),
			Type:     ps.Type,
			Title:    ps.Title,
			Duration: ps.Allocated,
			Priority: ps.Tier,
		}
		for _, item := range ps.Items {
			section.SourceItems = append(section.SourceItems, item.Type)
		}
		section.Content = sectionContent(ps, in)
		section.Voiceover = sectionVoiceover(ps, style, in)
		section.VisualCues = sectionCues(ps, in.Template)
		script.Sections = append(script.Sections, section)
	}

	// Timing is a second pass so windows stay contiguous whatever order the
	// rules produced.
	var cursor float64
	for i := range script.Sections {
		s := &script.Sections[i]
		s.Timing = model.TimingWindow{Start: cursor, End: cursor + s.Duration}
		cursor = s.Timing.End
	}

	for i := 0; i < len(script.Sections)-1; i++ {
		s := &script.Sections[i]
		if rule := in.Template.TransitionFor(s.Type, script.Sections[i+1].Type); rule != nil {
			s.Transition = &model.Transition{Style: rule.Style, Duration: rule.Duration}
		} else {
			s.Transition = &model.Transition{Style: "cut"}
		}
	}

	return script
}

// orderSections applies the template's ordering rules to the planned
// sections via a topological sort. Ties are broken by declared index, which
// also makes the sort deterministic.
func orderSections(sections []timeline.PlannedSection, tpl *template.Template) []timeline.PlannedSection {
	present := make(map[model.SectionType]int, len(sections))
	for i := range sections {
		present[sections[i].Type] = i
	}

	// Precedence edges, highest-priority rules first so a conflicting
	// lower-priority rule is the one dropped.
	rules := append([]template.OrderingRule(nil), tpl.Ordering...)
	for i := 1; i < len(rules); i++ {
		for j := i; j > 0 && rules[j].Priority > rules[j-1].Priority; j-- {
			rules[j], rules[j-1] = rules[j-1], rules[j]
		}
	}

	succ := make(map[model.SectionType][]model.SectionType)
	indegree := make(map[model.SectionType]int)
	for _, rule := range rules {
		if _, ok := present[rule.Before]; !ok {
			continue
		}
		if _, ok := present[rule.After]; !ok {
			continue
		}
		if !conditionHolds(rule.Condition, present) {
			continue
		}
		if reachable(succ, rule.After, rule.Before) {
			// Adding this edge would close a cycle; the earlier
			// (higher-priority) rules win.
			continue
		}
		succ[rule.Before] = append(succ[rule.Before], rule.After)
		indegree[rule.After]++
	}

	remaining := make(map[model.SectionType]bool, len(sections))
	for st := range present {
		remaining[st] = true
	}

	out := make([]timeline.PlannedSection, 0, len(sections))
	for len(remaining) > 0 {
		// Pick the ready section with the smallest declared index.
		best := model.SectionType("")
		bestIdx := -1
		for st := range remaining {
			if indegree[st] > 0 {
				continue
			}
			if idx := tpl.DeclaredIndex(st); bestIdx < 0 || idx < bestIdx {
				best, bestIdx = st, idx
			}
		}
		if bestIdx < 0 {
			// Cannot happen with acyclic edges, but never loop forever.
			for st := range remaining {
				if bestIdx < 0 || tpl.DeclaredIndex(st) < bestIdx {
					best, bestIdx = st, tpl.DeclaredIndex(st)
				}
			}
		}
		delete(remaining, best)
		for _, next := range succ[best] {
			indegree[next]--
		}
		out = append(out, sections[present[best]])
	}
	return out
}

func conditionHolds(cond string, present map[model.SectionType]int) bool {
	if cond == "" {
		return true
	}
	if name, ok := strings.CutPrefix(cond, "has_"); ok {
		_, exists := present[model.SectionType(name)]
		return exists
	}
	return false
}

// reachable reports whether to can be reached from from along succ edges.
func reachable(succ map[model.SectionType][]model.SectionType, from, to model.SectionType) bool {
	if from == to {
		return true
	}
	seen := map[model.SectionType]bool{from: true}
	stack := []model.SectionType{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range succ[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// sectionCues maps the template's visual requirements onto cues spread
// across the section.
func sectionCues(ps timeline.PlannedSection, tpl *template.Template) []model.VisualCue {
	def, ok := tpl.Section(ps.Type)
	if !ok || len(def.VisualRequirements) == 0 {
		return []model.VisualCue{{Kind: "title_card", Description: ps.Title}}
	}
	cues := make([]model.VisualCue, 0, len(def.VisualRequirements))
	step := ps.Allocated / float64(len(def.VisualRequirements)+1)
	for i, kind := range def.VisualRequirements {
		cues = append(cues, model.VisualCue{
			Kind:        kind,
			Description: cueDescription(kind, ps),
			Offset:      step * float64(i+1),
		})
	}
	return cues
}

func cueDescription(kind string, ps timeline.PlannedSection) string {
	switch kind {
	case "diff_view":
		return "show the relevant diff"
	case "code_pan":
		return "slow pan over the highlighted patch"
	case "avatar_wall":
		return "reviewer and commenter avatars"
	case "stat_chart":
		return "additions and deletions chart"
	case "timeline_bar":
		return "activity timeline"
	case "comment_thread":
		return "scroll the discussion thread"
	default:
		return ps.Title
	}
}
