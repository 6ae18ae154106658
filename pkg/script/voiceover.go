package script

import (
	"fmt"
	"strings"

	"prcast/pkg/content"
	"prcast/pkg/model"
	"prcast/pkg/timeline"
)

// jargon maps technical phrasing to plain-language equivalents, applied when
// an item carries the simplify_language adaptation.
var jargon = []struct{ from, to string }{
	{"refactored", "reorganized"},
	{"refactor", "reorganization"},
	{"merged", "accepted and combined"},
	{"diff", "set of changes"},
	{"commits", "saved changes"},
	{"commit", "saved change"},
	{"regression", "reintroduced bug"},
	{"lgtm", "looks good"},
}

// sectionContent is the on-screen text summary for a section: short factual
// lines, one per underlying item.
func sectionContent(ps timeline.PlannedSection, in AssembleInput) string {
	var lines []string
	switch ps.Type {
	case model.SectionIntro:
		lines = append(lines, fmt.Sprintf("%s #%d", in.Aggregate.Repository.FullName, in.Aggregate.PullRequest.Number))
	case model.SectionSummary:
		lines = append(lines, outcomeLine(in.Aggregate))
	default:
		for _, item := range ps.Items {
			lines = append(lines, item.Rationale)
		}
	}
	return strings.Join(lines, "\n")
}

// sectionVoiceover builds the narration for one section, then runs the
// style and audience passes over it.
func sectionVoiceover(ps timeline.PlannedSection, style string, in AssembleInput) string {
	var b strings.Builder
	b.WriteString(opener(style, ps.Type, in))

	for _, item := range ps.Items {
		sentence := itemNarration(item, in)
		if sentence == "" {
			continue
		}
		sentence = applyAdaptations(sentence, item)
		b.WriteString(" ")
		b.WriteString(sentence)
	}

	if ps.Type == model.SectionSummary {
		b.WriteString(" ")
		b.WriteString(outcomeLine(in.Aggregate))
	}
	return strings.TrimSpace(b.String())
}

// opener gives each section a style-appropriate lead-in.
func opener(style string, st model.SectionType, in AssembleInput) string {
	pr := in.Aggregate.PullRequest
	switch st {
	case model.SectionIntro:
		switch style {
		case "conversational":
			return fmt.Sprintf("Let's take a look at pull request %d, %q, from %s.", pr.Number, pr.Title, pr.Author)
		case "technical":
			return fmt.Sprintf("Pull request %d: %s. Branch %s into %s.", pr.Number, pr.Title, pr.HeadRef, pr.BaseRef)
		default:
			return fmt.Sprintf("This is a review of pull request %d, %q, opened by %s.", pr.Number, pr.Title, pr.Author)
		}
	case model.SectionOverview:
		return "Here is what changed."
	case model.SectionCommits:
		return "The work landed in the following commits."
	case model.SectionFileChanges:
		return "Turning to the files that were touched."
	case model.SectionCodeWalk:
		return "Let's walk through the most significant code."
	case model.SectionReview:
		return "On the review side."
	case model.SectionTeam:
		return "A quick word on who was involved."
	case model.SectionMetrics:
		return "By the numbers."
	case model.SectionTimeline:
		return "How the work unfolded."
	case model.SectionImpact:
		return "What this means going forward."
	case model.SectionSummary:
		switch style {
		case "conversational":
			return "So, to wrap up."
		default:
			return "In summary."
		}
	default:
		return ""
	}
}

// itemNarration turns one content item into narration sentences.
func itemNarration(item *model.ContentItem, in AssembleInput) string {
	expanded := item.Field("detail_level") == "expanded"
	reduced := item.Field("detail_level") == "reduced"

	switch payload := item.Payload.(type) {
	case *content.OverviewPayload:
		var b strings.Builder
		if body := FlattenMarkdown(payload.Body); body != "" {
			b.WriteString(firstSentences(body, pickCount(2, reduced, expanded)))
		} else {
			b.WriteString(fmt.Sprintf("The change is titled %q.", payload.Title))
		}
		if len(payload.Labels) > 0 && !reduced {
			b.WriteString(fmt.Sprintf(" It is labeled %s.", joinAnd(payload.Labels)))
		}
		return b.String()

	case *content.CommitsPayload:
		n := pickCount(3, reduced, expanded)
		var subjects []string
		for i := range payload.Commits {
			if len(subjects) >= n {
				break
			}
			c := payload.Commits[i]
			subjects = append(subjects, fmt.Sprintf("%q", c.Subject()))
		}
		s := fmt.Sprintf("There are %d commits, including %s.", len(payload.Commits), joinAnd(subjects))
		if payload.MajorCount > 0 && !reduced {
			s += fmt.Sprintf(" %d of them carry substantial changes.", payload.MajorCount)
		}
		return s

	case *content.FilesPayload:
		n := pickCount(3, reduced, expanded)
		var paths []string
		for i := range payload.Files {
			if len(paths) >= n {
				break
			}
			paths = append(paths, payload.Files[i].Path)
		}
		return fmt.Sprintf("%d files changed, led by %s.", len(payload.Files), joinAnd(paths))

	case *content.CodeSamplesPayload:
		var b strings.Builder
		limit := pickCount(2, reduced, expanded)
		for i, sample := range payload.Samples {
			if i >= limit {
				break
			}
			b.WriteString(fmt.Sprintf("In %s, %d lines were added and %d removed. ", sample.Path, sample.Additions, sample.Deletions))
		}
		return strings.TrimSpace(b.String())

	case *content.ReviewsPayload:
		s := fmt.Sprintf("The change received %d reviews with %d approvals", payload.Stats.ReviewCount, payload.Stats.ApprovalCount)
		if payload.Stats.ChangeRequestCount > 0 {
			s += fmt.Sprintf(" and %d change requests", payload.Stats.ChangeRequestCount)
		}
		s += "."
		if !reduced {
			s += fmt.Sprintf(" The overall consensus is %s.", payload.Stats.Consensus)
		}
		return s

	case *content.DiscussionPayload:
		unresolved := 0
		for _, c := range payload.Comments {
			if !c.Resolved {
				unresolved++
			}
		}
		s := fmt.Sprintf("The discussion spans %d comments.", len(payload.Comments))
		if unresolved > 0 {
			s += fmt.Sprintf(" %d remain unresolved.", unresolved)
		}
		return s

	case *content.ParticipantsPayload:
		var names []string
		for i, p := range payload.Participants {
			if i >= pickCount(4, reduced, expanded) {
				break
			}
			names = append(names, p.Login)
		}
		return fmt.Sprintf("%d people took part, including %s.", len(payload.Participants), joinAnd(names))

	case *content.MetricsPayload:
		return fmt.Sprintf("In total, %d additions and %d deletions across %d files.",
			payload.Metrics.Additions, payload.Metrics.Deletions, payload.Metrics.TotalFiles)

	case *content.TimelinePayload:
		return fmt.Sprintf("The pull request was active for %.0f days across %d events.",
			payload.Stats.DurationDays, payload.Stats.EventCount)

	case *content.ImpactPayload:
		if payload.Merged {
			return fmt.Sprintf("The change was merged, touching %d significant files.", payload.SignificantFiles)
		}
		return "The change has not been merged yet."

	default:
		return item.Rationale
	}
}

// applyAdaptations runs the language-level passes an item's adaptation tags
// request.
func applyAdaptations(sentence string, item *model.ContentItem) string {
	for _, tag := range item.Adaptations {
		switch content.AdaptAction(tag) {
		case content.AdaptSimplifyLanguage:
			lower := sentence
			for _, j := range jargon {
				lower = strings.ReplaceAll(lower, j.from, j.to)
			}
			sentence = lower
		case content.AdaptAddExplanation:
			if g := glossFor(item.Type); g != "" {
				sentence += " " + g
			}
		}
	}
	return sentence
}

// glossFor is the one-line plain-language explanation appended for
// beginner audiences.
func glossFor(ct model.ContentType) string {
	switch ct {
	case model.ContentCommitHistory:
		return "A commit is one saved step of the work."
	case model.ContentFileChanges:
		return "These are the project files the author edited."
	case model.ContentCodeSamples:
		return "These snippets show the actual code that changed."
	case model.ContentReviewFeedback:
		return "Reviews are how teammates approve or push back on a change."
	default:
		return ""
	}
}

func outcomeLine(agg *model.PRAggregate) string {
	pr := agg.PullRequest
	if pr.Merged {
		return fmt.Sprintf("Pull request %d was merged into %s.", pr.Number, pr.BaseRef)
	}
	if pr.State == "closed" {
		return fmt.Sprintf("Pull request %d was closed without merging.", pr.Number)
	}
	return fmt.Sprintf("Pull request %d is still open.", pr.Number)
}

// pickCount adjusts how many examples a sentence cites based on the detail
// level the adaptation pass chose.
func pickCount(base int, reduced, expanded bool) int {
	switch {
	case reduced:
		if base <= 1 {
			return 1
		}
		return base / 2
	case expanded:
		return base * 2
	default:
		return base
	}
}

// firstSentences returns up to n sentences from the text.
func firstSentences(text string, n int) string {
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '.' || text[i] == '!' || text[i] == '?' {
			count++
			if count == n {
				return strings.TrimSpace(text[:i+1])
			}
		}
	}
	return strings.TrimSpace(text)
}

func joinAnd(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}
