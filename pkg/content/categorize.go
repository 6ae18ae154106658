package content

import (
	"fmt"
	"sort"

	"prcast/pkg/model"
)

// maxCodeSamples caps how many patches a code_samples item carries.
const maxCodeSamples = 5

// OverviewPayload is the pr_overview item payload.
type OverviewPayload struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Author  string   `json:"author"`
	State   string   `json:"state"`
	Merged  bool     `json:"merged"`
	Labels  []string `json:"labels"`
	BaseRef string   `json:"base_ref"`
	HeadRef string   `json:"head_ref"`
}

// CommitsPayload is the commit_history item payload.
type CommitsPayload struct {
	Commits    []model.Commit `json:"commits"`
	MajorCount int            `json:"major_count"`
}

// FilesPayload is the file_changes item payload.
type FilesPayload struct {
	Files            []model.FileChange `json:"files"`
	SignificantRatio float64            `json:"significant_ratio"`
}

// CodeSamplesPayload is the code_samples item payload: the most substantial
// patches, ordered by churn.
type CodeSamplesPayload struct {
	Samples []model.FileChange `json:"samples"`
}

// ReviewsPayload is the review_feedback item payload.
type ReviewsPayload struct {
	Reviews []model.Review    `json:"reviews"`
	Stats   model.ReviewStats `json:"stats"`
}

// DiscussionPayload is the discussion item payload.
type DiscussionPayload struct {
	Comments []model.Comment `json:"comments"`
}

// ParticipantsPayload is the participants item payload.
type ParticipantsPayload struct {
	Participants []model.Participant `json:"participants"`
}

// MetricsPayload is the metrics item payload.
type MetricsPayload struct {
	Metrics model.KeyMetrics `json:"metrics"`
	Code    model.CodeStats  `json:"code"`
}

// TimelinePayload is the timeline item payload.
type TimelinePayload struct {
	Events []model.TimelineEvent `json:"events"`
	Stats  model.TimelineStats   `json:"stats"`
}

// ImpactPayload is the impact item payload, derived from outcome and churn.
type ImpactPayload struct {
	Merged           bool `json:"merged"`
	SignificantFiles int  `json:"significant_files"`
	Additions        int  `json:"additions"`
	Deletions        int  `json:"deletions"`
	LanguagesTouched int  `json:"languages_touched"`
}

// Categorize slices the aggregate into typed content items. Buckets with no
// underlying data produce no item, so a sparse PR simply yields fewer items.
// The result is keyed by content type; each bucket currently holds at most
// one item, kept as a slice so rules generalize.
func Categorize(agg *model.PRAggregate) map[model.ContentType][]*model.ContentItem {
	out := make(map[model.ContentType][]*model.ContentItem, len(model.ContentTypes))
	add := func(item *model.ContentItem) {
		out[item.Type] = append(out[item.Type], item)
	}

	pr := agg.PullRequest
	add(&model.ContentItem{
		Type: model.ContentPROverview,
		Payload: &OverviewPayload{
			Title: pr.Title, Body: pr.Body, Author: pr.Author,
			State: pr.State, Merged: pr.Merged, Labels: pr.Labels,
			BaseRef: pr.BaseRef, HeadRef: pr.HeadRef,
		},
		Fields: map[string]any{
			"merged":      pr.Merged,
			"draft":       pr.Draft,
			"label_count": len(pr.Labels),
			"body_length": len(pr.Body),
			"volume":      1,
		},
		Rationale: fmt.Sprintf("pull request %q by %s", pr.Title, pr.Author),
	})

	if len(agg.Commits) > 0 {
		major := 0
		adds, dels := 0, 0
		for _, c := range agg.Commits {
			adds += c.Additions
			dels += c.Deletions
			if c.Additions+c.Deletions > 200 {
				major++
			}
		}
		add(&model.ContentItem{
			Type:    model.ContentCommitHistory,
			Payload: &CommitsPayload{Commits: agg.Commits, MajorCount: major},
			Fields: map[string]any{
				"commit_count":  len(agg.Commits),
				"major_commits": major,
				"major_ratio":   float64(major) / float64(len(agg.Commits)),
				"additions":     adds,
				"deletions":     dels,
				"volume":        len(agg.Commits),
			},
			Rationale: fmt.Sprintf("%d commits, %d substantial", len(agg.Commits), major),
		})
	}

	if len(agg.Files) > 0 {
		add(&model.ContentItem{
			Type:    model.ContentFileChanges,
			Payload: &FilesPayload{Files: agg.Files, SignificantRatio: agg.CodeStats.SignificantRatio},
			Fields: map[string]any{
				"file_count":        len(agg.Files),
				"significant_files": agg.CodeStats.SignificantFiles,
				"significant_ratio": agg.CodeStats.SignificantRatio,
				"volume":            len(agg.Files),
			},
			Rationale: fmt.Sprintf("%d files changed", len(agg.Files)),
		})

		if samples := pickSamples(agg.Files); len(samples) > 0 {
			add(&model.ContentItem{
				Type:    model.ContentCodeSamples,
				Payload: &CodeSamplesPayload{Samples: samples},
				Fields: map[string]any{
					"sample_count": len(samples),
					"draft":        pr.Draft,
					"volume":       len(samples),
				},
				Rationale: fmt.Sprintf("%d patches worth showing", len(samples)),
			})
		}
	}

	if len(agg.Reviews) > 0 {
		add(&model.ContentItem{
			Type:    model.ContentReviewFeedback,
			Payload: &ReviewsPayload{Reviews: agg.Reviews, Stats: agg.ReviewStats},
			Fields: map[string]any{
				"review_count":     len(agg.Reviews),
				"approvals":        agg.ReviewStats.ApprovalCount,
				"change_requests":  agg.ReviewStats.ChangeRequestCount,
				"unresolved_count": agg.ReviewStats.UnresolvedCount,
				"consensus":        agg.ReviewStats.Consensus,
				"volume":           len(agg.Reviews),
			},
			Rationale: fmt.Sprintf("%d reviews, consensus %s", len(agg.Reviews), agg.ReviewStats.Consensus),
		})
	}

	if len(agg.Comments) > 0 {
		unresolved := 0
		for _, c := range agg.Comments {
			if !c.Resolved {
				unresolved++
			}
		}
		add(&model.ContentItem{
			Type:    model.ContentDiscussion,
			Payload: &DiscussionPayload{Comments: agg.Comments},
			Fields: map[string]any{
				"comment_count":    len(agg.Comments),
				"unresolved_count": unresolved,
				"volume":           len(agg.Comments),
			},
			Rationale: fmt.Sprintf("%d comments, %d unresolved", len(agg.Comments), unresolved),
		})
	}

	if len(agg.Participants) > 0 {
		add(&model.ContentItem{
			Type:    model.ContentParticipants,
			Payload: &ParticipantsPayload{Participants: agg.Participants},
			Fields: map[string]any{
				"participant_count": len(agg.Participants),
				"volume":            len(agg.Participants),
			},
			Rationale: fmt.Sprintf("%d people involved", len(agg.Participants)),
		})
	}

	metrics := model.KeyMetrics{
		TotalCommits:  len(agg.Commits),
		TotalFiles:    len(agg.Files),
		TotalReviews:  len(agg.Reviews),
		TotalComments: len(agg.Comments),
		Additions:     agg.CodeStats.TotalAdditions,
		Deletions:     agg.CodeStats.TotalDeletions,
	}
	add(&model.ContentItem{
		Type:    model.ContentMetrics,
		Payload: &MetricsPayload{Metrics: metrics, Code: agg.CodeStats},
		Fields: map[string]any{
			"additions":     agg.CodeStats.TotalAdditions,
			"deletions":     agg.CodeStats.TotalDeletions,
			"files_changed": agg.CodeStats.FilesChanged,
			"merged":        pr.Merged,
			"volume":        1,
		},
		Rationale: fmt.Sprintf("+%d/-%d across %d files", agg.CodeStats.TotalAdditions, agg.CodeStats.TotalDeletions, agg.CodeStats.FilesChanged),
	})

	if len(agg.Timeline) > 0 {
		add(&model.ContentItem{
			Type:    model.ContentTimeline,
			Payload: &TimelinePayload{Events: agg.Timeline, Stats: agg.TimelineStats},
			Fields: map[string]any{
				"event_count":   len(agg.Timeline),
				"duration_days": agg.TimelineStats.DurationDays,
				"volume":        len(agg.Timeline),
			},
			Rationale: fmt.Sprintf("%d events over %.1f days", len(agg.Timeline), agg.TimelineStats.DurationDays),
		})
	}

	if pr.Merged || agg.CodeStats.FilesChanged > 0 {
		add(&model.ContentItem{
			Type: model.ContentImpact,
			Payload: &ImpactPayload{
				Merged:           pr.Merged,
				SignificantFiles: agg.CodeStats.SignificantFiles,
				Additions:        agg.CodeStats.TotalAdditions,
				Deletions:        agg.CodeStats.TotalDeletions,
				LanguagesTouched: agg.CodeStats.LanguagesTouched,
			},
			Fields: map[string]any{
				"merged":            pr.Merged,
				"significant_files": agg.CodeStats.SignificantFiles,
				"volume":            1,
			},
			Rationale: "outcome and blast radius",
		})
	}

	return out
}

// pickSamples selects the changed files whose patches are worth narrating:
// non-trivial significance, patch present, biggest churn first.
func pickSamples(files []model.FileChange) []model.FileChange {
	var candidates []model.FileChange
	for _, f := range files {
		if f.Patch == "" || f.Significance == "minor" {
			continue
		}
		candidates = append(candidates, f)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ci := candidates[i].Additions + candidates[i].Deletions
		cj := candidates[j].Additions + candidates[j].Deletions
		if ci != cj {
			return ci > cj
		}
		return candidates[i].Path < candidates[j].Path
	})
	if len(candidates) > maxCodeSamples {
		candidates = candidates[:maxCodeSamples]
	}
	return candidates
}

// Flatten returns the categorized items as a single slice in canonical
// content-type order, which keeps every downstream stage deterministic.
func Flatten(byType map[model.ContentType][]*model.ContentItem) []*model.ContentItem {
	var items []*model.ContentItem
	for _, ct := range model.ContentTypes {
		items = append(items, byType[ct]...)
	}
	return items
}
