package content

import (
	"time"

	"prcast/pkg/model"
)

// testAggregate builds a mid-sized PR with activity in every bucket.
func testAggregate() *model.PRAggregate {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &model.PRAggregate{
		PullRequest: model.PullRequest{
			Number: 482,
			Title:  "Add request coalescing to the cache layer",
			Body:   "## Summary\n\nCollapses concurrent lookups for the same key into a single upstream fetch.\n\n- new `singleflight` wrapper\n- metrics for coalesced hits",
			State:  "closed", Merged: true, Author: "mwade",
			BaseRef: "main", HeadRef: "cache-coalescing",
			Labels:    []string{"performance", "cache"},
			CreatedAt: base, MergedAt: base.Add(72 * time.Hour),
		},
		Repository: model.Repository{Owner: "acme", Name: "edge", FullName: "acme/edge", Language: "Go"},
		Commits: []model.Commit{
			{SHA: "a1b2c3", Message: "cache: add singleflight wrapper\n\nlong body", Author: "mwade", Additions: 240, Deletions: 12, Date: base},
			{SHA: "d4e5f6", Message: "cache: wire coalescing metrics", Author: "mwade", Additions: 60, Deletions: 4, Date: base.Add(4 * time.Hour)},
			{SHA: "0a1b2c", Message: "cache: fix flaky test", Author: "mwade", Additions: 8, Deletions: 8, Date: base.Add(26 * time.Hour)},
		},
		Files: []model.FileChange{
			{Path: "cache/coalesce.go", Status: "added", Additions: 220, Deletions: 0, Patch: "@@ +1,220 @@", Significance: "major"},
			{Path: "cache/coalesce_test.go", Status: "added", Additions: 80, Deletions: 0, Patch: "@@ +1,80 @@", Significance: "moderate"},
			{Path: "cache/cache.go", Status: "modified", Additions: 8, Deletions: 24, Patch: "@@ -10,8 +10,8 @@", Significance: "minor"},
		},
		Reviews: []model.Review{
			{ID: 1, Author: "tchen", State: "CHANGES_REQUESTED", Body: "needs a timeout on the shared fetch", SubmittedAt: base.Add(20 * time.Hour)},
			{ID: 2, Author: "tchen", State: "APPROVED", Body: "lgtm", SubmittedAt: base.Add(48 * time.Hour)},
		},
		Comments: []model.Comment{
			{ID: 10, Author: "tchen", Body: "what happens on fetch error?", Path: "cache/coalesce.go", Resolved: true, CreatedAt: base.Add(21 * time.Hour)},
			{ID: 11, Author: "pk", Body: "benchmark numbers?", Resolved: false, CreatedAt: base.Add(30 * time.Hour)},
		},
		Timeline: []model.TimelineEvent{
			{Kind: "committed", Actor: "mwade", CreatedAt: base},
			{Kind: "reviewed", Actor: "tchen", CreatedAt: base.Add(20 * time.Hour)},
			{Kind: "merged", Actor: "mwade", CreatedAt: base.Add(72 * time.Hour)},
		},
		Participants: []model.Participant{
			{Login: "mwade", Role: "author", Contributions: 5},
			{Login: "tchen", Role: "reviewer", Contributions: 3},
			{Login: "pk", Role: "commenter", Contributions: 1},
		},
		CodeStats: model.CodeStats{
			TotalAdditions: 308, TotalDeletions: 24, FilesChanged: 3,
			SignificantFiles: 1, SignificantRatio: 1.0 / 3.0, LanguagesTouched: 1,
		},
		ReviewStats: model.ReviewStats{
			ReviewCount: 2, ApprovalCount: 1, ChangeRequestCount: 1,
			CommentCount: 2, UnresolvedCount: 1, Consensus: "approved",
		},
		TimelineStats: model.TimelineStats{
			FirstActivity: base, LastActivity: base.Add(72 * time.Hour),
			DurationDays: 3, EventCount: 3,
		},
	}
}

// minimalAggregate is a bare PR: title only, no commits, files, or reviews.
func minimalAggregate() *model.PRAggregate {
	return &model.PRAggregate{
		PullRequest: model.PullRequest{Number: 7, Title: "Fix typo", State: "open", Author: "sol"},
		Repository:  model.Repository{Owner: "acme", Name: "edge", FullName: "acme/edge"},
	}
}
