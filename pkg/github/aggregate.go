package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"prcast/pkg/model"
)

// Wire shapes for the subset of the GitHub REST API we consume.

type wirePR struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	Merged bool   `json:"merged"`
	Draft  bool   `json:"draft"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	Base struct {
		Ref  string `json:"ref"`
		Repo struct {
			Name     string `json:"name"`
			FullName string `json:"full_name"`
			Language string `json:"language"`
			Owner    struct {
				Login string `json:"login"`
			} `json:"owner"`
		} `json:"repo"`
	} `json:"base"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

type wireCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// wireCommitDetail is the single-commit endpoint's shape. Only this endpoint
// carries stats; the PR commit listing omits them.
type wireCommitDetail struct {
	Stats struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	} `json:"stats"`
}

type wireFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch"`
}

type wireReview struct {
	ID   int64 `json:"id"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type wireComment struct {
	ID   int64 `json:"id"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	Body      string    `json:"body"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// FetchAggregate pulls the PR record, commits, files, reviews, and comments
// and computes the derived stats the engine expects.
func (c *Client) FetchAggregate(ctx context.Context, owner, repo string, number int) (*model.PRAggregate, error) {
	base := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)

	body, _, err := c.get(ctx, base, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch pull request: %w", err)
	}
	var pr wirePR
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode pull request: %w", err)
	}

	agg := &model.PRAggregate{
		PullRequest: convertPR(&pr),
		Repository: model.Repository{
			Owner:    owner,
			Name:     repo,
			FullName: pr.Base.Repo.FullName,
			Language: pr.Base.Repo.Language,
		},
	}
	if agg.Repository.FullName == "" {
		agg.Repository.FullName = owner + "/" + repo
	}

	if agg.Commits, err = c.fetchCommits(ctx, owner, repo, base); err != nil {
		return nil, fmt.Errorf("fetch commits: %w", err)
	}
	if agg.Files, err = c.fetchFiles(ctx, base); err != nil {
		return nil, fmt.Errorf("fetch files: %w", err)
	}
	if agg.Reviews, err = c.fetchReviews(ctx, base); err != nil {
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}
	if agg.Comments, err = c.fetchComments(ctx, owner, repo, number, base); err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	Finalize(agg)
	return agg, nil
}

func convertPR(pr *wirePR) model.PullRequest {
	out := model.PullRequest{
		Number: pr.Number, Title: pr.Title, Body: pr.Body,
		State: pr.State, Merged: pr.Merged, Draft: pr.Draft,
		Author:  pr.User.Login,
		BaseRef: pr.Base.Ref, HeadRef: pr.Head.Ref,
		CreatedAt: pr.CreatedAt,
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.Name)
	}
	if pr.MergedAt != nil {
		out.MergedAt = *pr.MergedAt
		out.Merged = true
	}
	if pr.ClosedAt != nil {
		out.ClosedAt = *pr.ClosedAt
	}
	return out
}

// commitStatsLimit caps the per-commit detail requests used to backfill
// churn counts, since each one costs an extra API call.
const commitStatsLimit = 20

func (c *Client) fetchCommits(ctx context.Context, owner, repo, base string) ([]model.Commit, error) {
	pages, err := c.getPaged(ctx, base+"/commits", nil)
	if err != nil {
		return nil, err
	}
	var out []model.Commit
	for _, page := range pages {
		var wire []wireCommit
		if err := json.Unmarshal(page, &wire); err != nil {
			return nil, err
		}
		for _, w := range wire {
			cm := model.Commit{
				SHA:     w.SHA,
				Message: w.Commit.Message,
				Author:  w.Commit.Author.Name,
				Date:    w.Commit.Author.Date,
			}
			if w.Author != nil && w.Author.Login != "" {
				cm.Author = w.Author.Login
			}
			out = append(out, cm)
		}
	}

	// The listing above has no additions/deletions. Fetch detail for the
	// most recent commits; older ones in oversized PRs keep zero churn.
	start := len(out) - commitStatsLimit
	if start < 0 {
		start = 0
	}
	for i := start; i < len(out); i++ {
		body, _, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, out[i].SHA), nil)
		if err != nil {
			slog.Warn("commit stats unavailable", "sha", out[i].SHA, "error", err)
			continue
		}
		var detail wireCommitDetail
		if err := json.Unmarshal(body, &detail); err != nil {
			return nil, fmt.Errorf("decode commit %s: %w", out[i].SHA, err)
		}
		out[i].Additions = detail.Stats.Additions
		out[i].Deletions = detail.Stats.Deletions
	}
	return out, nil
}

func (c *Client) fetchFiles(ctx context.Context, base string) ([]model.FileChange, error) {
	pages, err := c.getPaged(ctx, base+"/files", nil)
	if err != nil {
		return nil, err
	}
	var out []model.FileChange
	for _, page := range pages {
		var wire []wireFile
		if err := json.Unmarshal(page, &wire); err != nil {
			return nil, err
		}
		for _, w := range wire {
			out = append(out, model.FileChange{
				Path:         w.Filename,
				Status:       w.Status,
				Additions:    w.Additions,
				Deletions:    w.Deletions,
				Patch:        w.Patch,
				Significance: significance(w),
			})
		}
	}
	return out, nil
}

func (c *Client) fetchReviews(ctx context.Context, base string) ([]model.Review, error) {
	pages, err := c.getPaged(ctx, base+"/reviews", nil)
	if err != nil {
		return nil, err
	}
	var out []model.Review
	for _, page := range pages {
		var wire []wireReview
		if err := json.Unmarshal(page, &wire); err != nil {
			return nil, err
		}
		for _, w := range wire {
			out = append(out, model.Review{
				ID: w.ID, Author: w.User.Login, State: w.State,
				Body: w.Body, SubmittedAt: w.SubmittedAt,
			})
		}
	}
	return out, nil
}

// fetchComments merges review comments (on the diff) with issue comments
// (on the conversation tab).
func (c *Client) fetchComments(ctx context.Context, owner, repo string, number int, base string) ([]model.Comment, error) {
	var out []model.Comment

	pages, err := c.getPaged(ctx, base+"/comments", nil)
	if err != nil {
		return nil, err
	}
	issuePages, err := c.getPaged(ctx, fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number), url.Values{})
	if err != nil {
		return nil, err
	}
	for _, page := range append(pages, issuePages...) {
		var wire []wireComment
		if err := json.Unmarshal(page, &wire); err != nil {
			return nil, err
		}
		for _, w := range wire {
			out = append(out, model.Comment{
				ID: w.ID, Author: w.User.Login, Body: w.Body,
				Path: w.Path, CreatedAt: w.CreatedAt,
				// The REST API does not expose thread resolution.
				Resolved: true,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// significance grades a file by churn: major over 200 changed lines or a
// removed file, moderate over 40, minor otherwise.
func significance(w wireFile) string {
	churn := w.Additions + w.Deletions
	switch {
	case churn > 200 || w.Status == "removed":
		return "major"
	case churn > 40:
		return "moderate"
	default:
		return "minor"
	}
}

// Finalize computes the derived stats, participants, and timeline from the
// raw collections. Exposed so callers that load aggregates from elsewhere
// (fixtures, stored JSON) produce the same derived values as the fetcher.
func Finalize(agg *model.PRAggregate) {
	computeCodeStats(agg)
	computeReviewStats(agg)
	buildParticipants(agg)
	buildTimeline(agg)
}

func computeCodeStats(agg *model.PRAggregate) {
	var cs model.CodeStats
	langs := make(map[string]bool)
	for _, f := range agg.Files {
		cs.TotalAdditions += f.Additions
		cs.TotalDeletions += f.Deletions
		cs.FilesChanged++
		if f.Significance == "major" {
			cs.SignificantFiles++
		}
		if ext := strings.TrimPrefix(path.Ext(f.Path), "."); ext != "" {
			langs[ext] = true
		}
	}
	if cs.FilesChanged > 0 {
		cs.SignificantRatio = float64(cs.SignificantFiles) / float64(cs.FilesChanged)
	}
	cs.LanguagesTouched = len(langs)
	agg.CodeStats = cs
}

func computeReviewStats(agg *model.PRAggregate) {
	var rs model.ReviewStats
	rs.ReviewCount = len(agg.Reviews)
	for _, r := range agg.Reviews {
		switch r.State {
		case "APPROVED":
			rs.ApprovalCount++
		case "CHANGES_REQUESTED":
			rs.ChangeRequestCount++
		}
	}
	rs.CommentCount = len(agg.Comments)
	for _, c := range agg.Comments {
		if !c.Resolved {
			rs.UnresolvedCount++
		}
	}
	switch {
	case rs.ReviewCount == 0:
		rs.Consensus = "pending"
	case rs.ChangeRequestCount > 0 && rs.ApprovalCount == 0:
		rs.Consensus = "blocked"
	case rs.ApprovalCount > 0 && rs.ChangeRequestCount > 0:
		rs.Consensus = consensusAfterBoth(agg)
	case rs.ApprovalCount > 0:
		rs.Consensus = "approved"
	default:
		rs.Consensus = "mixed"
	}
	agg.ReviewStats = rs
}

// consensusAfterBoth resolves the approved-then-blocked case: the latest
// substantive review wins.
func consensusAfterBoth(agg *model.PRAggregate) string {
	latest := ""
	var latestAt time.Time
	for _, r := range agg.Reviews {
		if r.State != "APPROVED" && r.State != "CHANGES_REQUESTED" {
			continue
		}
		if r.SubmittedAt.After(latestAt) {
			latestAt = r.SubmittedAt
			latest = r.State
		}
	}
	if latest == "APPROVED" {
		return "approved"
	}
	return "mixed"
}

func buildParticipants(agg *model.PRAggregate) {
	type activity struct {
		role  string
		count int
	}
	seen := make(map[string]*activity)
	var order []string
	note := func(login, role string) {
		if login == "" {
			return
		}
		a, ok := seen[login]
		if !ok {
			a = &activity{role: role}
			seen[login] = a
			order = append(order, login)
		}
		a.count++
	}

	note(agg.PullRequest.Author, "author")
	for _, c := range agg.Commits {
		note(c.Author, "author")
	}
	for _, r := range agg.Reviews {
		note(r.Author, "reviewer")
	}
	for _, c := range agg.Comments {
		note(c.Author, "commenter")
	}

	agg.Participants = agg.Participants[:0]
	for _, login := range order {
		a := seen[login]
		agg.Participants = append(agg.Participants, model.Participant{
			Login: login, Role: a.role, Contributions: a.count,
		})
	}
}

// buildTimeline synthesizes an event stream from the dated records.
func buildTimeline(agg *model.PRAggregate) {
	var events []model.TimelineEvent
	add := func(kind, actor, detail string, at time.Time) {
		if at.IsZero() {
			return
		}
		events = append(events, model.TimelineEvent{Kind: kind, Actor: actor, Detail: detail, CreatedAt: at})
	}

	add("opened", agg.PullRequest.Author, agg.PullRequest.Title, agg.PullRequest.CreatedAt)
	for _, c := range agg.Commits {
		add("committed", c.Author, c.Subject(), c.Date)
	}
	for _, r := range agg.Reviews {
		add("reviewed", r.Author, r.State, r.SubmittedAt)
	}
	for _, c := range agg.Comments {
		add("commented", c.Author, "", c.CreatedAt)
	}
	if agg.PullRequest.Merged {
		add("merged", agg.PullRequest.Author, "", agg.PullRequest.MergedAt)
	} else if !agg.PullRequest.ClosedAt.IsZero() {
		add("closed", agg.PullRequest.Author, "", agg.PullRequest.ClosedAt)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	agg.Timeline = events

	var ts model.TimelineStats
	ts.EventCount = len(events)
	if len(events) > 0 {
		ts.FirstActivity = events[0].CreatedAt
		ts.LastActivity = events[len(events)-1].CreatedAt
		ts.DurationDays = ts.LastActivity.Sub(ts.FirstActivity).Hours() / 24
	}
	agg.TimelineStats = ts
}
