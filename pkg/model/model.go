package model

import (
	"time"
)

// PRAggregate is the fully populated pull request data structure produced by
// the data-acquisition layer. The engine treats every field as already
// validated and complete; it never re-fetches.
type PRAggregate struct {
	PullRequest  PullRequest     `json:"pull_request"`
	Repository   Repository      `json:"repository"`
	Commits      []Commit        `json:"commits"`
	Files        []FileChange    `json:"files"`
	Reviews      []Review        `json:"reviews"`
	Comments     []Comment       `json:"comments"`
	Timeline     []TimelineEvent `json:"timeline"`
	Participants []Participant   `json:"participants"`

	CodeStats     CodeStats     `json:"code_stats"`
	ReviewStats   ReviewStats   `json:"review_stats"`
	TimelineStats TimelineStats `json:"timeline_stats"`
}

// PullRequest holds the core PR record.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"` // GitHub-flavored markdown
	State     string    `json:"state"`
	Merged    bool      `json:"merged"`
	Draft     bool      `json:"draft"`
	Author    string    `json:"author"`
	BaseRef   string    `json:"base_ref"`
	HeadRef   string    `json:"head_ref"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	MergedAt  time.Time `json:"merged_at"`
	ClosedAt  time.Time `json:"closed_at"`
}

// Repository identifies the repo the PR belongs to.
type Repository struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Language string `json:"language"`
}

// Commit is a single commit on the PR branch.
type Commit struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
	Date      time.Time `json:"date"`
}

// Subject returns the first line of the commit message.
func (c *Commit) Subject() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// FileChange describes one changed file in the diff.
type FileChange struct {
	Path         string `json:"path"`
	Status       string `json:"status"` // added, modified, removed, renamed
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	Patch        string `json:"patch,omitempty"`
	Significance string `json:"significance"` // minor, moderate, major
}

// Review is a submitted PR review.
type Review struct {
	ID          int64     `json:"id"`
	Author      string    `json:"author"`
	State       string    `json:"state"` // APPROVED, CHANGES_REQUESTED, COMMENTED, DISMISSED
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Comment is an issue or review comment on the PR.
type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Path      string    `json:"path,omitempty"` // set for review comments
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineEvent is a single event in the PR's history.
type TimelineEvent struct {
	Kind      string    `json:"kind"` // committed, reviewed, commented, labeled, merged, ...
	Actor     string    `json:"actor"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant is anyone who touched the PR, with a rough activity count.
type Participant struct {
	Login         string `json:"login"`
	Role          string `json:"role"` // author, reviewer, commenter
	Contributions int    `json:"contributions"`
}

// CodeStats are precomputed aggregates over the diff.
type CodeStats struct {
	TotalAdditions   int     `json:"total_additions"`
	TotalDeletions   int     `json:"total_deletions"`
	FilesChanged     int     `json:"files_changed"`
	SignificantFiles int     `json:"significant_files"` // files tagged "major"
	SignificantRatio float64 `json:"significant_ratio"`
	LanguagesTouched int     `json:"languages_touched"`
}

// ReviewStats are precomputed aggregates over reviews and comments.
type ReviewStats struct {
	ReviewCount        int    `json:"review_count"`
	ApprovalCount      int    `json:"approval_count"`
	ChangeRequestCount int    `json:"change_request_count"`
	CommentCount       int    `json:"comment_count"`
	UnresolvedCount    int    `json:"unresolved_count"`
	Consensus          string `json:"consensus"` // approved, blocked, mixed, pending
}

// TimelineStats are precomputed aggregates over the event timeline.
type TimelineStats struct {
	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`
	DurationDays  float64   `json:"duration_days"`
	EventCount    int       `json:"event_count"`
}

// KeyMetrics is the headline metric set surfaced in script metadata.
type KeyMetrics struct {
	TotalCommits  int `json:"total_commits"`
	TotalFiles    int `json:"total_files"`
	TotalReviews  int `json:"total_reviews"`
	TotalComments int `json:"total_comments"`
	Additions     int `json:"additions"`
	Deletions     int `json:"deletions"`
}
