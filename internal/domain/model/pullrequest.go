package model

import "time"

// ReviewCommentCount is the number of review comments aggregated over the
// fetched reviews. When HasRemainedItem is true not every review was fetched
// and Count is a lower bound.
type ReviewCommentCount struct {
	Count           int
	HasRemainedItem bool
}

// PullRequest is a display-ready GitHub pull request.
type PullRequest struct {
	Number               int
	Title                string
	URL                  string
	Author               *Actor
	Labels               []Label
	NumberOfComments     int
	NumberOfParticipants int
	IsAssigned           bool
	ViewerDidAuthor      bool
	State                PullRequestState
	Additions            int
	Deletions            int
	ChangedFiles         int
	IsDraft              bool
	ReviewComments       ReviewCommentCount
	// IsReviewRequested is derived from the first five review requests only.
	IsReviewRequested bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatedAgo        string
	UpdatedAgo        string
}

// IsMerged reports whether the pull request was merged.
func (pr PullRequest) IsMerged() bool {
	return pr.State == PullRequestStateMerged
}
