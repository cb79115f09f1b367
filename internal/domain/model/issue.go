package model

import "time"

// Actor is the author of a piece of content. Records hold a nil *Actor when
// the account was deleted.
type Actor struct {
	Login     string
	AvatarURL string
	URL       string
}

// Issue is a display-ready GitHub issue.
type Issue struct {
	Number               int
	Title                string
	URL                  string
	Author               *Actor
	Labels               []Label
	NumberOfComments     int
	NumberOfParticipants int
	// IsAssigned is derived from the first five assignees only, so it can
	// miss the viewer on issues with more assignees.
	IsAssigned      bool
	ViewerDidAuthor bool
	State           IssueState
	StateReason     *IssueStateReason // Set only for closed issues.
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedAgo      string
	UpdatedAgo      string
}

// IsClosed reports whether the issue is closed.
func (i Issue) IsClosed() bool {
	return i.State == IssueStateClosed
}
