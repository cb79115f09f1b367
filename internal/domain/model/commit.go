package model

import "time"

// Commit is a display-ready commit from a repository's default branch history.
type Commit struct {
	Message         string
	MessageHeadline string
	URL             string
	AbbreviatedOID  string
	Additions       int
	Deletions       int
	ChangedFiles    int
	// Author and Committer are the logins of the linked GitHub users; nil when
	// the git identity maps to no user (bots, deleted accounts).
	Author      *string
	Committer   *string
	AuthoredAt  time.Time
	CommittedAt time.Time
	PushedAt    *time.Time
	AuthoredAgo string
}
