package model

import "time"

// TagReference points at the commit a release tag resolves to.
type TagReference struct {
	AbbreviatedOID string
	CommitURL      string
}

// Release is a display-ready GitHub release.
//
// TagName and Tag are independent: a release can carry a tag name whose
// target could not be resolved, in which case Tag is nil.
type Release struct {
	Name           *string
	Description    *string // Markdown body as written by the author.
	URL            string
	Author         *Actor
	IsDraft        bool
	IsPrerelease   bool
	NumberOfAssets int
	TagName        *string
	Tag            *TagReference
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PublishedAt    *time.Time
	CreatedAgo     string
	UpdatedAgo     string
}

// Title returns the release name, falling back to the tag name.
func (r Release) Title() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	if r.TagName != nil {
		return *r.TagName
	}
	return ""
}
