package model

import (
	"errors"
	"regexp"
)

// ErrInvalidRepositoryURL is returned when an operation needs the parsed parts
// of a repository identity that did not match https://<origin>/<owner>/<name>.
var ErrInvalidRepositoryURL = errors.New("invalid GitHub URL")

var repositoryURLPattern = regexp.MustCompile(`^https://([^/]+)/([^/]+)/([^/]+?)/?$`)

// RepositoryPreference controls which content sections are shown for a
// tracked repository.
type RepositoryPreference struct {
	ShowsCommits      bool
	ShowsIssues       bool
	ShowsPullRequests bool
	ShowsReleases     bool
}

// DefaultRepositoryPreference returns a preference with every section enabled.
func DefaultRepositoryPreference() RepositoryPreference {
	return RepositoryPreference{
		ShowsCommits:      true,
		ShowsIssues:       true,
		ShowsPullRequests: true,
		ShowsReleases:     true,
	}
}

// RepositoryIdentity is a GitHub repository parsed from its URL, plus the
// user's display preference and an optional grouping category.
//
// The parsed origin, owner and name are set together or not at all. Two
// identities are the same repository when their canonical URLs match;
// Preference and Category do not take part in identity.
type RepositoryIdentity struct {
	origin string
	owner  string
	name   string
	valid  bool

	Preference RepositoryPreference
	Category   *string
}

// ParseRepositoryIdentity parses rawURL. Input that does not match
// https://<origin>/<owner>/<name> (optionally with a trailing slash) yields an
// identity whose IsValid reports false.
func ParseRepositoryIdentity(rawURL string) RepositoryIdentity {
	id := RepositoryIdentity{Preference: DefaultRepositoryPreference()}

	m := repositoryURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return id
	}

	id.origin, id.owner, id.name = m[1], m[2], m[3]
	id.valid = true
	return id
}

// IsValid reports whether the URL was parsed into origin, owner and name.
func (r RepositoryIdentity) IsValid() bool {
	return r.valid
}

// URL returns the canonical https://{origin}/{owner}/{name} form. It does not
// fail on an invalid identity; the result is then the degenerate "https:///".
func (r RepositoryIdentity) URL() string {
	if !r.valid {
		return "https:///"
	}
	return "https://" + r.origin + "/" + r.owner + "/" + r.name
}

// Origin returns the host part, e.g. "github.com".
func (r RepositoryIdentity) Origin() (string, error) {
	if !r.valid {
		return "", ErrInvalidRepositoryURL
	}
	return r.origin, nil
}

// Owner returns the repository owner login.
func (r RepositoryIdentity) Owner() (string, error) {
	if !r.valid {
		return "", ErrInvalidRepositoryURL
	}
	return r.owner, nil
}

// Name returns the repository name.
func (r RepositoryIdentity) Name() (string, error) {
	if !r.valid {
		return "", ErrInvalidRepositoryURL
	}
	return r.name, nil
}

// DisplayName returns "owner/name", or "" for an invalid identity.
func (r RepositoryIdentity) DisplayName() string {
	return r.DisplayNameWith("/")
}

// DisplayNameWith joins owner and name with sep. An invalid identity yields "".
func (r RepositoryIdentity) DisplayNameWith(sep string) string {
	if !r.valid {
		return ""
	}
	return r.owner + sep + r.name
}

// Equals compares canonical URLs only.
func (r RepositoryIdentity) Equals(other RepositoryIdentity) bool {
	return r.URL() == other.URL()
}

// RepositorySetting is the persisted form of a tracked repository.
type RepositorySetting struct {
	URL               string
	Category          *string
	ShowsCommits      bool
	ShowsIssues       bool
	ShowsPullRequests bool
	ShowsReleases     bool
}

// NewRepositorySetting flattens identity into its persisted form.
func NewRepositorySetting(identity RepositoryIdentity) RepositorySetting {
	return RepositorySetting{
		URL:               identity.URL(),
		Category:          identity.Category,
		ShowsCommits:      identity.Preference.ShowsCommits,
		ShowsIssues:       identity.Preference.ShowsIssues,
		ShowsPullRequests: identity.Preference.ShowsPullRequests,
		ShowsReleases:     identity.Preference.ShowsReleases,
	}
}

// Identity parses the stored URL and restores preference and category.
func (s RepositorySetting) Identity() RepositoryIdentity {
	id := ParseRepositoryIdentity(s.URL)
	id.Category = s.Category
	id.Preference = RepositoryPreference{
		ShowsCommits:      s.ShowsCommits,
		ShowsIssues:       s.ShowsIssues,
		ShowsPullRequests: s.ShowsPullRequests,
		ShowsReleases:     s.ShowsReleases,
	}
	return id
}
