package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Public GitHub locations. Any other origin is treated as a GitHub Enterprise
// Server install.
const (
	PublicGitHubOrigin     = "https://github.com"
	PublicGitHubGraphQLURL = "https://api.github.com/graphql"
	PublicGitHubRESTURL    = "https://api.github.com/"
)

// GitHubEndpoint pairs a web origin with the API endpoints serving it.
type GitHubEndpoint struct {
	origin     string
	domain     string
	graphqlURL string
	restURL    string
}

// NewGitHubEndpoint derives the endpoint for rawURL. An empty rawURL selects
// public GitHub. Only the scheme and host of rawURL are used. ok is false when
// rawURL cannot be parsed as an absolute http(s) URL.
func NewGitHubEndpoint(rawURL string) (endpoint GitHubEndpoint, ok bool) {
	if rawURL == "" {
		rawURL = PublicGitHubOrigin
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return GitHubEndpoint{}, false
	}

	origin := u.Scheme + "://" + u.Host
	host := strings.ToLower(u.Hostname())

	if host == "github.com" || host == "www.github.com" || host == "api.github.com" {
		return GitHubEndpoint{
			origin:     PublicGitHubOrigin,
			domain:     "github.com",
			graphqlURL: PublicGitHubGraphQLURL,
			restURL:    PublicGitHubRESTURL,
		}, true
	}

	return GitHubEndpoint{
		origin:     origin,
		domain:     host,
		graphqlURL: origin + "/api/graphql",
		restURL:    origin + "/api/v3/",
	}, true
}

// Origin returns the web origin, e.g. "https://github.com".
func (e GitHubEndpoint) Origin() string { return e.origin }

// Domain returns the lower-cased host name of the origin.
func (e GitHubEndpoint) Domain() string { return e.domain }

// GraphQLURL returns the GraphQL API endpoint.
func (e GitHubEndpoint) GraphQLURL() string { return e.graphqlURL }

// RESTURL returns the REST API base URL with a trailing slash.
func (e GitHubEndpoint) RESTURL() string { return e.restURL }

// IsEnterprise reports whether the endpoint is not public GitHub.
func (e GitHubEndpoint) IsEnterprise() bool { return e.origin != PublicGitHubOrigin }

// Viewer is the authenticated user as reported by GitHub.
type Viewer struct {
	Login     string
	URL       string
	AvatarURL string
}

// Account is a signed-in GitHub user together with the endpoint and personal
// access token used for API calls.
type Account struct {
	UserName   string
	ProfileURL string
	AvatarURL  string
	Endpoint   GitHubEndpoint
	Token      string
}

// NewAccount builds an Account from a resolved viewer.
func NewAccount(viewer Viewer, endpoint GitHubEndpoint, token string) Account {
	return Account{
		UserName:   viewer.Login,
		ProfileURL: viewer.URL,
		AvatarURL:  viewer.AvatarURL,
		Endpoint:   endpoint,
		Token:      token,
	}
}

// Key identifies the account across endpoints: "<userName>.<domain>".
func (a Account) Key() string {
	return a.UserName + "." + a.Endpoint.Domain()
}

// ApplicationSetting is one configured account slot. Its scope key namespaces
// the account and repository settings stored for that slot.
type ApplicationSetting struct {
	ID      uuid.UUID
	Label   string
	AddedAt time.Time
}

// NewApplicationSetting creates a slot with a fresh random ID.
func NewApplicationSetting(label string) ApplicationSetting {
	return ApplicationSetting{
		ID:      uuid.New(),
		Label:   label,
		AddedAt: time.Now().UTC(),
	}
}

// Scope returns the settings scope key for the slot.
func (s ApplicationSetting) Scope() string {
	return s.ID.String()
}
