// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// ErrFieldMissing indicates an otherwise successful response lacked the
// expected top-level field, e.g. the repository was renamed or deleted after
// it was added to the settings.
var ErrFieldMissing = errors.New("expected field missing from response")

// AccessError is the single failure type of RemoteDataAccessor. It carries the
// upstream message (GraphQL error list or HTTP error) and the original cause.
type AccessError struct {
	Op         string // "viewer", "issues", "pull requests", "releases", "commits"
	Repository string // Canonical URL; empty for viewer lookups.
	Message    string
	Err        error
}

// Error implements error.
func (e *AccessError) Error() string {
	if e.Repository == "" {
		return fmt.Sprintf("fetch %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("fetch %s for %s: %s", e.Op, e.Repository, e.Message)
}

// Unwrap returns the original cause.
func (e *AccessError) Unwrap() error {
	return e.Err
}

// RemoteDataAccessor defines the driven port for reading repository content
// from the GitHub GraphQL API. Every method is called with the personal access
// token of the account on whose behalf the data is read.
//
// The content methods return (nil, nil) when the response does not contain the
// expected connection. All failures are returned as *AccessError.
type RemoteDataAccessor interface {
	GetViewer(ctx context.Context, endpoint model.GitHubEndpoint, token string) (model.Viewer, error)
	GetIssues(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*IssueConnection, error)
	GetPullRequests(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*PullRequestConnection, error)
	GetReleases(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*ReleaseConnection, error)
	GetCommits(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*CommitHistoryConnection, error)
}
