// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// ErrTokenNotSet is returned when a retrieval is attempted without a personal
// access token.
var ErrTokenNotSet = errors.New("token not set")

// Default query options per content type.
var (
	defaultIssueOptions = model.QueryOptions{
		Count:         10,
		SortField:     model.SortFieldUpdatedAt,
		SortDirection: model.SortDescending,
	}
	defaultPullRequestOptions = model.QueryOptions{
		Count:         10,
		SortField:     model.SortFieldUpdatedAt,
		SortDirection: model.SortDescending,
	}
	// Releases cannot be ordered by update time; creation time is the
	// closest available field.
	defaultReleaseOptions = model.QueryOptions{
		Count:         3,
		SortField:     model.SortFieldCreatedAt,
		SortDirection: model.SortDescending,
	}
	defaultCommitOptions = model.QueryOptions{
		Count: 3,
	}
)

// fetchFunc reads one raw connection from the accessor.
type fetchFunc[C any] func(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*C, error)

// Retriever is the retrieval use case shared by every content type. It is
// parameterized by the raw connection type C and the record type T, and
// holds no state between calls.
type Retriever[C any, T any] struct {
	op       string
	token    string
	fetch    fetchFunc[C]
	mapper   func(*C, time.Time) []T
	total    func(*C, []T) int
	defaults model.QueryOptions
	now      func() time.Time
}

// Retrieval use cases, one per content type.
type (
	GetIssuesUseCase        = Retriever[driven.IssueConnection, model.Issue]
	GetPullRequestsUseCase  = Retriever[driven.PullRequestConnection, model.PullRequest]
	GetReleasesUseCase      = Retriever[driven.ReleaseConnection, model.Release]
	GetCommitHistoryUseCase = Retriever[driven.CommitHistoryConnection, model.Commit]
)

// NewGetIssuesUseCase creates the issue retrieval use case for token.
func NewGetIssuesUseCase(accessor driven.RemoteDataAccessor, token string) *GetIssuesUseCase {
	return &GetIssuesUseCase{
		op:       "issues",
		token:    token,
		fetch:    accessor.GetIssues,
		mapper:   MapIssues,
		total:    func(c *driven.IssueConnection, _ []model.Issue) int { return c.TotalCount },
		defaults: defaultIssueOptions,
		now:      time.Now,
	}
}

// NewGetPullRequestsUseCase creates the pull request retrieval use case for token.
func NewGetPullRequestsUseCase(accessor driven.RemoteDataAccessor, token string) *GetPullRequestsUseCase {
	return &GetPullRequestsUseCase{
		op:       "pull requests",
		token:    token,
		fetch:    accessor.GetPullRequests,
		mapper:   MapPullRequests,
		total:    func(c *driven.PullRequestConnection, _ []model.PullRequest) int { return c.TotalCount },
		defaults: defaultPullRequestOptions,
		now:      time.Now,
	}
}

// NewGetReleasesUseCase creates the release retrieval use case for token.
func NewGetReleasesUseCase(accessor driven.RemoteDataAccessor, token string) *GetReleasesUseCase {
	return &GetReleasesUseCase{
		op:       "releases",
		token:    token,
		fetch:    accessor.GetReleases,
		mapper:   MapReleases,
		total:    func(c *driven.ReleaseConnection, _ []model.Release) int { return c.TotalCount },
		defaults: defaultReleaseOptions,
		now:      time.Now,
	}
}

// NewGetCommitHistoryUseCase creates the commit history retrieval use case for
// token. History has no server total; the fetched count is used instead.
func NewGetCommitHistoryUseCase(accessor driven.RemoteDataAccessor, token string) *GetCommitHistoryUseCase {
	return &GetCommitHistoryUseCase{
		op:       "commits",
		token:    token,
		fetch:    accessor.GetCommits,
		mapper:   MapCommits,
		total:    func(_ *driven.CommitHistoryConnection, commits []model.Commit) int { return len(commits) },
		defaults: defaultCommitOptions,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for fetch timestamps and relative dates.
func (r *Retriever[C, T]) WithClock(now func() time.Time) *Retriever[C, T] {
	r.now = now
	return r
}

// Execute validates repo and the token, fetches the raw connection, maps it
// and wraps the records in a new aggregate keyed by repo's canonical URL.
// Accessor failures are returned wrapped; nothing is retried.
func (r *Retriever[C, T]) Execute(ctx context.Context, repo model.RepositoryIdentity, opts model.QueryOptions) (*model.Aggregate[T], error) {
	if !repo.IsValid() {
		return nil, fmt.Errorf("get %s: %w", r.op, model.ErrInvalidRepositoryURL)
	}
	if r.token == "" {
		return nil, fmt.Errorf("get %s for %s: %w", r.op, repo.URL(), ErrTokenNotSet)
	}

	conn, err := r.fetch(ctx, r.token, repo, opts.WithDefaults(r.defaults))
	if err != nil {
		return nil, fmt.Errorf("get %s for %s: %w", r.op, repo.URL(), err)
	}
	if conn == nil {
		return nil, fmt.Errorf("get %s for %s: %w", r.op, repo.URL(), &driven.AccessError{
			Op:         r.op,
			Repository: repo.URL(),
			Message:    "repository " + r.op + " not present in response",
			Err:        driven.ErrFieldMissing,
		})
	}

	now := r.now()
	results := r.mapper(conn, now)
	total := r.total(conn, results)

	return model.NewAggregate(repo, results, &total, now), nil
}
