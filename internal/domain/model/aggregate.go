package model

import "time"

// fetchedAtLayout formats Aggregate.FormattedFetchedAt.
const fetchedAtLayout = "2006/01/02 15:04:05"

// Aggregate is the immutable result of one successful fetch of a content type
// for one repository. A later fetch for the same repository produces a new
// Aggregate that supersedes this one; aggregates are never merged.
type Aggregate[T any] struct {
	fetchedAt     time.Time
	repositoryURL string
	results       []T
	totalCount    *int
}

// Aggregate instantiations per content type.
type (
	Issues        = Aggregate[Issue]
	PullRequests  = Aggregate[PullRequest]
	Releases      = Aggregate[Release]
	CommitHistory = Aggregate[Commit]
)

// NewAggregate wraps results fetched for identity at fetchedAt. totalCount is
// the server-reported total, which may exceed len(results) when the request
// capped the page size; nil means the server did not report one.
func NewAggregate[T any](identity RepositoryIdentity, results []T, totalCount *int, fetchedAt time.Time) *Aggregate[T] {
	copied := make([]T, len(results))
	copy(copied, results)

	var total *int
	if totalCount != nil {
		v := *totalCount
		total = &v
	}

	return &Aggregate[T]{
		fetchedAt:     fetchedAt,
		repositoryURL: identity.URL(),
		results:       copied,
		totalCount:    total,
	}
}

// FetchedAt returns when the aggregate was created.
func (a *Aggregate[T]) FetchedAt() time.Time { return a.fetchedAt }

// RepositoryURL returns the canonical URL of the owning repository.
func (a *Aggregate[T]) RepositoryURL() string { return a.repositoryURL }

// Results returns a copy of the records in server order.
func (a *Aggregate[T]) Results() []T {
	out := make([]T, len(a.results))
	copy(out, a.results)
	return out
}

// Len returns the number of fetched records.
func (a *Aggregate[T]) Len() int { return len(a.results) }

// TotalCount returns the server-reported total, if any.
func (a *Aggregate[T]) TotalCount() (int, bool) {
	if a.totalCount == nil {
		return 0, false
	}
	return *a.totalCount, true
}

// HasMore reports whether the server holds more records than were fetched.
func (a *Aggregate[T]) HasMore() bool {
	total, ok := a.TotalCount()
	return ok && total > len(a.results)
}

// BelongsTo reports whether the aggregate was fetched for the repository
// with the given canonical URL.
func (a *Aggregate[T]) BelongsTo(url string) bool {
	return a.repositoryURL == url
}

// HasContents reports whether at least one record was fetched.
func (a *Aggregate[T]) HasContents() bool {
	return len(a.results) > 0
}

// FormattedFetchedAt renders FetchedAt in local time as "YYYY/MM/DD hh:mm:ss".
func (a *Aggregate[T]) FormattedFetchedAt() string {
	return a.fetchedAt.Local().Format(fetchedAtLayout)
}
