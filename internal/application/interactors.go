package application

import (
	"time"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// Interactors bundles the retrieval use cases bound to one account.
type Interactors struct {
	Account       model.Account
	Issues        *GetIssuesUseCase
	PullRequests  *GetPullRequestsUseCase
	Releases      *GetReleasesUseCase
	CommitHistory *GetCommitHistoryUseCase
}

// InteractorFactory builds retrieval use cases over a shared accessor.
type InteractorFactory struct {
	accessor driven.RemoteDataAccessor
	now      func() time.Time
}

// NewInteractorFactory creates a factory over accessor.
func NewInteractorFactory(accessor driven.RemoteDataAccessor) *InteractorFactory {
	return &InteractorFactory{accessor: accessor, now: time.Now}
}

// WithClock sets the clock handed to every use case the factory builds.
func (f *InteractorFactory) WithClock(now func() time.Time) *InteractorFactory {
	f.now = now
	return f
}

// ForAccount builds the four retrieval use cases bound to account's token.
func (f *InteractorFactory) ForAccount(account model.Account) *Interactors {
	return &Interactors{
		Account:       account,
		Issues:        NewGetIssuesUseCase(f.accessor, account.Token).WithClock(f.now),
		PullRequests:  NewGetPullRequestsUseCase(f.accessor, account.Token).WithClock(f.now),
		Releases:      NewGetReleasesUseCase(f.accessor, account.Token).WithClock(f.now),
		CommitHistory: NewGetCommitHistoryUseCase(f.accessor, account.Token).WithClock(f.now),
	}
}
