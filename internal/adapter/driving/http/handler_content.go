package httphandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ericfisherdev/gitdash/internal/application"
	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// executor is the shape shared by the retrieval use cases.
type executor[T any] interface {
	Execute(ctx context.Context, repo model.RepositoryIdentity, opts model.QueryOptions) (*model.Aggregate[T], error)
}

// GetIssues fetches the issues of the repository given by the url query
// parameter.
func (h *Handler) GetIssues(w http.ResponseWriter, r *http.Request) {
	serveAggregate(h, w, r, kindIssues,
		func(in *application.Interactors) executor[model.Issue] { return in.Issues },
		toIssueResponse)
}

// GetPullRequests fetches the pull requests of a repository.
func (h *Handler) GetPullRequests(w http.ResponseWriter, r *http.Request) {
	serveAggregate(h, w, r, kindPullRequests,
		func(in *application.Interactors) executor[model.PullRequest] { return in.PullRequests },
		toPullRequestResponse)
}

// GetReleases fetches the releases of a repository.
func (h *Handler) GetReleases(w http.ResponseWriter, r *http.Request) {
	serveAggregate(h, w, r, kindReleases,
		func(in *application.Interactors) executor[model.Release] { return in.Releases },
		toReleaseResponse)
}

// GetCommits fetches the default branch history of a repository.
func (h *Handler) GetCommits(w http.ResponseWriter, r *http.Request) {
	serveAggregate(h, w, r, kindCommits,
		func(in *application.Interactors) executor[model.Commit] { return in.CommitHistory },
		toCommitResponse)
}

// serveAggregate runs one live retrieval for the signed-in account. The
// result is returned as is and does not touch the dashboard cache.
func serveAggregate[T, R any](
	h *Handler,
	w http.ResponseWriter,
	r *http.Request,
	kind contentKind,
	pick func(*application.Interactors) executor[T],
	convert func(T) R,
) {
	q := r.URL.Query()

	repo := model.ParseRepositoryIdentity(q.Get("url"))
	if !repo.IsValid() {
		writeError(w, http.StatusBadRequest, invalidRepositoryMessage)
		return
	}

	opts, err := parseQueryOptions(q, kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := h.provider.Get()
	if in == nil {
		h.writeServiceError(w, r, application.ErrNotSignedIn)
		return
	}

	agg, err := pick(in).Execute(r.Context(), repo, opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAggregateResponse(agg, convert))
}

// Dashboard returns the cached content of every tracked repository in stored
// order. It never calls GitHub.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoSvc.ListRepositorySettings(r.Context(), h.scope)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]DashboardEntryResponse, 0, len(repos))
	for _, repo := range repos {
		url := repo.URL()
		entry := DashboardEntryResponse{Repository: toRepositoryResponse(repo)}

		if agg, ok := h.cache.Issues.Get(url); ok && repo.Preference.ShowsIssues {
			entry.Issues = toAggregateResponse(agg, toIssueResponse)
		}
		if agg, ok := h.cache.PullRequests.Get(url); ok && repo.Preference.ShowsPullRequests {
			entry.PullRequests = toAggregateResponse(agg, toPullRequestResponse)
		}
		if agg, ok := h.cache.Releases.Get(url); ok && repo.Preference.ShowsReleases {
			entry.Releases = toAggregateResponse(agg, toReleaseResponse)
		}
		if agg, ok := h.cache.CommitHistory.Get(url); ok && repo.Preference.ShowsCommits {
			entry.Commits = toAggregateResponse(agg, toCommitResponse)
		}

		resp = append(resp, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Refresh refetches the repository given by the url query parameter, or
// every tracked repository when url is omitted. It blocks until the refresh
// completes.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresher not running")
		return
	}
	if !h.provider.HasAccount() {
		h.writeServiceError(w, r, application.ErrNotSignedIn)
		return
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.refresher.RefreshAll(r.Context())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	identity := model.ParseRepositoryIdentity(raw)
	if !identity.IsValid() {
		writeError(w, http.StatusBadRequest, invalidRepositoryMessage)
		return
	}

	err := h.refresher.RefreshRepository(r.Context(), identity.URL())
	if errors.Is(err, model.ErrInvalidRepositoryURL) {
		writeError(w, http.StatusNotFound, "repository not tracked")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
