package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitdash/internal/application"
	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

const invalidRepositoryMessage = "invalid repository URL: expected https://<host>/<owner>/<name>"

// asyncRefreshTimeout bounds refreshes started in the background by a request.
const asyncRefreshTimeout = 2 * time.Minute

// ListRepositories returns the tracked repositories in stored order.
func (h *Handler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repoSvc.ListRepositorySettings(r.Context(), h.scope)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]RepositoryResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepositoryResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddRepository starts tracking a repository and triggers an async refresh.
func (h *Handler) AddRepository(w http.ResponseWriter, r *http.Request) {
	identity, ok := decodeRepositoryRequest(w, r)
	if !ok {
		return
	}

	added, err := h.repoSvc.AddRepositorySetting(r.Context(), h.scope, identity)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !added {
		writeError(w, http.StatusConflict, "repository already tracked")
		return
	}

	h.refreshAsync(identity.URL())
	writeJSON(w, http.StatusCreated, toRepositoryResponse(identity))
}

// UpdateRepository replaces the category and section visibility of a
// tracked repository.
func (h *Handler) UpdateRepository(w http.ResponseWriter, r *http.Request) {
	identity, ok := decodeRepositoryRequest(w, r)
	if !ok {
		return
	}

	found, err := h.repoSvc.UpdateRepositorySetting(r.Context(), h.scope, identity)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "repository not tracked")
		return
	}

	h.refreshAsync(identity.URL())
	writeJSON(w, http.StatusOK, toRepositoryResponse(identity))
}

// RemoveRepository stops tracking the repository given by the url query
// parameter and drops its cached content.
func (h *Handler) RemoveRepository(w http.ResponseWriter, r *http.Request) {
	identity := model.ParseRepositoryIdentity(r.URL.Query().Get("url"))
	if !identity.IsValid() {
		writeError(w, http.StatusBadRequest, invalidRepositoryMessage)
		return
	}

	if err := h.repoSvc.DeleteRepositorySetting(r.Context(), h.scope, identity); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.Remove(identity.URL())

	w.WriteHeader(http.StatusNoContent)
}

func decodeRepositoryRequest(w http.ResponseWriter, r *http.Request) (model.RepositoryIdentity, bool) {
	var req RepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return model.RepositoryIdentity{}, false
	}

	identity := req.toIdentity()
	if !identity.IsValid() {
		writeError(w, http.StatusBadRequest, invalidRepositoryMessage)
		return model.RepositoryIdentity{}, false
	}
	return identity, true
}

// refreshAsync fires a refresh of one repository detached from the request
// context, which is canceled once the response is sent.
func (h *Handler) refreshAsync(repoURL string) {
	if h.refresher == nil || !h.provider.HasAccount() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncRefreshTimeout)
		defer cancel()

		err := h.refresher.RefreshRepository(ctx, repoURL)
		switch {
		case errors.Is(err, application.ErrRefresherStopped):
			h.logger.Debug("async repository refresh skipped, refresher stopped", "repo", repoURL)
		case err != nil:
			h.logger.Error("async repository refresh failed", "repo", repoURL, "error", err)
		}
	}()
}
