package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitdash/internal/application"
	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API for one
// settings scope.
type Handler struct {
	accountSvc *application.AccountSettingService
	repoSvc    *application.RepositorySettingService
	factory    *application.InteractorFactory
	provider   *application.InteractorProvider
	refresher  *application.Refresher
	cache      *application.DashboardCache
	scope      string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. refresher may
// be nil, in which case mutations do not trigger background refreshes and
// the refresh endpoint is unavailable.
func NewHandler(
	accountSvc *application.AccountSettingService,
	repoSvc *application.RepositorySettingService,
	factory *application.InteractorFactory,
	provider *application.InteractorProvider,
	refresher *application.Refresher,
	cache *application.DashboardCache,
	scope string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accountSvc: accountSvc,
		repoSvc:    repoSvc,
		factory:    factory,
		provider:   provider,
		refresher:  refresher,
		cache:      cache,
		scope:      scope,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request ID, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/account", h.GetAccount)
	mux.HandleFunc("PUT /api/v1/account", h.SignIn)
	mux.HandleFunc("DELETE /api/v1/account", h.SignOut)

	mux.HandleFunc("GET /api/v1/repositories", h.ListRepositories)
	mux.HandleFunc("POST /api/v1/repositories", h.AddRepository)
	mux.HandleFunc("PUT /api/v1/repositories", h.UpdateRepository)
	mux.HandleFunc("DELETE /api/v1/repositories", h.RemoveRepository)

	mux.HandleFunc("GET /api/v1/issues", h.GetIssues)
	mux.HandleFunc("GET /api/v1/pulls", h.GetPullRequests)
	mux.HandleFunc("GET /api/v1/releases", h.GetReleases)
	mux.HandleFunc("GET /api/v1/commits", h.GetCommits)

	mux.HandleFunc("GET /api/v1/dashboard", h.Dashboard)
	mux.HandleFunc("POST /api/v1/refresh", h.Refresh)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		SignedIn: h.provider.HasAccount(),
		Time:     time.Now().UTC().Format(time.RFC3339),
	})
}

// GetAccount returns the signed-in account of the scope.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountSvc.GetAccount(r.Context(), h.scope)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "not signed in")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(*account))
}

// SignIn verifies the token against GitHub, stores the account and swaps the
// active interactors over to it.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accountSvc.SignIn(r.Context(), h.scope, req.EndpointURL, req.Token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.provider.Replace(h.factory.ForAccount(account))
	h.cache.Clear()

	// Background context since the request context is cancelled after the
	// response is sent.
	if h.refresher != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), asyncRefreshTimeout)
			defer cancel()
			h.refresher.RefreshAll(ctx)
		}()
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// SignOut deletes the scope's settings store, including its tracked
// repositories, and drops every cached aggregate.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.accountSvc.DeleteSetting(r.Context(), h.scope); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.provider.Replace(nil)
	h.cache.Clear()

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps application and port errors to HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var accessErr *driven.AccessError

	switch {
	case errors.Is(err, application.ErrNotSignedIn):
		writeError(w, http.StatusServiceUnavailable, "not signed in")
	case errors.Is(err, model.ErrInvalidRepositoryURL),
		errors.Is(err, application.ErrTokenNotSet),
		errors.Is(err, application.ErrInvalidEndpoint):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusServiceUnavailable, driven.ErrEncryptionKeyNotSet.Error())
	case errors.As(err, &accessErr):
		h.logger.Warn("github request failed", "request_id", requestID(r.Context()), "error", err)
		writeError(w, http.StatusBadGateway, accessErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "upstream request timed out")
	default:
		h.logger.Error("request failed",
			"request_id", requestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
