// Package github implements the RemoteDataAccessor port against the GitHub
// REST and GraphQL APIs.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RemoteDataAccessor = (*Client)(nil)

// requestTimeout bounds every API call alongside context cancellation.
const requestTimeout = 30 * time.Second

// Client implements the driven.RemoteDataAccessor port. It holds no token;
// every call authenticates with the token it is given, so one Client serves
// every signed-in account.
type Client struct {
	transport *http.Client
	logger    *slog.Logger

	// Set by NewClientWithHTTPClient to pin both APIs to a test server.
	restURL    *url.URL
	graphqlURL string
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. oauth2 (per-call bearer token)
func NewClient(logger *slog.Logger) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	return &Client{
		transport: rateLimitClient,
		logger:    logger,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	// Derive graphqlURL from baseURL so httptest servers can intercept GraphQL requests.
	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		transport:  httpClient,
		logger:     logger,
		restURL:    u,
		graphqlURL: graphqlU.String(),
	}, nil
}

// authClient wraps the shared transport with a bearer token.
func (c *Client) authClient(token string) *http.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.transport)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	hc.Timeout = requestTimeout
	return hc
}

// restClient builds a go-github client for endpoint.
func (c *Client) restClient(endpoint model.GitHubEndpoint, token string) (*gh.Client, error) {
	client := gh.NewClient(c.authClient(token))

	if c.restURL != nil {
		client.BaseURL = c.restURL
		return client, nil
	}

	if endpoint.IsEnterprise() {
		enterprise, err := client.WithEnterpriseURLs(endpoint.RESTURL(), endpoint.RESTURL())
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URLs for %s: %w", endpoint.Origin(), err)
		}
		return enterprise, nil
	}

	return client, nil
}

// graphqlClient builds a githubv4 client for endpoint.
func (c *Client) graphqlClient(endpoint model.GitHubEndpoint, token string) *githubv4.Client {
	hc := c.authClient(token)

	if c.graphqlURL != "" {
		return githubv4.NewEnterpriseClient(c.graphqlURL, hc)
	}
	if endpoint.IsEnterprise() {
		return githubv4.NewEnterpriseClient(endpoint.GraphQLURL(), hc)
	}
	return githubv4.NewClient(hc)
}

// GetViewer resolves the user behind token via the REST API.
func (c *Client) GetViewer(ctx context.Context, endpoint model.GitHubEndpoint, token string) (model.Viewer, error) {
	client, err := c.restClient(endpoint, token)
	if err != nil {
		return model.Viewer{}, &driven.AccessError{Op: "viewer", Message: err.Error(), Err: err}
	}

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		return model.Viewer{}, &driven.AccessError{Op: "viewer", Message: restErrorMessage(err), Err: err}
	}

	c.logRateLimit(resp, "viewer")

	return model.Viewer{
		Login:     user.GetLogin(),
		URL:       user.GetHTMLURL(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// restErrorMessage extracts the API message from a go-github error.
func restErrorMessage(err error) string {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Message != "" {
		return errResp.Message
	}
	return err.Error()
}

// logRateLimit logs the GitHub REST rate limit status after each call.
func (c *Client) logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	c.logger.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
