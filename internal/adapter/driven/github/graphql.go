package github

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// rateLimit is selected alongside every query for logging.
type rateLimit struct {
	Cost      int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type repositoryArgs struct {
	endpoint model.GitHubEndpoint
	vars     map[string]any
}

// repositoryVariables resolves the endpoint serving repo and the common
// owner/name/count variables.
func repositoryVariables(op string, repo model.RepositoryIdentity, count int) (repositoryArgs, error) {
	origin, err := repo.Origin()
	if err != nil {
		return repositoryArgs{}, &driven.AccessError{Op: op, Message: err.Error(), Err: err}
	}
	owner, _ := repo.Owner()
	name, _ := repo.Name()

	endpoint, ok := model.NewGitHubEndpoint("https://" + origin)
	if !ok {
		return repositoryArgs{}, &driven.AccessError{
			Op:         op,
			Repository: repo.URL(),
			Message:    "cannot derive API endpoint",
			Err:        model.ErrInvalidRepositoryURL,
		}
	}

	return repositoryArgs{
		endpoint: endpoint,
		vars: map[string]any{
			"owner": githubv4.String(owner),
			"name":  githubv4.String(name),
			"count": githubv4.Int(count),
		},
	}, nil
}

// query runs q and converts failures into *driven.AccessError.
func (c *Client) query(ctx context.Context, op string, repo model.RepositoryIdentity, args repositoryArgs, token string, q any) error {
	start := time.Now()
	if err := c.graphqlClient(args.endpoint, token).Query(ctx, q, args.vars); err != nil {
		c.logger.Warn("graphql query failed", "op", op, "repo", repo.URL(), "error", err)
		return &driven.AccessError{Op: op, Repository: repo.URL(), Message: err.Error(), Err: err}
	}
	c.logger.Debug("graphql query", "op", op, "repo", repo.URL(), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (c *Client) logGraphQLRateLimit(rl *rateLimit) {
	if rl == nil {
		return
	}

	c.logger.Debug("github graphql rate limit",
		"cost", rl.Cost,
		"rate_remaining", rl.Remaining,
		"rate_limit", rl.Limit,
	)

	if rl.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"remaining", rl.Remaining,
			"reset_in", time.Until(rl.ResetAt).Round(time.Second),
		)
	}
}

func issueOrderField(f model.SortField) githubv4.IssueOrderField {
	switch f {
	case model.SortFieldCreatedAt:
		return githubv4.IssueOrderFieldCreatedAt
	case model.SortFieldComments:
		return githubv4.IssueOrderFieldComments
	default:
		return githubv4.IssueOrderFieldUpdatedAt
	}
}

// releaseOrderField maps f onto the fields releases can be ordered by.
// Anything else orders by creation time.
func releaseOrderField(f model.SortField) githubv4.ReleaseOrderField {
	if f == model.SortFieldName {
		return githubv4.ReleaseOrderFieldName
	}
	return githubv4.ReleaseOrderFieldCreatedAt
}

func orderDirection(d model.SortDirection) githubv4.OrderDirection {
	if d == model.SortAscending {
		return githubv4.OrderDirectionAsc
	}
	return githubv4.OrderDirectionDesc
}

// issueStates returns nil for an empty filter so the argument is sent as null.
func issueStates(states []model.IssueState) *[]githubv4.IssueState {
	if len(states) == 0 {
		return nil
	}
	out := make([]githubv4.IssueState, 0, len(states))
	for _, s := range states {
		out = append(out, githubv4.IssueState(s))
	}
	return &out
}

func pullRequestStates(states []model.PullRequestState) *[]githubv4.PullRequestState {
	if len(states) == 0 {
		return nil
	}
	out := make([]githubv4.PullRequestState, 0, len(states))
	for _, s := range states {
		out = append(out, githubv4.PullRequestState(s))
	}
	return &out
}

// GetIssues fetches the issues of repo. It returns (nil, nil) when the
// repository is absent from the response.
func (c *Client) GetIssues(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.IssueConnection, error) {
	args, err := repositoryVariables("issues", repo, opts.Count)
	if err != nil {
		return nil, err
	}
	args.vars["states"] = issueStates(opts.IssueStates)
	args.vars["field"] = issueOrderField(opts.SortField)
	args.vars["direction"] = orderDirection(opts.SortDirection)

	var q struct {
		RateLimit  *rateLimit
		Repository *struct {
			Issues driven.IssueConnection `graphql:"issues(first: $count, states: $states, orderBy: {field: $field, direction: $direction})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	if err := c.query(ctx, "issues", repo, args, token, &q); err != nil {
		return nil, err
	}
	c.logGraphQLRateLimit(q.RateLimit)

	if q.Repository == nil {
		return nil, nil
	}
	return &q.Repository.Issues, nil
}

// GetPullRequests fetches the pull requests of repo.
func (c *Client) GetPullRequests(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.PullRequestConnection, error) {
	args, err := repositoryVariables("pull requests", repo, opts.Count)
	if err != nil {
		return nil, err
	}
	args.vars["states"] = pullRequestStates(opts.PullRequestStates)
	args.vars["field"] = issueOrderField(opts.SortField)
	args.vars["direction"] = orderDirection(opts.SortDirection)

	var q struct {
		RateLimit  *rateLimit
		Repository *struct {
			PullRequests driven.PullRequestConnection `graphql:"pullRequests(first: $count, states: $states, orderBy: {field: $field, direction: $direction})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	if err := c.query(ctx, "pull requests", repo, args, token, &q); err != nil {
		return nil, err
	}
	c.logGraphQLRateLimit(q.RateLimit)

	if q.Repository == nil {
		return nil, nil
	}
	return &q.Repository.PullRequests, nil
}

// GetReleases fetches the releases of repo.
func (c *Client) GetReleases(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.ReleaseConnection, error) {
	args, err := repositoryVariables("releases", repo, opts.Count)
	if err != nil {
		return nil, err
	}
	args.vars["field"] = releaseOrderField(opts.SortField)
	args.vars["direction"] = orderDirection(opts.SortDirection)

	var q struct {
		RateLimit  *rateLimit
		Repository *struct {
			Releases driven.ReleaseConnection `graphql:"releases(first: $count, orderBy: {field: $field, direction: $direction})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	if err := c.query(ctx, "releases", repo, args, token, &q); err != nil {
		return nil, err
	}
	c.logGraphQLRateLimit(q.RateLimit)

	if q.Repository == nil {
		return nil, nil
	}
	return &q.Repository.Releases, nil
}

// GetCommits fetches the newest commits of repo's default branch. It returns
// (nil, nil) for an empty repository without a default branch.
func (c *Client) GetCommits(ctx context.Context, token string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.CommitHistoryConnection, error) {
	args, err := repositoryVariables("commits", repo, opts.Count)
	if err != nil {
		return nil, err
	}

	var q struct {
		RateLimit  *rateLimit
		Repository *struct {
			DefaultBranchRef *struct {
				Target struct {
					Commit struct {
						History driven.CommitHistoryConnection `graphql:"history(first: $count)"`
					} `graphql:"... on Commit"`
				}
			}
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	if err := c.query(ctx, "commits", repo, args, token, &q); err != nil {
		return nil, err
	}
	c.logGraphQLRateLimit(q.RateLimit)

	if q.Repository == nil || q.Repository.DefaultBranchRef == nil {
		return nil, nil
	}
	return &q.Repository.DefaultBranchRef.Target.Commit.History, nil
}
