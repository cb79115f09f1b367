package github_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// graphqlRequest is the JSON body githubv4 sends.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlHandler serves body for POST /graphql and records the request.
func graphqlHandler(t *testing.T, body string, got *graphqlRequest) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

var swift = model.ParseRepositoryIdentity("https://github.com/apple/swift")

const issuesResponse = `{
  "data": {
    "repository": {
      "issues": {
        "totalCount": 1294,
        "edges": [
          {
            "node": {
              "number": 101,
              "title": "Crash when compiling generics",
              "url": "https://github.com/apple/swift/issues/101",
              "state": "CLOSED",
              "stateReason": "COMPLETED",
              "createdAt": "2024-05-01T10:00:00Z",
              "updatedAt": "2024-05-02T10:00:00Z",
              "viewerDidAuthor": false,
              "author": {"login": "octocat", "avatarUrl": "https://avatars.example/octocat", "url": "https://github.com/octocat"},
              "labels": {"edges": [{"node": {"name": "bug", "color": "d73a4a"}}]},
              "comments": {"totalCount": 5},
              "participants": {"totalCount": 3},
              "assignees": {"nodes": [{"isViewer": true}]}
            }
          },
          {
            "node": {
              "number": 100,
              "title": "Ghost author",
              "url": "https://github.com/apple/swift/issues/100",
              "state": "OPEN",
              "stateReason": null,
              "createdAt": "2024-04-01T10:00:00Z",
              "updatedAt": "2024-04-02T10:00:00Z",
              "viewerDidAuthor": true,
              "author": null,
              "labels": {"edges": []},
              "comments": {"totalCount": 0},
              "participants": {"totalCount": 1},
              "assignees": {"nodes": []}
            }
          }
        ]
      }
    }
  }
}`

func TestGetIssues(t *testing.T) {
	var req graphqlRequest
	client, _ := newTestClient(t, graphqlHandler(t, issuesResponse, &req))

	conn, err := client.GetIssues(context.Background(), "test-token", swift, model.QueryOptions{
		Count:         10,
		SortField:     model.SortFieldUpdatedAt,
		SortDirection: model.SortDescending,
		IssueStates:   []model.IssueState{model.IssueStateOpen, model.IssueStateClosed},
	})
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Contains(t, req.Query, "repository(owner: $owner, name: $name)")
	assert.Contains(t, req.Query, "issues(first: $count, states: $states, orderBy: {field: $field, direction: $direction})")
	assert.Equal(t, "apple", req.Variables["owner"])
	assert.Equal(t, "swift", req.Variables["name"])
	assert.EqualValues(t, 10, req.Variables["count"])
	assert.Equal(t, "UPDATED_AT", req.Variables["field"])
	assert.Equal(t, "DESC", req.Variables["direction"])
	assert.Equal(t, []any{"OPEN", "CLOSED"}, req.Variables["states"])

	assert.Equal(t, 1294, conn.TotalCount)
	require.Len(t, conn.Edges, 2)

	first := conn.Edges[0].Node
	assert.Equal(t, 101, first.Number)
	assert.Equal(t, "CLOSED", first.State)
	require.NotNil(t, first.StateReason)
	assert.Equal(t, "COMPLETED", *first.StateReason)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), first.UpdatedAt.UTC())
	require.NotNil(t, first.Author)
	assert.Equal(t, "octocat", first.Author.Login)
	assert.Equal(t, "https://avatars.example/octocat", first.Author.AvatarURL)
	require.Len(t, first.Labels.Edges, 1)
	assert.Equal(t, "d73a4a", first.Labels.Edges[0].Node.Color)
	assert.Equal(t, 5, first.Comments.TotalCount)
	assert.True(t, first.Assignees.Nodes[0].IsViewer)

	second := conn.Edges[1].Node
	assert.Nil(t, second.Author)
	assert.Nil(t, second.StateReason)
	assert.True(t, second.ViewerDidAuthor)
}

func TestGetIssues_NoStateFilterSendsNull(t *testing.T) {
	var req graphqlRequest
	client, _ := newTestClient(t, graphqlHandler(t, `{"data":{"repository":{"issues":{"totalCount":0,"edges":[]}}}}`, &req))

	conn, err := client.GetIssues(context.Background(), "test-token", swift, model.QueryOptions{Count: 10})
	require.NoError(t, err)
	require.NotNil(t, conn)

	states, present := req.Variables["states"]
	assert.True(t, present)
	assert.Nil(t, states)
	assert.Empty(t, conn.Edges)
}

const pullRequestsResponse = `{
  "data": {
    "repository": {
      "pullRequests": {
        "totalCount": 2,
        "edges": [
          {
            "node": {
              "number": 42,
              "title": "Add async sequences",
              "url": "https://github.com/apple/swift/pull/42",
              "state": "OPEN",
              "isDraft": true,
              "additions": 120,
              "deletions": 30,
              "changedFiles": 5,
              "createdAt": "2024-05-01T10:00:00Z",
              "updatedAt": "2024-05-03T10:00:00Z",
              "viewerDidAuthor": false,
              "author": {"login": "hubot", "avatarUrl": "https://avatars.example/hubot", "url": "https://github.com/hubot"},
              "labels": {"edges": []},
              "comments": {"totalCount": 2},
              "participants": {"totalCount": 4},
              "assignees": {"nodes": []},
              "reviews": {"totalCount": 2, "nodes": [
                {"body": "Looks good", "comments": {"totalCount": 3}},
                {"body": "", "comments": {"totalCount": 1}}
              ]},
              "reviewRequests": {"nodes": [
                {"requestedReviewer": {}},
                {"requestedReviewer": {"isViewer": true}},
                {"requestedReviewer": null}
              ]}
            }
          },
          {
            "node": {
              "number": 41,
              "title": "Merged change",
              "url": "https://github.com/apple/swift/pull/41",
              "state": "MERGED",
              "isDraft": false,
              "additions": 1,
              "deletions": 1,
              "changedFiles": 1,
              "createdAt": "2024-04-01T10:00:00Z",
              "updatedAt": "2024-04-02T10:00:00Z",
              "viewerDidAuthor": true,
              "author": null,
              "labels": {"edges": []},
              "comments": {"totalCount": 0},
              "participants": {"totalCount": 1},
              "assignees": {"nodes": []},
              "reviews": {"totalCount": 0, "nodes": []},
              "reviewRequests": {"nodes": []}
            }
          }
        ]
      }
    }
  }
}`

func TestGetPullRequests(t *testing.T) {
	var req graphqlRequest
	client, _ := newTestClient(t, graphqlHandler(t, pullRequestsResponse, &req))

	conn, err := client.GetPullRequests(context.Background(), "test-token", swift, model.QueryOptions{
		Count:             10,
		SortField:         model.SortFieldComments,
		SortDirection:     model.SortAscending,
		PullRequestStates: []model.PullRequestState{model.PullRequestStateMerged},
	})
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Contains(t, req.Query, "pullRequests(first: $count, states: $states, orderBy: {field: $field, direction: $direction})")
	assert.Contains(t, req.Query, "... on User")
	assert.Equal(t, "COMMENTS", req.Variables["field"])
	assert.Equal(t, "ASC", req.Variables["direction"])
	assert.Equal(t, []any{"MERGED"}, req.Variables["states"])

	require.Len(t, conn.Edges, 2)
	pr := conn.Edges[0].Node
	assert.True(t, pr.IsDraft)
	assert.Equal(t, 120, pr.Additions)
	assert.Equal(t, 2, pr.Reviews.TotalCount)
	require.Len(t, pr.Reviews.Nodes, 2)
	assert.Equal(t, "Looks good", pr.Reviews.Nodes[0].Body)
	assert.Equal(t, 3, pr.Reviews.Nodes[0].Comments.TotalCount)

	require.Len(t, pr.ReviewRequests.Nodes, 3)
	require.NotNil(t, pr.ReviewRequests.Nodes[0].RequestedReviewer)
	assert.False(t, pr.ReviewRequests.Nodes[0].RequestedReviewer.User.IsViewer)
	require.NotNil(t, pr.ReviewRequests.Nodes[1].RequestedReviewer)
	assert.True(t, pr.ReviewRequests.Nodes[1].RequestedReviewer.User.IsViewer)
	assert.Nil(t, pr.ReviewRequests.Nodes[2].RequestedReviewer)

	assert.Equal(t, "MERGED", conn.Edges[1].Node.State)
}

const releasesResponse = `{
  "data": {
    "repository": {
      "releases": {
        "totalCount": 120,
        "edges": [
          {
            "node": {
              "name": "Swift 6.0",
              "description": "Highlights: **data-race safety**",
              "url": "https://github.com/apple/swift/releases/tag/swift-6.0",
              "isDraft": false,
              "isPrerelease": false,
              "createdAt": "2024-09-16T10:00:00Z",
              "updatedAt": "2024-09-16T11:00:00Z",
              "publishedAt": "2024-09-16T12:00:00Z",
              "tagName": "swift-6.0",
              "tag": {"name": "swift-6.0", "target": {"abbreviatedOid": "abc1234", "commitUrl": "https://github.com/apple/swift/commit/abc1234"}},
              "author": {"login": "swift-ci", "avatarUrl": "https://avatars.example/swift-ci", "url": "https://github.com/swift-ci"},
              "releaseAssets": {"totalCount": 2}
            }
          },
          {
            "node": {
              "name": null,
              "url": "https://github.com/apple/swift/releases/tag/untitled",
              "isDraft": true,
              "isPrerelease": true,
              "createdAt": "2024-09-01T10:00:00Z",
              "updatedAt": "2024-09-01T10:00:00Z",
              "publishedAt": null,
              "tagName": null,
              "tag": null,
              "author": null,
              "releaseAssets": {"totalCount": 0}
            }
          }
        ]
      }
    }
  }
}`

func TestGetReleases(t *testing.T) {
	var req graphqlRequest
	client, _ := newTestClient(t, graphqlHandler(t, releasesResponse, &req))

	conn, err := client.GetReleases(context.Background(), "test-token", swift, model.QueryOptions{
		Count:         3,
		SortField:     model.SortFieldUpdatedAt,
		SortDirection: model.SortDescending,
	})
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Contains(t, req.Query, "releases(first: $count, orderBy: {field: $field, direction: $direction})")
	assert.Equal(t, "CREATED_AT", req.Variables["field"], "releases cannot be ordered by update time")
	assert.EqualValues(t, 3, req.Variables["count"])

	assert.Equal(t, 120, conn.TotalCount)
	require.Len(t, conn.Edges, 2)

	r := conn.Edges[0].Node
	require.NotNil(t, r.Name)
	assert.Equal(t, "Swift 6.0", *r.Name)
	require.NotNil(t, r.Description)
	assert.Equal(t, "Highlights: **data-race safety**", *r.Description)
	require.NotNil(t, r.Tag)
	require.NotNil(t, r.Tag.Target)
	assert.Equal(t, "abc1234", r.Tag.Target.AbbreviatedOid)
	require.NotNil(t, r.PublishedAt)
	assert.Equal(t, 2, r.ReleaseAssets.TotalCount)

	untitled := conn.Edges[1].Node
	assert.Nil(t, untitled.Name)
	assert.Nil(t, untitled.Tag)
	assert.Nil(t, untitled.PublishedAt)
}

const commitsResponse = `{
  "data": {
    "repository": {
      "defaultBranchRef": {
        "target": {
          "history": {
            "edges": [
              {
                "node": {
                  "message": "Fix build\n\nDetails",
                  "messageHeadline": "Fix build",
                  "url": "https://github.com/apple/swift/commit/1a2b3c4",
                  "abbreviatedOid": "1a2b3c4",
                  "additions": 10,
                  "deletions": 2,
                  "changedFiles": 1,
                  "authoredDate": "2024-05-01T10:00:00Z",
                  "committedDate": "2024-05-01T11:00:00Z",
                  "pushedDate": null,
                  "author": {"name": "Octo Cat", "user": {"login": "octocat"}},
                  "committer": {"name": "GitHub", "user": null}
                }
              }
            ]
          }
        }
      }
    }
  }
}`

func TestGetCommits(t *testing.T) {
	var req graphqlRequest
	client, _ := newTestClient(t, graphqlHandler(t, commitsResponse, &req))

	conn, err := client.GetCommits(context.Background(), "test-token", swift, model.QueryOptions{Count: 3})
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Contains(t, req.Query, "defaultBranchRef")
	assert.Contains(t, req.Query, "... on Commit")
	assert.Contains(t, req.Query, "history(first: $count)")

	require.Len(t, conn.Edges, 1)
	c := conn.Edges[0].Node
	assert.Equal(t, "Fix build", c.MessageHeadline)
	assert.Equal(t, "1a2b3c4", c.AbbreviatedOid)
	assert.Nil(t, c.PushedDate)
	require.NotNil(t, c.Author)
	require.NotNil(t, c.Author.User)
	assert.Equal(t, "octocat", c.Author.User.Login)
	require.NotNil(t, c.Committer)
	assert.Nil(t, c.Committer.User)
}

func TestGetCommits_EmptyRepository(t *testing.T) {
	client, _ := newTestClient(t, graphqlHandler(t, `{"data":{"repository":{"defaultBranchRef":null}}}`, nil))

	conn, err := client.GetCommits(context.Background(), "test-token", swift, model.QueryOptions{Count: 3})
	require.NoError(t, err)
	assert.Nil(t, conn)
}

func TestGetReleases_MissingRepository(t *testing.T) {
	client, _ := newTestClient(t, graphqlHandler(t, `{"data":{"repository":null}}`, nil))

	conn, err := client.GetReleases(context.Background(), "test-token", swift, model.QueryOptions{Count: 3})
	require.NoError(t, err)
	assert.Nil(t, conn)
}

func TestGraphQLErrors(t *testing.T) {
	body := `{"data":{"repository":null},"errors":[{"type":"NOT_FOUND","path":["repository"],"message":"Could not resolve to a Repository with the name 'apple/swift'."}]}`
	client, _ := newTestClient(t, graphqlHandler(t, body, nil))

	_, err := client.GetIssues(context.Background(), "test-token", swift, model.QueryOptions{Count: 10})
	require.Error(t, err)

	var accessErr *driven.AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, "issues", accessErr.Op)
	assert.Equal(t, "https://github.com/apple/swift", accessErr.Repository)
	assert.Contains(t, accessErr.Message, "Could not resolve to a Repository")
}

func TestGraphQLNon200(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	}))

	_, err := client.GetPullRequests(context.Background(), "test-token", swift, model.QueryOptions{Count: 10})
	require.Error(t, err)

	var accessErr *driven.AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Contains(t, accessErr.Message, "401")
}

func TestGetIssues_InvalidIdentity(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.GetIssues(context.Background(), "test-token", model.ParseRepositoryIdentity("nope"), model.QueryOptions{})
	require.ErrorIs(t, err, model.ErrInvalidRepositoryURL)
}
