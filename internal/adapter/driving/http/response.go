package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	SignedIn bool   `json:"signed_in"`
	Time     string `json:"time"`
}

// SignInRequest is the JSON body for the sign-in endpoint.
type SignInRequest struct {
	EndpointURL string `json:"endpoint_url"`
	Token       string `json:"token"`
}

// AccountResponse is the JSON representation of the signed-in account. The
// token is never returned.
type AccountResponse struct {
	Key        string `json:"key"`
	UserName   string `json:"user_name"`
	ProfileURL string `json:"profile_url"`
	AvatarURL  string `json:"avatar_url"`
	Endpoint   string `json:"endpoint"`
	Enterprise bool   `json:"enterprise"`
}

// ShowsJSON is the per-section visibility of a tracked repository. In
// requests, omitted keys default to true.
type ShowsJSON struct {
	Issues       *bool `json:"issues,omitempty"`
	PullRequests *bool `json:"pull_requests,omitempty"`
	Releases     *bool `json:"releases,omitempty"`
	Commits      *bool `json:"commits,omitempty"`
}

// RepositoryRequest is the JSON body for the add and update repository endpoints.
type RepositoryRequest struct {
	URL      string     `json:"url"`
	Category *string    `json:"category"`
	Shows    *ShowsJSON `json:"shows"`
}

// RepositoryResponse is the JSON representation of a tracked repository.
type RepositoryResponse struct {
	URL         string    `json:"url"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Category    *string   `json:"category"`
	Shows       ShowsJSON `json:"shows"`
}

// ActorResponse is the JSON representation of a content author.
type ActorResponse struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	URL       string `json:"url"`
}

// LabelResponse is the JSON representation of a label.
type LabelResponse struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	IsLight bool   `json:"is_light"`
}

// IssueResponse is the JSON representation of an issue.
type IssueResponse struct {
	Number          int             `json:"number"`
	Title           string          `json:"title"`
	URL             string          `json:"url"`
	Author          *ActorResponse  `json:"author"`
	Labels          []LabelResponse `json:"labels"`
	Comments        int             `json:"comments"`
	Participants    int             `json:"participants"`
	IsAssigned      bool            `json:"is_assigned"`
	ViewerDidAuthor bool            `json:"viewer_did_author"`
	State           string          `json:"state"`
	StateReason     *string         `json:"state_reason"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	CreatedAgo      string          `json:"created_ago"`
	UpdatedAgo      string          `json:"updated_ago"`
}

// PullRequestResponse is the JSON representation of a pull request.
type PullRequestResponse struct {
	Number                  int             `json:"number"`
	Title                   string          `json:"title"`
	URL                     string          `json:"url"`
	Author                  *ActorResponse  `json:"author"`
	Labels                  []LabelResponse `json:"labels"`
	Comments                int             `json:"comments"`
	Participants            int             `json:"participants"`
	IsAssigned              bool            `json:"is_assigned"`
	ViewerDidAuthor         bool            `json:"viewer_did_author"`
	IsReviewRequested       bool            `json:"is_review_requested"`
	State                   string          `json:"state"`
	IsDraft                 bool            `json:"is_draft"`
	Additions               int             `json:"additions"`
	Deletions               int             `json:"deletions"`
	ChangedFiles            int             `json:"changed_files"`
	ReviewComments          int             `json:"review_comments"`
	ReviewCommentsTruncated bool            `json:"review_comments_truncated"`
	CreatedAt               string          `json:"created_at"`
	UpdatedAt               string          `json:"updated_at"`
	CreatedAgo              string          `json:"created_ago"`
	UpdatedAgo              string          `json:"updated_ago"`
}

// ReleaseResponse is the JSON representation of a release.
type ReleaseResponse struct {
	Title        string         `json:"title"`
	Name         *string        `json:"name"`
	Description  string         `json:"description_html"`
	URL          string         `json:"url"`
	Author       *ActorResponse `json:"author"`
	IsDraft      bool           `json:"is_draft"`
	IsPrerelease bool           `json:"is_prerelease"`
	Assets       int            `json:"assets"`
	TagName      *string        `json:"tag_name"`
	TagCommit    *string        `json:"tag_commit"`
	TagCommitURL *string        `json:"tag_commit_url"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	PublishedAt  *string        `json:"published_at"`
	CreatedAgo   string         `json:"created_ago"`
	UpdatedAgo   string         `json:"updated_ago"`
}

// CommitResponse is the JSON representation of a commit.
type CommitResponse struct {
	AbbreviatedOID  string  `json:"abbreviated_oid"`
	MessageHeadline string  `json:"message_headline"`
	Message         string  `json:"message"`
	URL             string  `json:"url"`
	Additions       int     `json:"additions"`
	Deletions       int     `json:"deletions"`
	ChangedFiles    int     `json:"changed_files"`
	Author          *string `json:"author"`
	Committer       *string `json:"committer"`
	AuthoredAt      string  `json:"authored_at"`
	CommittedAt     string  `json:"committed_at"`
	PushedAt        *string `json:"pushed_at"`
	AuthoredAgo     string  `json:"authored_ago"`
}

// AggregateResponse is the JSON representation of one fetch result.
type AggregateResponse[T any] struct {
	RepositoryURL string `json:"repository_url"`
	FetchedAt     string `json:"fetched_at"`
	FetchedAtText string `json:"fetched_at_text"`
	TotalCount    *int   `json:"total_count"`
	HasMore       bool   `json:"has_more"`
	Results       []T    `json:"results"`
}

// DashboardEntryResponse holds the cached content of one tracked repository.
// A section is null when it is hidden or has not been fetched yet.
type DashboardEntryResponse struct {
	Repository   RepositoryResponse                      `json:"repository"`
	Issues       *AggregateResponse[IssueResponse]       `json:"issues"`
	PullRequests *AggregateResponse[PullRequestResponse] `json:"pull_requests"`
	Releases     *AggregateResponse[ReleaseResponse]     `json:"releases"`
	Commits      *AggregateResponse[CommitResponse]      `json:"commits"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

// toAccountResponse converts a domain Account to its JSON representation.
func toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		Key:        a.Key(),
		UserName:   a.UserName,
		ProfileURL: a.ProfileURL,
		AvatarURL:  a.AvatarURL,
		Endpoint:   a.Endpoint.Origin(),
		Enterprise: a.Endpoint.IsEnterprise(),
	}
}

// toRepositoryResponse converts a tracked repository to its JSON representation.
func toRepositoryResponse(repo model.RepositoryIdentity) RepositoryResponse {
	owner, _ := repo.Owner()
	name, _ := repo.Name()
	return RepositoryResponse{
		URL:         repo.URL(),
		Owner:       owner,
		Name:        name,
		DisplayName: repo.DisplayName(),
		Category:    repo.Category,
		Shows: ShowsJSON{
			Issues:       boolPtr(repo.Preference.ShowsIssues),
			PullRequests: boolPtr(repo.Preference.ShowsPullRequests),
			Releases:     boolPtr(repo.Preference.ShowsReleases),
			Commits:      boolPtr(repo.Preference.ShowsCommits),
		},
	}
}

// toIdentity parses a repository request into an identity. The identity is
// invalid when the URL is not a GitHub repository URL.
func (req RepositoryRequest) toIdentity() model.RepositoryIdentity {
	id := model.ParseRepositoryIdentity(req.URL)
	id.Category = req.Category

	orTrue := func(b *bool) bool { return b == nil || *b }
	shows := ShowsJSON{}
	if req.Shows != nil {
		shows = *req.Shows
	}
	id.Preference = model.RepositoryPreference{
		ShowsIssues:       orTrue(shows.Issues),
		ShowsPullRequests: orTrue(shows.PullRequests),
		ShowsReleases:     orTrue(shows.Releases),
		ShowsCommits:      orTrue(shows.Commits),
	}
	return id
}

func toActorResponse(a *model.Actor) *ActorResponse {
	if a == nil {
		return nil
	}
	return &ActorResponse{Login: a.Login, AvatarURL: a.AvatarURL, URL: a.URL}
}

func toLabelResponses(labels []model.Label) []LabelResponse {
	resp := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		resp = append(resp, LabelResponse{Name: l.Name, Color: l.Color, IsLight: l.IsLight})
	}
	return resp
}

// toIssueResponse converts a domain Issue to its JSON representation.
func toIssueResponse(i model.Issue) IssueResponse {
	var reason *string
	if i.StateReason != nil {
		s := string(*i.StateReason)
		reason = &s
	}

	return IssueResponse{
		Number:          i.Number,
		Title:           i.Title,
		URL:             i.URL,
		Author:          toActorResponse(i.Author),
		Labels:          toLabelResponses(i.Labels),
		Comments:        i.NumberOfComments,
		Participants:    i.NumberOfParticipants,
		IsAssigned:      i.IsAssigned,
		ViewerDidAuthor: i.ViewerDidAuthor,
		State:           string(i.State),
		StateReason:     reason,
		CreatedAt:       formatTime(i.CreatedAt),
		UpdatedAt:       formatTime(i.UpdatedAt),
		CreatedAgo:      i.CreatedAgo,
		UpdatedAgo:      i.UpdatedAgo,
	}
}

// toPullRequestResponse converts a domain PullRequest to its JSON representation.
func toPullRequestResponse(pr model.PullRequest) PullRequestResponse {
	return PullRequestResponse{
		Number:                  pr.Number,
		Title:                   pr.Title,
		URL:                     pr.URL,
		Author:                  toActorResponse(pr.Author),
		Labels:                  toLabelResponses(pr.Labels),
		Comments:                pr.NumberOfComments,
		Participants:            pr.NumberOfParticipants,
		IsAssigned:              pr.IsAssigned,
		ViewerDidAuthor:         pr.ViewerDidAuthor,
		IsReviewRequested:       pr.IsReviewRequested,
		State:                   string(pr.State),
		IsDraft:                 pr.IsDraft,
		Additions:               pr.Additions,
		Deletions:               pr.Deletions,
		ChangedFiles:            pr.ChangedFiles,
		ReviewComments:          pr.ReviewComments.Count,
		ReviewCommentsTruncated: pr.ReviewComments.HasRemainedItem,
		CreatedAt:               formatTime(pr.CreatedAt),
		UpdatedAt:               formatTime(pr.UpdatedAt),
		CreatedAgo:              pr.CreatedAgo,
		UpdatedAgo:              pr.UpdatedAgo,
	}
}

// toReleaseResponse converts a domain Release to its JSON representation.
func toReleaseResponse(r model.Release) ReleaseResponse {
	resp := ReleaseResponse{
		Title:        r.Title(),
		Name:         r.Name,
		Description:  renderMarkdown(r.Description),
		URL:          r.URL,
		Author:       toActorResponse(r.Author),
		IsDraft:      r.IsDraft,
		IsPrerelease: r.IsPrerelease,
		Assets:       r.NumberOfAssets,
		TagName:      r.TagName,
		CreatedAt:    formatTime(r.CreatedAt),
		UpdatedAt:    formatTime(r.UpdatedAt),
		PublishedAt:  formatTimePtr(r.PublishedAt),
		CreatedAgo:   r.CreatedAgo,
		UpdatedAgo:   r.UpdatedAgo,
	}
	if r.Tag != nil {
		oid, url := r.Tag.AbbreviatedOID, r.Tag.CommitURL
		resp.TagCommit = &oid
		resp.TagCommitURL = &url
	}
	return resp
}

// toCommitResponse converts a domain Commit to its JSON representation.
func toCommitResponse(c model.Commit) CommitResponse {
	return CommitResponse{
		AbbreviatedOID:  c.AbbreviatedOID,
		MessageHeadline: c.MessageHeadline,
		Message:         c.Message,
		URL:             c.URL,
		Additions:       c.Additions,
		Deletions:       c.Deletions,
		ChangedFiles:    c.ChangedFiles,
		Author:          c.Author,
		Committer:       c.Committer,
		AuthoredAt:      formatTime(c.AuthoredAt),
		CommittedAt:     formatTime(c.CommittedAt),
		PushedAt:        formatTimePtr(c.PushedAt),
		AuthoredAgo:     c.AuthoredAgo,
	}
}

// toAggregateResponse converts an aggregate, mapping each record with convert.
// A nil aggregate yields nil.
func toAggregateResponse[T, R any](agg *model.Aggregate[T], convert func(T) R) *AggregateResponse[R] {
	if agg == nil {
		return nil
	}

	results := make([]R, 0, agg.Len())
	for _, v := range agg.Results() {
		results = append(results, convert(v))
	}

	var total *int
	if n, ok := agg.TotalCount(); ok {
		total = &n
	}

	return &AggregateResponse[R]{
		RepositoryURL: agg.RepositoryURL(),
		FetchedAt:     formatTime(agg.FetchedAt()),
		FetchedAtText: agg.FormattedFetchedAt(),
		TotalCount:    total,
		HasMore:       agg.HasMore(),
		Results:       results,
	}
}
