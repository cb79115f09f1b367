package model

// IssueState is the state of an issue as reported by GitHub.
type IssueState string

const (
	IssueStateOpen   IssueState = "OPEN"
	IssueStateClosed IssueState = "CLOSED"
)

// IssueStateReason explains why an issue was closed.
type IssueStateReason string

const (
	IssueStateReasonCompleted  IssueStateReason = "COMPLETED"
	IssueStateReasonNotPlanned IssueStateReason = "NOT_PLANNED"
	IssueStateReasonReopened   IssueStateReason = "REOPENED"
	IssueStateReasonDuplicate  IssueStateReason = "DUPLICATE"
)

// PullRequestState is the state of a pull request as reported by GitHub.
type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "OPEN"
	PullRequestStateClosed PullRequestState = "CLOSED"
	PullRequestStateMerged PullRequestState = "MERGED"
)

// SortField selects the ordering of a content query.
type SortField string

const (
	SortFieldCreatedAt SortField = "CREATED_AT"
	SortFieldUpdatedAt SortField = "UPDATED_AT"
	SortFieldComments  SortField = "COMMENTS" // Issues and pull requests only.
	SortFieldName      SortField = "NAME"     // Releases only.
)

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// QueryOptions tunes a content query. Zero values mean "unset" and are
// replaced by the per-content defaults before the request is made.
type QueryOptions struct {
	Count             int
	SortField         SortField
	SortDirection     SortDirection
	IssueStates       []IssueState
	PullRequestStates []PullRequestState
}

// WithDefaults returns a copy of o whose unset fields are taken from defaults.
// State filters are never defaulted; an empty filter matches every state.
func (o QueryOptions) WithDefaults(defaults QueryOptions) QueryOptions {
	if o.Count <= 0 {
		o.Count = defaults.Count
	}
	if o.SortField == "" {
		o.SortField = defaults.SortField
	}
	if o.SortDirection == "" {
		o.SortDirection = defaults.SortDirection
	}
	return o
}
