package driven

import "time"

// The types in this file mirror the GitHub GraphQL connection -> edges -> node
// shape returned for each content type. The graphql struct tags carry the
// nested selection arguments; field names map to the schema in lowerCamelCase.

// ActorNode is the author of an issue, pull request or release. It is nil
// when the account was deleted.
type ActorNode struct {
	Login     string
	AvatarURL string
	URL       string
}

// TotalCountConnection is a connection selected only for its total.
type TotalCountConnection struct {
	TotalCount int
}

// LabelNode is a single label.
type LabelNode struct {
	Name  string
	Color string
}

// LabelEdge wraps a label node.
type LabelEdge struct {
	Node LabelNode
}

// LabelConnection is the sampled label list of an issue or pull request.
type LabelConnection struct {
	Edges []LabelEdge
}

// AssigneeNode carries only whether the assignee is the viewer.
type AssigneeNode struct {
	IsViewer bool
}

// AssigneeConnection is the sampled assignee list.
type AssigneeConnection struct {
	Nodes []AssigneeNode
}

// IssueNode is a single issue.
type IssueNode struct {
	Number          int
	Title           string
	URL             string
	State           string
	StateReason     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ViewerDidAuthor bool
	Author          *ActorNode
	Labels          LabelConnection      `graphql:"labels(first: 10)"`
	Comments        TotalCountConnection `graphql:"comments"`
	Participants    TotalCountConnection `graphql:"participants"`
	Assignees       AssigneeConnection   `graphql:"assignees(first: 5)"`
}

// IssueEdge wraps an issue node.
type IssueEdge struct {
	Node IssueNode
}

// IssueConnection is the raw issues payload of a repository.
type IssueConnection struct {
	TotalCount int
	Edges      []IssueEdge
}

// ReviewNode is a single pull request review.
type ReviewNode struct {
	Body     string
	Comments TotalCountConnection
}

// ReviewConnection is the sampled review list of a pull request.
type ReviewConnection struct {
	TotalCount int
	Nodes      []ReviewNode
}

// ReviewerUser is the User branch of a requested reviewer.
type ReviewerUser struct {
	IsViewer bool
}

// RequestedReviewer is a user or team whose review was requested. Only the
// User branch is selected; teams decode to a zero ReviewerUser.
type RequestedReviewer struct {
	User ReviewerUser `graphql:"... on User"`
}

// ReviewRequestNode is a single review request.
type ReviewRequestNode struct {
	RequestedReviewer *RequestedReviewer
}

// ReviewRequestConnection is the sampled review request list.
type ReviewRequestConnection struct {
	Nodes []ReviewRequestNode
}

// PullRequestNode is a single pull request.
type PullRequestNode struct {
	Number          int
	Title           string
	URL             string
	State           string
	IsDraft         bool
	Additions       int
	Deletions       int
	ChangedFiles    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ViewerDidAuthor bool
	Author          *ActorNode
	Labels          LabelConnection         `graphql:"labels(first: 10)"`
	Comments        TotalCountConnection    `graphql:"comments"`
	Participants    TotalCountConnection    `graphql:"participants"`
	Assignees       AssigneeConnection      `graphql:"assignees(first: 5)"`
	Reviews         ReviewConnection        `graphql:"reviews(first: 30)"`
	ReviewRequests  ReviewRequestConnection `graphql:"reviewRequests(first: 5)"`
}

// PullRequestEdge wraps a pull request node.
type PullRequestEdge struct {
	Node PullRequestNode
}

// PullRequestConnection is the raw pull requests payload of a repository.
type PullRequestConnection struct {
	TotalCount int
	Edges      []PullRequestEdge
}

// TagTarget is the git object a tag points at.
type TagTarget struct {
	AbbreviatedOid string
	CommitURL      string
}

// ReleaseTag is the ref a release is attached to.
type ReleaseTag struct {
	Name   *string
	Target *TagTarget
}

// ReleaseNode is a single release.
type ReleaseNode struct {
	Name          *string
	Description   *string
	URL           string
	IsDraft       bool
	IsPrerelease  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PublishedAt   *time.Time
	TagName       *string
	Tag           *ReleaseTag
	Author        *ActorNode
	ReleaseAssets TotalCountConnection `graphql:"releaseAssets"`
}

// ReleaseEdge wraps a release node.
type ReleaseEdge struct {
	Node ReleaseNode
}

// ReleaseConnection is the raw releases payload of a repository.
type ReleaseConnection struct {
	TotalCount int
	Edges      []ReleaseEdge
}

// CommitUser is the GitHub user linked to a git identity.
type CommitUser struct {
	Login string
}

// GitActorNode is a git author or committer identity.
type GitActorNode struct {
	Name *string
	User *CommitUser
}

// CommitNode is a single commit.
type CommitNode struct {
	Message         string
	MessageHeadline string
	URL             string
	AbbreviatedOid  string
	Additions       int
	Deletions       int
	ChangedFiles    int
	AuthoredDate    time.Time
	CommittedDate   time.Time
	PushedDate      *time.Time
	Author          *GitActorNode
	Committer       *GitActorNode
}

// CommitEdge wraps a commit node.
type CommitEdge struct {
	Node CommitNode
}

// CommitHistoryConnection is the raw default-branch history payload. The
// query selects no total count.
type CommitHistoryConnection struct {
	Edges []CommitEdge
}
