package application

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// MapIssues converts a raw issue connection into display records, preserving
// server order. now anchors the relative date strings.
func MapIssues(conn *driven.IssueConnection, now time.Time) []model.Issue {
	issues := make([]model.Issue, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		n := edge.Node

		issue := model.Issue{
			Number:               n.Number,
			Title:                n.Title,
			URL:                  n.URL,
			Author:               mapActor(n.Author),
			Labels:               mapLabels(n.Labels),
			NumberOfComments:     n.Comments.TotalCount,
			NumberOfParticipants: n.Participants.TotalCount,
			IsAssigned:           anyAssigneeIsViewer(n.Assignees),
			ViewerDidAuthor:      n.ViewerDidAuthor,
			State:                model.IssueState(n.State),
			CreatedAt:            n.CreatedAt,
			UpdatedAt:            n.UpdatedAt,
			CreatedAgo:           relative(n.CreatedAt, now),
			UpdatedAgo:           relative(n.UpdatedAt, now),
		}

		if issue.IsClosed() && n.StateReason != nil {
			reason := model.IssueStateReason(*n.StateReason)
			issue.StateReason = &reason
		}

		issues = append(issues, issue)
	}
	return issues
}

// MapPullRequests converts a raw pull request connection into display records.
func MapPullRequests(conn *driven.PullRequestConnection, now time.Time) []model.PullRequest {
	prs := make([]model.PullRequest, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		n := edge.Node

		prs = append(prs, model.PullRequest{
			Number:               n.Number,
			Title:                n.Title,
			URL:                  n.URL,
			Author:               mapActor(n.Author),
			Labels:               mapLabels(n.Labels),
			NumberOfComments:     n.Comments.TotalCount,
			NumberOfParticipants: n.Participants.TotalCount,
			IsAssigned:           anyAssigneeIsViewer(n.Assignees),
			ViewerDidAuthor:      n.ViewerDidAuthor,
			State:                model.PullRequestState(n.State),
			Additions:            n.Additions,
			Deletions:            n.Deletions,
			ChangedFiles:         n.ChangedFiles,
			IsDraft:              n.IsDraft,
			ReviewComments:       countReviewComments(n.Reviews),
			IsReviewRequested:    anyReviewRequestIsViewer(n.ReviewRequests),
			CreatedAt:            n.CreatedAt,
			UpdatedAt:            n.UpdatedAt,
			CreatedAgo:           relative(n.CreatedAt, now),
			UpdatedAgo:           relative(n.UpdatedAt, now),
		})
	}
	return prs
}

// MapReleases converts a raw release connection into display records.
func MapReleases(conn *driven.ReleaseConnection, now time.Time) []model.Release {
	releases := make([]model.Release, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		n := edge.Node

		releases = append(releases, model.Release{
			Name:           n.Name,
			Description:    n.Description,
			URL:            n.URL,
			Author:         mapActor(n.Author),
			IsDraft:        n.IsDraft,
			IsPrerelease:   n.IsPrerelease,
			NumberOfAssets: n.ReleaseAssets.TotalCount,
			TagName:        n.TagName,
			Tag:            mapTag(n.Tag),
			CreatedAt:      n.CreatedAt,
			UpdatedAt:      n.UpdatedAt,
			PublishedAt:    n.PublishedAt,
			CreatedAgo:     relative(n.CreatedAt, now),
			UpdatedAgo:     relative(n.UpdatedAt, now),
		})
	}
	return releases
}

// MapCommits converts a raw commit history connection into display records.
func MapCommits(conn *driven.CommitHistoryConnection, now time.Time) []model.Commit {
	commits := make([]model.Commit, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		n := edge.Node

		commits = append(commits, model.Commit{
			Message:         n.Message,
			MessageHeadline: n.MessageHeadline,
			URL:             n.URL,
			AbbreviatedOID:  n.AbbreviatedOid,
			Additions:       n.Additions,
			Deletions:       n.Deletions,
			ChangedFiles:    n.ChangedFiles,
			Author:          gitActorLogin(n.Author),
			Committer:       gitActorLogin(n.Committer),
			AuthoredAt:      n.AuthoredDate,
			CommittedAt:     n.CommittedDate,
			PushedAt:        n.PushedDate,
			AuthoredAgo:     relative(n.AuthoredDate, now),
		})
	}
	return commits
}

// countReviewComments sums the inline comments of every fetched review. A
// review with a non-empty body counts as one more comment. The result is a
// lower bound when not every review was fetched.
func countReviewComments(reviews driven.ReviewConnection) model.ReviewCommentCount {
	count := 0
	for _, r := range reviews.Nodes {
		count += r.Comments.TotalCount
		if r.Body != "" {
			count++
		}
	}

	return model.ReviewCommentCount{
		Count:           count,
		HasRemainedItem: reviews.TotalCount != len(reviews.Nodes),
	}
}

func anyAssigneeIsViewer(assignees driven.AssigneeConnection) bool {
	for _, a := range assignees.Nodes {
		if a.IsViewer {
			return true
		}
	}
	return false
}

func anyReviewRequestIsViewer(requests driven.ReviewRequestConnection) bool {
	for _, r := range requests.Nodes {
		if r.RequestedReviewer != nil && r.RequestedReviewer.User.IsViewer {
			return true
		}
	}
	return false
}

func mapLabels(conn driven.LabelConnection) []model.Label {
	labels := make([]model.Label, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		labels = append(labels, model.NewLabel(e.Node.Name, e.Node.Color))
	}
	return labels
}

func mapActor(a *driven.ActorNode) *model.Actor {
	if a == nil {
		return nil
	}
	return &model.Actor{Login: a.Login, AvatarURL: a.AvatarURL, URL: a.URL}
}

// mapTag builds a tag reference only when both the tag name and its target
// resolved.
func mapTag(tag *driven.ReleaseTag) *model.TagReference {
	if tag == nil || tag.Name == nil || tag.Target == nil {
		return nil
	}
	return &model.TagReference{
		AbbreviatedOID: tag.Target.AbbreviatedOid,
		CommitURL:      tag.Target.CommitURL,
	}
}

func gitActorLogin(a *driven.GitActorNode) *string {
	if a == nil || a.User == nil {
		return nil
	}
	login := a.User.Login
	return &login
}

func relative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
