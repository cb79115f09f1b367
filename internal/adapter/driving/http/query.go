package httphandler

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// maxCount caps the page size a client may request.
const maxCount = 100

type contentKind int

const (
	kindIssues contentKind = iota
	kindPullRequests
	kindReleases
	kindCommits
)

// sortFields lists the orderings each content kind accepts.
var sortFields = map[contentKind][]model.SortField{
	kindIssues:       {model.SortFieldCreatedAt, model.SortFieldUpdatedAt, model.SortFieldComments},
	kindPullRequests: {model.SortFieldCreatedAt, model.SortFieldUpdatedAt, model.SortFieldComments},
	kindReleases:     {model.SortFieldCreatedAt, model.SortFieldName},
}

// parseQueryOptions reads count, sort, direction and state from q. Omitted
// parameters stay unset so the use case defaults apply. Values are
// case-insensitive; state is a comma-separated list.
func parseQueryOptions(q url.Values, kind contentKind) (model.QueryOptions, error) {
	var opts model.QueryOptions

	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxCount {
			return opts, fmt.Errorf("count must be an integer between 1 and %d", maxCount)
		}
		opts.Count = n
	}

	if v := q.Get("sort"); v != "" {
		field := model.SortField(strings.ToUpper(v))
		if !slices.Contains(sortFields[kind], field) {
			return opts, fmt.Errorf("unsupported sort %q", v)
		}
		opts.SortField = field
	}

	if v := q.Get("direction"); v != "" {
		if kind == kindCommits {
			return opts, errors.New("commits cannot be ordered")
		}
		dir := model.SortDirection(strings.ToUpper(v))
		if dir != model.SortAscending && dir != model.SortDescending {
			return opts, errors.New("direction must be asc or desc")
		}
		opts.SortDirection = dir
	}

	if v := q.Get("state"); v != "" {
		for _, s := range strings.Split(strings.ToUpper(v), ",") {
			s = strings.TrimSpace(s)
			switch {
			case kind == kindIssues && (s == string(model.IssueStateOpen) || s == string(model.IssueStateClosed)):
				opts.IssueStates = append(opts.IssueStates, model.IssueState(s))
			case kind == kindPullRequests && (s == string(model.PullRequestStateOpen) ||
				s == string(model.PullRequestStateClosed) || s == string(model.PullRequestStateMerged)):
				opts.PullRequestStates = append(opts.PullRequestStates, model.PullRequestState(s))
			default:
				return opts, fmt.Errorf("unsupported state %q", s)
			}
		}
	}

	return opts, nil
}
