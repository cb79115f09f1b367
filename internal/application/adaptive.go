package application

import (
	"time"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// ActivityTier represents the refresh frequency classification for a
// repository based on how recently its issues and pull requests changed.
type ActivityTier int

const (
	// TierHot indicates activity within the last hour. Refreshes every 2 minutes.
	TierHot ActivityTier = iota
	// TierActive indicates activity within the last day. Refreshes every 5 minutes.
	TierActive
	// TierWarm indicates activity within the last 7 days. Refreshes every 15 minutes.
	TierWarm
	// TierStale indicates no activity for 7+ days. Refreshes every 30 minutes.
	TierStale
)

// Refresh intervals per activity tier.
const (
	intervalHot    = 2 * time.Minute
	intervalActive = 5 * time.Minute
	intervalWarm   = 15 * time.Minute
	intervalStale  = 30 * time.Minute
)

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

// tierInterval returns the refresh interval for the given activity tier.
func tierInterval(tier ActivityTier) time.Duration {
	switch tier {
	case TierHot:
		return intervalHot
	case TierActive:
		return intervalActive
	case TierWarm:
		return intervalWarm
	case TierStale:
		return intervalStale
	default:
		return intervalActive
	}
}

// classifyActivity determines the activity tier from the time elapsed between
// lastActivity and now. A zero-value time is treated as TierStale.
func classifyActivity(lastActivity, now time.Time) ActivityTier {
	if lastActivity.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(lastActivity)

	switch {
	case elapsed < 1*time.Hour:
		return TierHot
	case elapsed < 24*time.Hour:
		return TierActive
	case elapsed < 7*24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}

// repoSchedule tracks per-repository adaptive refresh state.
type repoSchedule struct {
	tier          ActivityTier
	nextRefreshAt time.Time
	lastRefreshed time.Time
}

// ScheduleInfo is an exported view of a repository's refresh schedule.
type ScheduleInfo struct {
	Tier          ActivityTier
	NextRefreshAt time.Time
	LastRefreshed time.Time
}

// freshestActivity finds the most recent UpdatedAt across the fetched issues
// and pull requests. Either aggregate may be nil when its section is hidden
// or its fetch failed; with nothing to inspect the zero time is returned.
func freshestActivity(issues *model.Issues, prs *model.PullRequests) time.Time {
	var newest time.Time
	if issues != nil {
		for _, issue := range issues.Results() {
			if issue.UpdatedAt.After(newest) {
				newest = issue.UpdatedAt
			}
		}
	}
	if prs != nil {
		for _, pr := range prs.Results() {
			if pr.UpdatedAt.After(newest) {
				newest = pr.UpdatedAt
			}
		}
	}
	return newest
}
