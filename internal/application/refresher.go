package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

var (
	// ErrNotSignedIn is returned by a manual refresh when no account is signed in.
	ErrNotSignedIn = errors.New("no account signed in")
	// ErrRefresherStopped is returned by a manual refresh after Start returned.
	ErrRefresherStopped = errors.New("refresher stopped")
)

// refreshRequest represents a manual refresh trigger.
type refreshRequest struct {
	repoURL string
	done    chan error
}

// Refresher periodically fetches the content of every tracked repository of
// a scope and stores the results in the dashboard cache. Each repository is
// refetched on the interval of its activity tier; the configured interval is
// the scheduler tick.
type Refresher struct {
	provider    *InteractorProvider
	repoSvc     *RepositorySettingService
	cache       *DashboardCache
	scope       string
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
	refreshCh   chan refreshRequest
	stopped     chan struct{}
	now         func() time.Time

	mu            sync.Mutex
	schedules     map[string]repoSchedule
	scheduleEpoch uint64
}

// NewRefresher creates a new Refresher. concurrency bounds the number of
// repositories fetched in parallel.
func NewRefresher(
	provider *InteractorProvider,
	repoSvc *RepositorySettingService,
	cache *DashboardCache,
	scope string,
	interval time.Duration,
	concurrency int,
	logger *slog.Logger,
) *Refresher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Refresher{
		provider:    provider,
		repoSvc:     repoSvc,
		cache:       cache,
		scope:       scope,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger,
		refreshCh:   make(chan refreshRequest),
		stopped:     make(chan struct{}),
		now:         time.Now,
		schedules:   make(map[string]repoSchedule),
	}
}

// Start runs an immediate full refresh, then on every tick refreshes the
// repositories whose schedule is due. It also serves manual refresh requests.
// Start blocks until ctx is canceled and must be called at most once.
func (r *Refresher) Start(ctx context.Context) {
	defer close(r.stopped)

	r.refreshAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return
		case <-ticker.C:
			r.refreshDue(ctx)
		case req := <-r.refreshCh:
			req.done <- r.handleRefresh(ctx, req.repoURL)
		}
	}
}

// RefreshRepository triggers an out-of-cycle refresh of one tracked
// repository and blocks until it completes, ctx is canceled or the refresher
// stops.
func (r *Refresher) RefreshRepository(ctx context.Context, repoURL string) error {
	done := make(chan error, 1)
	req := refreshRequest{repoURL: repoURL, done: done}

	select {
	case r.refreshCh <- req:
	case <-r.stopped:
		return ErrRefresherStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshAll runs one full refresh cycle synchronously, ignoring schedules.
func (r *Refresher) RefreshAll(ctx context.Context) {
	r.refreshAll(ctx)
}

// RefreshDue runs one cycle over the repositories whose schedule is due.
func (r *Refresher) RefreshDue(ctx context.Context) {
	r.refreshDue(ctx)
}

// Schedule returns the refresh schedule of repoURL, if it was refreshed.
func (r *Refresher) Schedule(repoURL string) (ScheduleInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sched, ok := r.schedules[repoURL]
	if !ok {
		return ScheduleInfo{}, false
	}
	return ScheduleInfo{
		Tier:          sched.tier,
		NextRefreshAt: sched.nextRefreshAt,
		LastRefreshed: sched.lastRefreshed,
	}, true
}

func (r *Refresher) refreshAll(ctx context.Context) {
	r.runCycle(ctx, false)
}

func (r *Refresher) refreshDue(ctx context.Context) {
	r.runCycle(ctx, true)
}

// isDue reports whether repoURL should be refreshed at now. Schedules made
// before the last cache clear are discarded.
func (r *Refresher) isDue(repoURL string, epoch uint64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch > r.scheduleEpoch {
		clear(r.schedules)
		r.scheduleEpoch = epoch
	}
	sched, ok := r.schedules[repoURL]
	return !ok || !now.Before(sched.nextRefreshAt)
}

func (r *Refresher) retainSchedules(urls []string) {
	keep := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		keep[u] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for url := range r.schedules {
		if _, ok := keep[url]; !ok {
			delete(r.schedules, url)
		}
	}
}

func (r *Refresher) runCycle(ctx context.Context, onlyDue bool) {
	// Read the epoch before the interactors: a sign-in after this point
	// clears the cache and invalidates the writes of this cycle.
	epoch := r.cache.Epoch()
	interactors := r.provider.Get()
	if interactors == nil {
		r.logger.Debug("refresh skipped, no account signed in")
		return
	}

	start := time.Now()

	repos, err := r.repoSvc.ListRepositorySettings(ctx, r.scope)
	if err != nil {
		r.logger.Error("refresh cycle failed", "error", err)
		return
	}

	urls := make([]string, 0, len(repos))
	for _, repo := range repos {
		urls = append(urls, repo.URL())
	}
	r.cache.Retain(urls)
	r.retainSchedules(urls)

	now := r.now()
	due := repos
	if onlyDue {
		due = make([]model.RepositoryIdentity, 0, len(repos))
		for _, repo := range repos {
			if r.isDue(repo.URL(), epoch, now) {
				due = append(due, repo)
			}
		}
		if len(due) == 0 {
			return
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	failures := make(chan string, len(due))
	for _, repo := range due {
		g.Go(func() error {
			if err := r.refreshRepo(gctx, interactors, epoch, repo); err != nil {
				r.logger.Error("repository refresh failed", "repo", repo.URL(), "error", err)
				failures <- repo.URL()
			}
			// Per-repository failures must not cancel the siblings.
			return nil
		})
	}
	_ = g.Wait()
	close(failures)

	r.logger.Info("refresh cycle complete",
		"repos", len(due),
		"errors", len(failures),
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

func (r *Refresher) handleRefresh(ctx context.Context, repoURL string) error {
	epoch := r.cache.Epoch()
	interactors := r.provider.Get()
	if interactors == nil {
		return ErrNotSignedIn
	}

	repos, err := r.repoSvc.ListRepositorySettings(ctx, r.scope)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		if repo.URL() == repoURL {
			return r.refreshRepo(ctx, interactors, epoch, repo)
		}
	}

	return model.ErrInvalidRepositoryURL
}

// refreshRepo runs the retrievals enabled by repo's preference. Each content
// type is cached as soon as it arrives, unless the cache was cleared after
// epoch. Errors are joined and returned after all enabled retrievals ran.
func (r *Refresher) refreshRepo(ctx context.Context, in *Interactors, epoch uint64, repo model.RepositoryIdentity) error {
	var (
		errs   []error
		issues *model.Issues
		prs    *model.PullRequests
	)
	opts := model.QueryOptions{}
	committed := true

	if repo.Preference.ShowsIssues {
		if agg, err := in.Issues.Execute(ctx, repo, opts); err != nil {
			errs = append(errs, err)
		} else {
			issues = agg
			committed = r.cache.Commit(epoch, func() { r.cache.Issues.Put(agg) }) && committed
		}
	} else {
		r.cache.Issues.Remove(repo.URL())
	}

	if repo.Preference.ShowsPullRequests {
		if agg, err := in.PullRequests.Execute(ctx, repo, opts); err != nil {
			errs = append(errs, err)
		} else {
			prs = agg
			committed = r.cache.Commit(epoch, func() { r.cache.PullRequests.Put(agg) }) && committed
		}
	} else {
		r.cache.PullRequests.Remove(repo.URL())
	}

	if repo.Preference.ShowsReleases {
		if agg, err := in.Releases.Execute(ctx, repo, opts); err != nil {
			errs = append(errs, err)
		} else {
			committed = r.cache.Commit(epoch, func() { r.cache.Releases.Put(agg) }) && committed
		}
	} else {
		r.cache.Releases.Remove(repo.URL())
	}

	if repo.Preference.ShowsCommits {
		if agg, err := in.CommitHistory.Execute(ctx, repo, opts); err != nil {
			errs = append(errs, err)
		} else {
			committed = r.cache.Commit(epoch, func() { r.cache.CommitHistory.Put(agg) }) && committed
		}
	} else {
		r.cache.CommitHistory.Remove(repo.URL())
	}

	// A failed refresh leaves the schedule untouched.
	switch {
	case !committed:
		r.logger.Debug("discarded refresh results after cache clear", "repo", repo.URL())
	case len(errs) == 0:
		r.schedule(repo.URL(), epoch, freshestActivity(issues, prs))
	}

	return errors.Join(errs...)
}

// schedule records when repoURL was refreshed and when it is next due.
func (r *Refresher) schedule(repoURL string, epoch uint64, lastActivity time.Time) {
	now := r.now()
	tier := classifyActivity(lastActivity, now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch < r.scheduleEpoch {
		return
	}
	if epoch > r.scheduleEpoch {
		clear(r.schedules)
		r.scheduleEpoch = epoch
	}
	r.schedules[repoURL] = repoSchedule{
		tier:          tier,
		nextRefreshAt: now.Add(tierInterval(tier)),
		lastRefreshed: now,
	}
}
