package application

import (
	"slices"
	"sync"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// AggregateCache holds the latest aggregate per repository URL for one content
// type. A Put for a URL replaces the previous aggregate; nothing is merged.
type AggregateCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]*model.Aggregate[T]
}

// NewAggregateCache creates an empty cache.
func NewAggregateCache[T any]() *AggregateCache[T] {
	return &AggregateCache[T]{entries: make(map[string]*model.Aggregate[T])}
}

// Get returns the aggregate stored for url.
func (c *AggregateCache[T]) Get(url string) (*model.Aggregate[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	agg, ok := c.entries[url]
	return agg, ok
}

// Put stores agg under its repository URL, replacing any earlier aggregate.
func (c *AggregateCache[T]) Put(agg *model.Aggregate[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[agg.RepositoryURL()] = agg
}

// Remove drops the aggregate stored for url.
func (c *AggregateCache[T]) Remove(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

// Retain drops every entry whose URL is not in urls.
func (c *AggregateCache[T]) Retain(urls []string) {
	keep := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		keep[u] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for url := range c.entries {
		if _, ok := keep[url]; !ok {
			delete(c.entries, url)
		}
	}
}

// Keys returns the cached URLs in sorted order.
func (c *AggregateCache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for url := range c.entries {
		keys = append(keys, url)
	}
	slices.Sort(keys)
	return keys
}

// Clear empties the cache.
func (c *AggregateCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// DashboardCache bundles one AggregateCache per content type. Clear starts a
// new epoch; writes committed against an older epoch are discarded.
type DashboardCache struct {
	mu    sync.RWMutex
	epoch uint64

	Issues        *AggregateCache[model.Issue]
	PullRequests  *AggregateCache[model.PullRequest]
	Releases      *AggregateCache[model.Release]
	CommitHistory *AggregateCache[model.Commit]
}

// NewDashboardCache creates four empty caches.
func NewDashboardCache() *DashboardCache {
	return &DashboardCache{
		Issues:        NewAggregateCache[model.Issue](),
		PullRequests:  NewAggregateCache[model.PullRequest](),
		Releases:      NewAggregateCache[model.Release](),
		CommitHistory: NewAggregateCache[model.Commit](),
	}
}

// Retain drops entries of repositories not in urls from every cache.
func (d *DashboardCache) Retain(urls []string) {
	d.Issues.Retain(urls)
	d.PullRequests.Retain(urls)
	d.Releases.Retain(urls)
	d.CommitHistory.Retain(urls)
}

// Remove drops url from every cache.
func (d *DashboardCache) Remove(url string) {
	d.Issues.Remove(url)
	d.PullRequests.Remove(url)
	d.Releases.Remove(url)
	d.CommitHistory.Remove(url)
}

// Epoch returns the current cache epoch.
func (d *DashboardCache) Epoch() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.epoch
}

// Commit runs write only if no Clear happened since epoch was read. It
// reports whether write ran.
func (d *DashboardCache) Commit(epoch uint64, write func()) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.epoch != epoch {
		return false
	}
	write()
	return true
}

// Clear empties every cache and starts a new epoch.
func (d *DashboardCache) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	d.Issues.Clear()
	d.PullRequests.Clear()
	d.Releases.Clear()
	d.CommitHistory.Clear()
}
