package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockAccessor struct {
	mu    sync.Mutex
	calls map[string]int
	opts  []model.QueryOptions

	viewer       func(ctx context.Context, endpoint model.GitHubEndpoint, token string) (model.Viewer, error)
	issues       func(ctx context.Context, repo model.RepositoryIdentity) (*driven.IssueConnection, error)
	pullRequests func(ctx context.Context, repo model.RepositoryIdentity) (*driven.PullRequestConnection, error)
	releases     func(ctx context.Context, repo model.RepositoryIdentity) (*driven.ReleaseConnection, error)
	commits      func(ctx context.Context, repo model.RepositoryIdentity) (*driven.CommitHistoryConnection, error)
}

var _ driven.RemoteDataAccessor = (*mockAccessor)(nil)

func (m *mockAccessor) record(op string, opts model.QueryOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	m.opts = append(m.opts, opts)
}

func (m *mockAccessor) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockAccessor) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockAccessor) lastOptions() model.QueryOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts[len(m.opts)-1]
}

func (m *mockAccessor) GetViewer(ctx context.Context, endpoint model.GitHubEndpoint, token string) (model.Viewer, error) {
	m.record("viewer", model.QueryOptions{})
	return m.viewer(ctx, endpoint, token)
}

func (m *mockAccessor) GetIssues(ctx context.Context, _ string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.IssueConnection, error) {
	m.record("issues", opts)
	if m.issues == nil {
		return &driven.IssueConnection{}, nil
	}
	return m.issues(ctx, repo)
}

func (m *mockAccessor) GetPullRequests(ctx context.Context, _ string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.PullRequestConnection, error) {
	m.record("pull requests", opts)
	if m.pullRequests == nil {
		return &driven.PullRequestConnection{}, nil
	}
	return m.pullRequests(ctx, repo)
}

func (m *mockAccessor) GetReleases(ctx context.Context, _ string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.ReleaseConnection, error) {
	m.record("releases", opts)
	if m.releases == nil {
		return &driven.ReleaseConnection{}, nil
	}
	return m.releases(ctx, repo)
}

func (m *mockAccessor) GetCommits(ctx context.Context, _ string, repo model.RepositoryIdentity, opts model.QueryOptions) (*driven.CommitHistoryConnection, error) {
	m.record("commits", opts)
	if m.commits == nil {
		return &driven.CommitHistoryConnection{}, nil
	}
	return m.commits(ctx, repo)
}

// mockSettingsStore keeps every store in memory, keyed by scope.
type mockSettingsStore struct {
	mu       sync.Mutex
	accounts map[string]model.Account
	repos    map[string][]model.RepositorySetting
	apps     []model.ApplicationSetting
	writes   int
}

var (
	_ driven.AccountStore            = (*mockSettingsStore)(nil)
	_ driven.RepositorySettingStore  = (*mockSettingsStore)(nil)
	_ driven.ApplicationSettingStore = (*mockSettingsStore)(nil)
)

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{
		accounts: make(map[string]model.Account),
		repos:    make(map[string][]model.RepositorySetting),
	}
}

func (m *mockSettingsStore) GetAccount(_ context.Context, scope string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[scope]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *mockSettingsStore) SetAccount(_ context.Context, scope string, account model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[scope] = account
	m.writes++
	return nil
}

func (m *mockSettingsStore) DeleteSettings(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, hasAccount := m.accounts[scope]
	_, hasRepos := m.repos[scope]
	if !hasAccount && !hasRepos {
		return driven.ErrSettingsNotFound
	}
	delete(m.accounts, scope)
	delete(m.repos, scope)
	return nil
}

func (m *mockSettingsStore) ListRepositorySettings(_ context.Context, scope string) ([]model.RepositorySetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RepositorySetting, len(m.repos[scope]))
	copy(out, m.repos[scope])
	return out, nil
}

func (m *mockSettingsStore) SetRepositorySettings(_ context.Context, scope string, settings []model.RepositorySetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]model.RepositorySetting, len(settings))
	copy(stored, settings)
	m.repos[scope] = stored
	m.writes++
	return nil
}

func (m *mockSettingsStore) ListApplicationSettings(_ context.Context) ([]model.ApplicationSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ApplicationSetting, len(m.apps))
	copy(out, m.apps)
	return out, nil
}

func (m *mockSettingsStore) SetApplicationSettings(_ context.Context, settings []model.ApplicationSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = make([]model.ApplicationSetting, len(settings))
	copy(m.apps, settings)
	m.writes++
	return nil
}

func (m *mockSettingsStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
