package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitdash/internal/application"
	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

const testScope = "3b241101-e2bb-4255-8caf-4136c566a962"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddRepositorySetting_Idempotent(t *testing.T) {
	store := newMockSettingsStore()
	svc := application.NewRepositorySettingService(store, discardLogger())
	ctx := context.Background()

	added, err := svc.AddRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity("https://github.com/apple/swift"))
	require.NoError(t, err)
	assert.True(t, added)

	writes := store.writeCount()
	added, err = svc.AddRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity("https://github.com/apple/swift/"))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, writes, store.writeCount(), "duplicate add must not write")

	repos, err := svc.ListRepositorySettings(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "https://github.com/apple/swift", repos[0].URL())
}

func TestAddRepositorySetting_PreservesOrder(t *testing.T) {
	svc := application.NewRepositorySettingService(newMockSettingsStore(), discardLogger())
	ctx := context.Background()

	for _, u := range []string{"https://github.com/c/c", "https://github.com/a/a", "https://github.com/b/b"} {
		_, err := svc.AddRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity(u))
		require.NoError(t, err)
	}

	repos, err := svc.ListRepositorySettings(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "c/c", repos[0].DisplayName())
	assert.Equal(t, "a/a", repos[1].DisplayName())
	assert.Equal(t, "b/b", repos[2].DisplayName())
}

func TestAddRepositorySetting_RejectsInvalid(t *testing.T) {
	store := newMockSettingsStore()
	svc := application.NewRepositorySettingService(store, discardLogger())

	added, err := svc.AddRepositorySetting(context.Background(), testScope, model.ParseRepositoryIdentity("apple/swift"))
	require.ErrorIs(t, err, model.ErrInvalidRepositoryURL)
	assert.False(t, added)
	assert.Equal(t, 0, store.writeCount())
}

func TestUpdateRepositorySetting(t *testing.T) {
	svc := application.NewRepositorySettingService(newMockSettingsStore(), discardLogger())
	ctx := context.Background()

	id := model.ParseRepositoryIdentity("https://github.com/apple/swift")
	_, err := svc.AddRepositorySetting(ctx, testScope, id)
	require.NoError(t, err)

	category := "lang"
	id.Category = &category
	id.Preference.ShowsCommits = false

	updated, err := svc.UpdateRepositorySetting(ctx, testScope, id)
	require.NoError(t, err)
	assert.True(t, updated)

	repos, err := svc.ListRepositorySettings(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.False(t, repos[0].Preference.ShowsCommits)
	require.NotNil(t, repos[0].Category)
	assert.Equal(t, "lang", *repos[0].Category)

	updated, err = svc.UpdateRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity("https://github.com/apple/llvm"))
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestDeleteRepositorySetting(t *testing.T) {
	svc := application.NewRepositorySettingService(newMockSettingsStore(), discardLogger())
	ctx := context.Background()

	for _, u := range []string{"https://github.com/a/a", "https://github.com/b/b"} {
		_, err := svc.AddRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity(u))
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity("https://github.com/a/a/")))

	repos, err := svc.ListRepositorySettings(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "b/b", repos[0].DisplayName())

	// Deleting an untracked repository is a no-op.
	require.NoError(t, svc.DeleteRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity("https://github.com/z/z")))
	repos, err = svc.ListRepositorySettings(ctx, testScope)
	require.NoError(t, err)
	assert.Len(t, repos, 1)
}

func TestSetRepositorySettings_Overwrites(t *testing.T) {
	svc := application.NewRepositorySettingService(newMockSettingsStore(), discardLogger())
	ctx := context.Background()

	_, err := svc.AddRepositorySetting(ctx, testScope, model.ParseRepositoryIdentity("https://github.com/a/a"))
	require.NoError(t, err)

	require.NoError(t, svc.SetRepositorySettings(ctx, testScope, []model.RepositoryIdentity{
		model.ParseRepositoryIdentity("https://github.com/x/x"),
	}))

	repos, err := svc.ListRepositorySettings(ctx, testScope)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "x/x", repos[0].DisplayName())
}

func TestRepositorySettings_ScopesAreIsolated(t *testing.T) {
	svc := application.NewRepositorySettingService(newMockSettingsStore(), discardLogger())
	ctx := context.Background()

	_, err := svc.AddRepositorySetting(ctx, "scope-a", model.ParseRepositoryIdentity("https://github.com/a/a"))
	require.NoError(t, err)

	repos, err := svc.ListRepositorySettings(ctx, "scope-b")
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestSignIn(t *testing.T) {
	store := newMockSettingsStore()
	accessor := &mockAccessor{
		viewer: func(_ context.Context, endpoint model.GitHubEndpoint, token string) (model.Viewer, error) {
			assert.Equal(t, "https://ghe.example.com/api/graphql", endpoint.GraphQLURL())
			assert.Equal(t, "ghp_token", token)
			return model.Viewer{Login: "octocat", URL: "https://ghe.example.com/octocat"}, nil
		},
	}
	svc := application.NewAccountSettingService(store, accessor, discardLogger())
	ctx := context.Background()

	account, err := svc.SignIn(ctx, testScope, "https://ghe.example.com", "ghp_token")
	require.NoError(t, err)
	assert.Equal(t, "octocat.ghe.example.com", account.Key())

	stored, err := svc.GetAccount(ctx, testScope)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "octocat", stored.UserName)
	assert.Equal(t, "ghp_token", stored.Token)
}

func TestSignIn_Failures(t *testing.T) {
	accessor := &mockAccessor{
		viewer: func(_ context.Context, _ model.GitHubEndpoint, _ string) (model.Viewer, error) {
			return model.Viewer{}, &driven.AccessError{Op: "viewer", Message: "Bad credentials"}
		},
	}
	store := newMockSettingsStore()
	svc := application.NewAccountSettingService(store, accessor, discardLogger())
	ctx := context.Background()

	_, err := svc.SignIn(ctx, testScope, "", "")
	require.ErrorIs(t, err, application.ErrTokenNotSet)

	_, err = svc.SignIn(ctx, testScope, "ftp://nope", "ghp_token")
	require.ErrorIs(t, err, application.ErrInvalidEndpoint)

	_, err = svc.SignIn(ctx, testScope, "", "ghp_token")
	var accessErr *driven.AccessError
	require.True(t, errors.As(err, &accessErr))

	account, err := svc.GetAccount(ctx, testScope)
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.Equal(t, 0, store.writeCount())
}

func TestDeleteSetting_SwallowsMissingStore(t *testing.T) {
	store := newMockSettingsStore()
	svc := application.NewAccountSettingService(store, &mockAccessor{}, discardLogger())
	ctx := context.Background()

	require.NoError(t, svc.DeleteSetting(ctx, "never-created"))

	require.NoError(t, svc.SetAccount(ctx, testScope, model.Account{UserName: "octocat"}))
	require.NoError(t, svc.DeleteSetting(ctx, testScope))

	account, err := svc.GetAccount(ctx, testScope)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestApplicationSettingService(t *testing.T) {
	svc := application.NewApplicationSettingService(newMockSettingsStore())
	ctx := context.Background()

	work := model.NewApplicationSetting("work")
	home := model.NewApplicationSetting("home")

	require.NoError(t, svc.AddSetting(ctx, work))
	require.NoError(t, svc.AddSetting(ctx, home))

	has, err := svc.HasSetting(ctx, work)
	require.NoError(t, err)
	assert.True(t, has)

	found, err := svc.FindByLabel(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, home.ID, found.ID)

	missing, err := svc.FindByLabel(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, svc.RemoveSetting(ctx, work))

	has, err = svc.HasSetting(ctx, work)
	require.NoError(t, err)
	assert.False(t, has)

	settings, err := svc.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "home", settings[0].Label)
}

func TestApplicationSettingService_AddDoesNotDeduplicate(t *testing.T) {
	svc := application.NewApplicationSettingService(newMockSettingsStore())
	ctx := context.Background()

	s := model.NewApplicationSetting("work")
	require.NoError(t, svc.AddSetting(ctx, s))
	require.NoError(t, svc.AddSetting(ctx, s))

	settings, err := svc.ListSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 2)

	require.NoError(t, svc.RemoveSetting(ctx, s))
	settings, err = svc.ListSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings)
}
