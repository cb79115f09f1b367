package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// ErrInvalidEndpoint is returned by SignIn for a malformed GitHub URL.
var ErrInvalidEndpoint = errors.New("invalid GitHub endpoint URL")

// AccountSettingService manages the account stored per settings scope.
type AccountSettingService struct {
	store    driven.AccountStore
	accessor driven.RemoteDataAccessor
	logger   *slog.Logger
}

// NewAccountSettingService creates a new AccountSettingService.
func NewAccountSettingService(store driven.AccountStore, accessor driven.RemoteDataAccessor, logger *slog.Logger) *AccountSettingService {
	return &AccountSettingService{store: store, accessor: accessor, logger: logger}
}

// GetAccount returns the scope's account, or nil when none is stored.
func (s *AccountSettingService) GetAccount(ctx context.Context, scope string) (*model.Account, error) {
	account, err := s.store.GetAccount(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("get account for scope %s: %w", scope, err)
	}
	return account, nil
}

// SetAccount stores account for scope, replacing any previous one.
func (s *AccountSettingService) SetAccount(ctx context.Context, scope string, account model.Account) error {
	if err := s.store.SetAccount(ctx, scope, account); err != nil {
		return fmt.Errorf("set account for scope %s: %w", scope, err)
	}
	return nil
}

// SignIn resolves the viewer behind token on the endpoint derived from
// endpointURL, stores the resulting account for scope and returns it.
func (s *AccountSettingService) SignIn(ctx context.Context, scope, endpointURL, token string) (model.Account, error) {
	if token == "" {
		return model.Account{}, ErrTokenNotSet
	}

	endpoint, ok := model.NewGitHubEndpoint(endpointURL)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpointURL)
	}

	viewer, err := s.accessor.GetViewer(ctx, endpoint, token)
	if err != nil {
		return model.Account{}, fmt.Errorf("sign in to %s: %w", endpoint.Origin(), err)
	}

	account := model.NewAccount(viewer, endpoint, token)
	if err := s.SetAccount(ctx, scope, account); err != nil {
		return model.Account{}, err
	}

	s.logger.Info("account signed in", "account", account.Key(), "scope", scope)
	return account, nil
}

// DeleteSetting removes the whole settings store of scope. A scope without a
// store is logged and otherwise ignored.
func (s *AccountSettingService) DeleteSetting(ctx context.Context, scope string) error {
	err := s.store.DeleteSettings(ctx, scope)
	if errors.Is(err, driven.ErrSettingsNotFound) {
		s.logger.Warn("settings store already absent", "scope", scope)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete settings for scope %s: %w", scope, err)
	}

	s.logger.Info("settings deleted", "scope", scope)
	return nil
}

// RepositorySettingService manages the tracked repositories of a scope. The
// list behaves as a set keyed by canonical URL.
type RepositorySettingService struct {
	store  driven.RepositorySettingStore
	logger *slog.Logger
}

// NewRepositorySettingService creates a new RepositorySettingService.
func NewRepositorySettingService(store driven.RepositorySettingStore, logger *slog.Logger) *RepositorySettingService {
	return &RepositorySettingService{store: store, logger: logger}
}

// ListRepositorySettings returns the tracked repositories in stored order.
func (s *RepositorySettingService) ListRepositorySettings(ctx context.Context, scope string) ([]model.RepositoryIdentity, error) {
	settings, err := s.store.ListRepositorySettings(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list repository settings for scope %s: %w", scope, err)
	}

	identities := make([]model.RepositoryIdentity, 0, len(settings))
	for _, setting := range settings {
		identities = append(identities, setting.Identity())
	}
	return identities, nil
}

// AddRepositorySetting appends identity unless a repository with the same
// canonical URL is already tracked, in which case it returns false without
// writing.
func (s *RepositorySettingService) AddRepositorySetting(ctx context.Context, scope string, identity model.RepositoryIdentity) (bool, error) {
	if !identity.IsValid() {
		return false, model.ErrInvalidRepositoryURL
	}

	settings, err := s.store.ListRepositorySettings(ctx, scope)
	if err != nil {
		return false, fmt.Errorf("list repository settings for scope %s: %w", scope, err)
	}

	url := identity.URL()
	for _, existing := range settings {
		if existing.URL == url {
			return false, nil
		}
	}

	settings = append(settings, model.NewRepositorySetting(identity))
	if err := s.store.SetRepositorySettings(ctx, scope, settings); err != nil {
		return false, fmt.Errorf("add repository setting %s: %w", url, err)
	}

	s.logger.Info("repository added", "repo", url, "scope", scope)
	return true, nil
}

// UpdateRepositorySetting replaces the preference and category of the tracked
// repository with identity's URL. It returns false when none is tracked.
func (s *RepositorySettingService) UpdateRepositorySetting(ctx context.Context, scope string, identity model.RepositoryIdentity) (bool, error) {
	settings, err := s.store.ListRepositorySettings(ctx, scope)
	if err != nil {
		return false, fmt.Errorf("list repository settings for scope %s: %w", scope, err)
	}

	url := identity.URL()
	found := false
	for i, existing := range settings {
		if existing.URL == url {
			settings[i] = model.NewRepositorySetting(identity)
			found = true
		}
	}
	if !found {
		return false, nil
	}

	if err := s.store.SetRepositorySettings(ctx, scope, settings); err != nil {
		return false, fmt.Errorf("update repository setting %s: %w", url, err)
	}
	return true, nil
}

// DeleteRepositorySetting removes every tracked entry with identity's URL.
func (s *RepositorySettingService) DeleteRepositorySetting(ctx context.Context, scope string, identity model.RepositoryIdentity) error {
	settings, err := s.store.ListRepositorySettings(ctx, scope)
	if err != nil {
		return fmt.Errorf("list repository settings for scope %s: %w", scope, err)
	}

	url := identity.URL()
	kept := make([]model.RepositorySetting, 0, len(settings))
	for _, existing := range settings {
		if existing.URL != url {
			kept = append(kept, existing)
		}
	}

	if err := s.store.SetRepositorySettings(ctx, scope, kept); err != nil {
		return fmt.Errorf("delete repository setting %s: %w", url, err)
	}

	s.logger.Info("repository removed", "repo", url, "scope", scope)
	return nil
}

// SetRepositorySettings overwrites the tracked list with identities. Callers
// that want to keep existing entries must read them first.
func (s *RepositorySettingService) SetRepositorySettings(ctx context.Context, scope string, identities []model.RepositoryIdentity) error {
	settings := make([]model.RepositorySetting, 0, len(identities))
	for _, id := range identities {
		settings = append(settings, model.NewRepositorySetting(id))
	}

	if err := s.store.SetRepositorySettings(ctx, scope, settings); err != nil {
		return fmt.Errorf("set repository settings for scope %s: %w", scope, err)
	}
	return nil
}

// ApplicationSettingService manages the list of configured account slots.
type ApplicationSettingService struct {
	store driven.ApplicationSettingStore
}

// NewApplicationSettingService creates a new ApplicationSettingService.
func NewApplicationSettingService(store driven.ApplicationSettingStore) *ApplicationSettingService {
	return &ApplicationSettingService{store: store}
}

// ListSettings returns every slot in stored order.
func (s *ApplicationSettingService) ListSettings(ctx context.Context) ([]model.ApplicationSetting, error) {
	settings, err := s.store.ListApplicationSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list application settings: %w", err)
	}
	return settings, nil
}

// HasSetting reports whether a slot with setting's ID exists.
func (s *ApplicationSettingService) HasSetting(ctx context.Context, setting model.ApplicationSetting) (bool, error) {
	settings, err := s.ListSettings(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range settings {
		if existing.ID == setting.ID {
			return true, nil
		}
	}
	return false, nil
}

// AddSetting appends setting. It does not check for duplicates.
func (s *ApplicationSettingService) AddSetting(ctx context.Context, setting model.ApplicationSetting) error {
	settings, err := s.ListSettings(ctx)
	if err != nil {
		return err
	}

	settings = append(settings, setting)
	if err := s.store.SetApplicationSettings(ctx, settings); err != nil {
		return fmt.Errorf("add application setting %s: %w", setting.ID, err)
	}
	return nil
}

// RemoveSetting removes every slot with setting's ID.
func (s *ApplicationSettingService) RemoveSetting(ctx context.Context, setting model.ApplicationSetting) error {
	settings, err := s.ListSettings(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.ApplicationSetting, 0, len(settings))
	for _, existing := range settings {
		if existing.ID != setting.ID {
			kept = append(kept, existing)
		}
	}

	if err := s.store.SetApplicationSettings(ctx, kept); err != nil {
		return fmt.Errorf("remove application setting %s: %w", setting.ID, err)
	}
	return nil
}

// FindByLabel returns the first slot labeled label, or nil.
func (s *ApplicationSettingService) FindByLabel(ctx context.Context, label string) (*model.ApplicationSetting, error) {
	settings, err := s.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range settings {
		if settings[i].Label == label {
			return &settings[i], nil
		}
	}
	return nil, nil
}
