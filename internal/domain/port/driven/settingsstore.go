package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

// Sentinel errors returned by settings store implementations.
var (
	// ErrSettingsNotFound indicates the backing store of a scope does not exist.
	ErrSettingsNotFound = errors.New("settings store not found")

	// ErrEncryptionKeyNotSet is returned when an account token cannot be
	// stored or read because GITDASH_SECRET_KEY has not been configured.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set GITDASH_SECRET_KEY")
)

// AccountStore defines the driven port for the single account record kept
// per settings scope. The adapter encrypts the token at rest; this interface
// operates on plaintext at the domain boundary.
type AccountStore interface {
	// GetAccount returns (nil, nil) when the scope has no account.
	GetAccount(ctx context.Context, scope string) (*model.Account, error)
	SetAccount(ctx context.Context, scope string, account model.Account) error
	// DeleteSettings removes the whole backing store of the scope, including
	// its repository settings. Returns ErrSettingsNotFound if there is none.
	DeleteSettings(ctx context.Context, scope string) error
}

// RepositorySettingStore defines the driven port for the ordered list of
// tracked repositories of a scope. The store does not deduplicate.
type RepositorySettingStore interface {
	ListRepositorySettings(ctx context.Context, scope string) ([]model.RepositorySetting, error)
	// SetRepositorySettings replaces the whole list.
	SetRepositorySettings(ctx context.Context, scope string, settings []model.RepositorySetting) error
}

// ApplicationSettingStore defines the driven port for the ordered list of
// configured account slots.
type ApplicationSettingStore interface {
	ListApplicationSettings(ctx context.Context) ([]model.ApplicationSetting, error)
	// SetApplicationSettings replaces the whole list.
	SetApplicationSettings(ctx context.Context, settings []model.ApplicationSetting) error
}
