package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port interface.
// Tokens are encrypted with AES-256-GCM before write and decrypted after read.
type AccountRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewAccountRepo creates a new AccountRepo. key must be 32 bytes for AES-256-GCM,
// or nil to disable token storage (reads and writes of accounts return
// driven.ErrEncryptionKeyNotSet).
func NewAccountRepo(db *DB, key []byte) *AccountRepo {
	return &AccountRepo{db: db, key: key}
}

// GetAccount returns the account stored for scope, or (nil, nil) when none is.
func (r *AccountRepo) GetAccount(ctx context.Context, scope string) (*model.Account, error) {
	const query = `
		SELECT user_name, profile_url, avatar_url, endpoint_url, token
		FROM accounts
		WHERE scope = ?
	`

	var (
		a           model.Account
		endpointURL string
		encrypted   string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, scope).Scan(
		&a.UserName, &a.ProfileURL, &a.AvatarURL, &endpointURL, &encrypted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account for scope %s: %w", scope, err)
	}

	endpoint, ok := model.NewGitHubEndpoint(endpointURL)
	if !ok {
		return nil, fmt.Errorf("get account for scope %s: invalid stored endpoint %q", scope, endpointURL)
	}
	a.Endpoint = endpoint

	a.Token, err = r.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt token for scope %s: %w", scope, err)
	}

	return &a, nil
}

// SetAccount stores account for scope, creating the scope's settings store
// when needed and replacing any previous account.
func (r *AccountRepo) SetAccount(ctx context.Context, scope string, account model.Account) error {
	encrypted, err := r.encrypt(account.Token)
	if err != nil {
		return err
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureScope(ctx, tx, scope); err != nil {
		return err
	}

	const query = `
		INSERT INTO accounts (scope, user_name, profile_url, avatar_url, endpoint_url, token, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			user_name = excluded.user_name,
			profile_url = excluded.profile_url,
			avatar_url = excluded.avatar_url,
			endpoint_url = excluded.endpoint_url,
			token = excluded.token,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query,
		scope, account.UserName, account.ProfileURL, account.AvatarURL,
		account.Endpoint.Origin(), encrypted, formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("set account for scope %s: %w", scope, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit account for scope %s: %w", scope, err)
	}
	return nil
}

// DeleteSettings removes the whole settings store of scope: its account and
// its tracked repositories. It returns driven.ErrSettingsNotFound when the
// scope has no store.
func (r *AccountRepo) DeleteSettings(ctx context.Context, scope string) error {
	const query = `DELETE FROM setting_scopes WHERE scope = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, scope)
	if err != nil {
		return fmt.Errorf("delete settings for scope %s: %w", scope, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete settings for scope %s: %w", scope, err)
	}
	if n == 0 {
		return driven.ErrSettingsNotFound
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *AccountRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *AccountRepo) decrypt(encoded string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *AccountRepo) gcm() (cipher.AEAD, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
