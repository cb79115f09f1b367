package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositorySettingStore = (*RepositorySettingRepo)(nil)

// RepositorySettingRepo is the SQLite implementation of the
// RepositorySettingStore port interface. Entries keep their insertion order
// through the position column.
type RepositorySettingRepo struct {
	db *DB
}

// NewRepositorySettingRepo creates a new RepositorySettingRepo backed by the given DB.
func NewRepositorySettingRepo(db *DB) *RepositorySettingRepo {
	return &RepositorySettingRepo{db: db}
}

// ListRepositorySettings returns the tracked repositories of scope in stored
// order. A scope without a store yields an empty list.
func (r *RepositorySettingRepo) ListRepositorySettings(ctx context.Context, scope string) ([]model.RepositorySetting, error) {
	const query = `
		SELECT url, category, shows_commits, shows_issues, shows_pull_requests, shows_releases
		FROM repository_settings
		WHERE scope = ?
		ORDER BY position
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("list repository settings for scope %s: %w", scope, err)
	}
	defer rows.Close()

	settings := []model.RepositorySetting{}
	for rows.Next() {
		var (
			s        model.RepositorySetting
			category sql.NullString
		)
		if err := rows.Scan(&s.URL, &category, &s.ShowsCommits, &s.ShowsIssues, &s.ShowsPullRequests, &s.ShowsReleases); err != nil {
			return nil, fmt.Errorf("scan repository setting: %w", err)
		}
		if category.Valid {
			s.Category = &category.String
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repository settings: %w", err)
	}

	return settings, nil
}

// SetRepositorySettings atomically replaces the tracked list of scope.
func (r *RepositorySettingRepo) SetRepositorySettings(ctx context.Context, scope string, settings []model.RepositorySetting) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureScope(ctx, tx, scope); err != nil {
		return err
	}

	const deleteQuery = `DELETE FROM repository_settings WHERE scope = ?`
	if _, err := tx.ExecContext(ctx, deleteQuery, scope); err != nil {
		return fmt.Errorf("delete repository settings for scope %s: %w", scope, err)
	}

	const insertQuery = `
		INSERT INTO repository_settings (scope, position, url, category, shows_commits, shows_issues, shows_pull_requests, shows_releases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, s := range settings {
		var category any
		if s.Category != nil {
			category = *s.Category
		}

		if _, err := tx.ExecContext(ctx, insertQuery,
			scope, i, s.URL, category,
			boolToInt(s.ShowsCommits), boolToInt(s.ShowsIssues),
			boolToInt(s.ShowsPullRequests), boolToInt(s.ShowsReleases),
		); err != nil {
			return fmt.Errorf("insert repository setting %s: %w", s.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit repository settings for scope %s: %w", scope, err)
	}

	return nil
}
