package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
	"github.com/ericfisherdev/gitdash/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ApplicationSettingStore = (*ApplicationSettingRepo)(nil)

// ApplicationSettingRepo is the SQLite implementation of the
// ApplicationSettingStore port interface.
type ApplicationSettingRepo struct {
	db *DB
}

// NewApplicationSettingRepo creates a new ApplicationSettingRepo backed by the given DB.
func NewApplicationSettingRepo(db *DB) *ApplicationSettingRepo {
	return &ApplicationSettingRepo{db: db}
}

// ListApplicationSettings returns every slot in stored order.
func (r *ApplicationSettingRepo) ListApplicationSettings(ctx context.Context) ([]model.ApplicationSetting, error) {
	const query = `SELECT id, label, added_at FROM application_settings ORDER BY position`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list application settings: %w", err)
	}
	defer rows.Close()

	settings := []model.ApplicationSetting{}
	for rows.Next() {
		var (
			s       model.ApplicationSetting
			id      string
			addedAt string
		)
		if err := rows.Scan(&id, &s.Label, &addedAt); err != nil {
			return nil, fmt.Errorf("scan application setting: %w", err)
		}

		s.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse application setting id %q: %w", id, err)
		}
		s.AddedAt, err = parseTime(addedAt)
		if err != nil {
			return nil, fmt.Errorf("parse added_at for application setting %s: %w", id, err)
		}

		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application settings: %w", err)
	}

	return settings, nil
}

// SetApplicationSettings atomically replaces the slot list.
func (r *ApplicationSettingRepo) SetApplicationSettings(ctx context.Context, settings []model.ApplicationSetting) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM application_settings`); err != nil {
		return fmt.Errorf("delete application settings: %w", err)
	}

	const insertQuery = `INSERT INTO application_settings (position, id, label, added_at) VALUES (?, ?, ?, ?)`
	for i, s := range settings {
		if _, err := tx.ExecContext(ctx, insertQuery, i, s.ID.String(), s.Label, formatTime(s.AddedAt)); err != nil {
			return fmt.Errorf("insert application setting %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit application settings: %w", err)
	}

	return nil
}
