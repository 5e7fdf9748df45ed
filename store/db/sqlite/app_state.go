package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// GetAppState returns the value for a key, or "" when the key is unset.
func (d *DB) GetAppState(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get app state")
	}
	return value, nil
}

// SetAppState sets the value for a key.
func (d *DB) SetAppState(ctx context.Context, key, value string) error {
	stmt := `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`
	if _, err := d.db.ExecContext(ctx, stmt, key, value); err != nil {
		return errors.Wrap(err, "failed to set app state")
	}
	return nil
}
