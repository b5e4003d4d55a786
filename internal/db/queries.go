package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/kv"
)

// Records is a kv.Store backed by the records table.
type Records struct {
	db  *sql.DB
	now func() time.Time
}

var _ kv.Store = (*Records)(nil)

// NewRecords wraps an initialized database.
func NewRecords(db *sql.DB) *Records {
	return &Records{db: db, now: time.Now}
}

// Get returns the value stored under key.
func (r *Records) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStorageUnavailable("get", err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (r *Records) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, r.now().Unix()); err != nil {
		return errors.NewStorageUnavailable("set", err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *Records) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return errors.NewStorageUnavailable("remove", err)
	}
	return nil
}
