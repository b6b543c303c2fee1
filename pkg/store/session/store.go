package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/ems-atlas/pkg/store/sqlite"
)

// Store is a key/value attribute store with per-key expiry. Expired keys read as absent.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type defaultStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) (Store, error) {
	return NewStoreWithClock(db, time.Now)
}

func NewStoreWithClock(db *sql.DB, now func() time.Time) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if now == nil {
		now = time.Now
	}
	return &defaultStore{db: db, now: now}, nil
}

func (s *defaultStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_attributes WHERE key = ? AND expires_at > ?`,
		key, s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session attribute %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes every value with the same expiry in one transaction.
func (s *defaultStore) Put(ctx context.Context, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	ctx = sqlite.WithTransaction(ctx, tx)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expiresAt := s.now().Add(ttl).UnixMilli()
	for _, k := range keys {
		if err := s.upsert(ctx, k, values[k], expiresAt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session attributes: %w", err)
	}
	return nil
}

func (s *defaultStore) upsert(ctx context.Context, key, value string, expiresAt int64) error {
	_, err := sqlite.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`INSERT INTO session_attributes (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write session attribute %s: %w", key, err)
	}
	return nil
}

func (s *defaultStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM session_attributes WHERE key = ?`, k); err != nil {
			return fmt.Errorf("failed to delete session attribute %s: %w", k, err)
		}
	}
	return nil
}
