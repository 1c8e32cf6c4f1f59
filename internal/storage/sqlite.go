package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mirubato/mirubato/internal/common"
	"github.com/mirubato/mirubato/internal/dbx"
	"github.com/mirubato/mirubato/internal/storage/migrations"
)

// SQLiteStore implements Store over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteStore struct {
	db    dbx.DBTX
	clock func() time.Time
}

// NewSQLiteStore returns a store bound to the given DBTX.
func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db, clock: time.Now}
}

// RunMigrations applies the embedded goose migrations for the local store.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) a local store at dsn and applies
// migrations. The caller owns the returned *sql.DB.
func Open(ctx context.Context, dsn string) (*sql.DB, *SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening local store: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating local store: %w", err)
	}
	return db, NewSQLiteStore(db), nil
}

// Get returns the value under key. Expired keys behave as absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: key %q", common.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	if expiresAt.Valid && s.clock().Unix() >= expiresAt.Int64 {
		return nil, fmt.Errorf("%w: key %q expired", common.ErrNotFound, key)
	}
	return value, nil
}

// Set upserts value under key, with an optional TTL.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.clock().Add(ttl).Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

// Remove deletes a key; absent keys are ignored.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove kv[%s]: %w", key, err)
	}
	return nil
}

// Keys lists live keys with the given prefix in sorted order.
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, expires_at FROM kv WHERE key LIKE ? || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	now := s.clock().Unix()
	var keys []string
	for rows.Next() {
		var key string
		var expiresAt sql.NullInt64
		if err := rows.Scan(&key, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		if expiresAt.Valid && now >= expiresAt.Int64 {
			continue
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
