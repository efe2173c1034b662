package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGStore persists values in a single Postgres table keyed by name.
type PGStore struct {
	db *sql.DB
}

// NewPG sets up a PGStore using the provided database handle.
func NewPG(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("create kv_entries: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM kv_entries
		WHERE key = $1
	`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select value: %w", err)
	}
	return value, nil
}

func (s *PGStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, string(value)); err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (s *PGStore) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM kv_entries
		WHERE key = $1
	`, key); err != nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}
