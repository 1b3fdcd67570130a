package kv

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore backs deployments where the cart outlives the host the
// service runs on. Writes between concurrent processes sharing a key are
// last-writer-wins, same as every other backend.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			k          TEXT PRIMARY KEY,
			v          TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = $1`, key).Scan(&v)
	})
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO kv (k, v, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()
		`, key, value)
		return err
	})
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE k = $1`, key)
		return err
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
