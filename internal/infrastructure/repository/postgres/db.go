package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenDB opens a small bounded pool. The service runs serverless-style
// with one request per instance, so a couple of connections is plenty.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables idempotently. An advisory lock
// serializes DDL across concurrently cold-starting instances.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026040201)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	access_token_hash TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_token_hash ON sessions(access_token_hash);

CREATE TABLE IF NOT EXISTS article_logs (
	id TEXT PRIMARY KEY,
	summary JSONB NOT NULL DEFAULT '[]'::jsonb,
	nationalities JSONB NOT NULL DEFAULT '[]'::jsonb,
	organizations JSONB NOT NULL DEFAULT '[]'::jsonb,
	people JSONB NOT NULL DEFAULT '[]'::jsonb,
	language JSONB NOT NULL DEFAULT '[]'::jsonb,
	original_text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_article_logs_created_at ON article_logs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}

	return MigrateOptionalColumns(ctx, db)
}

// MigrateOptionalColumns adds columns introduced after the initial
// schema. Idempotent; also exposed through the admin migration
// endpoint.
func MigrateOptionalColumns(ctx context.Context, db *sql.DB) error {
	const query = `
ALTER TABLE article_logs ADD COLUMN IF NOT EXISTS uploaded_file TEXT NOT NULL DEFAULT '';
ALTER TABLE article_logs ADD COLUMN IF NOT EXISTS language JSONB NOT NULL DEFAULT '[]'::jsonb;
`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate optional columns: %w", err)
	}
	return nil
}
