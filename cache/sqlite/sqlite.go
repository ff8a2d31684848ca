// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package sqlite is a modernc.org/sqlite-backed cache.Store, grounded on
// the teacher's stores/sqlite package: an embedded schema, a
// Config{Path} constructor, and pragma-tuned DSNs for both
// in-memory and file-backed modes.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed cache.Store.
type Store struct {
	db *sql.DB
}

// Config configures New. An empty Path opens an in-memory database that
// is discarded when the process exits — useful for a single batch run
// that still wants cross-goroutine dedup but no persistence across runs.
type Config struct {
	Path string
}

// New opens (and, for a new file, initializes) a cache database.
func New(cfg Config) (*Store, error) {
	var dsn string
	if cfg.Path == "" {
		dsn = "file::memory:?cache=shared&_pragma=foreign_keys(1)"
	} else {
		dsn = fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
			cfg.Path,
		)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT formatted FROM format_cache WHERE content_hash = ?`
	var formatted []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&formatted)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query format_cache: %w", err)
	}
	return formatted, true, nil
}

func (s *Store) Put(ctx context.Context, key string, formatted []byte) error {
	const query = `
		INSERT INTO format_cache (content_hash, formatted, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET formatted = excluded.formatted, created_at = excluded.created_at
	`
	_, err := s.db.ExecContext(ctx, query, key, formatted, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert format_cache: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
