// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package history records provisioning runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// DefaultPath is where the history database lives unless overridden.
const DefaultPath = "~/.gnoagent/history.db"

// Run is one successful provisioning run.
type Run struct {
	RunID        string
	AgentName    string
	AgentID      string
	Model        string
	Endpoint     string
	DeletedCount int
	CreatedAt    time.Time
}

type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// A leading ~/ expands to the user's home directory.
func Open(path string) (*Store, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("configuring %s: %w", path, err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// LazyStore opens the database at path on the first Record, so runs that fail before recording never
// create it.
type LazyStore struct {
	path string

	mu    sync.Mutex
	store *Store
}

func OpenLazy(path string) *LazyStore {
	return &LazyStore{path: path}
}

func (l *LazyStore) Record(ctx context.Context, run Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		store, err := Open(l.path)
		if err != nil {
			return fmt.Errorf("opening history database %s: %w", l.path, err)
		}
		l.store = store
	}

	return l.store.Record(ctx, run)
}

// Close closes the database if Record opened it.
func (l *LazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// Record stores a run.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO provision_runs (run_id, agent_name, agent_id, model, endpoint, deleted_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.AgentName, run.AgentID, run.Model, run.Endpoint, run.DeletedCount, run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.RunID, err)
	}

	return nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT run_id, agent_name, agent_id, model, endpoint, deleted_count, created_at
		 FROM provision_runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt int64
		if err := rows.Scan(
			&run.RunID, &run.AgentName, &run.AgentID, &run.Model, &run.Endpoint, &run.DeletedCount, &createdAt,
		); err != nil {
			return nil, err
		}
		run.CreatedAt = time.UnixMilli(createdAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
