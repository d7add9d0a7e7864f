/*
Package sqlite provides a SQLite-backed implementation of the hrm.KV interface.

PURPOSE:
  Persists the named JSON documents (state, login reports, traffic counts
  and history, identity keys) in a single-file database. The document layout
  mirrors the original local-storage contract one-to-one: one row per key.

SCHEMA:
  documents(key TEXT PRIMARY KEY, value TEXT, updated_at TEXT)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite. Writes replace the
  whole document for a key (last writer wins), matching the wholesale
  read-modify-write model of the rest of the system.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  kv, err := sqlite.New("./data/hrm.db")
  if err != nil {
      log.Fatal(err)
  }
  defer kv.Close()

  store := hrm.NewStore(kv)

MIGRATION:
  Schema is auto-migrated on New(). For anything beyond a single table,
  use a proper migration tool with versioned migrations.

SEE ALSO:
  - hrm/state.go: Interface definition and typed load/save
  - hrm/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// KV implements hrm.KV using SQLite.
type KV struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite document store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*KV, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	kv := &KV{db: db}
	if err := kv.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return kv, nil
}

// Close closes the database connection.
func (s *KV) Close() error {
	return s.db.Close()
}

func (s *KV) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the document stored under key, with found=false when absent.
func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM documents WHERE key = ?", key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load document %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put stores a document, replacing any previous value for the key.
func (s *KV) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store document %q: %w", key, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing key is not an error.
func (s *KV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE key = ?", key)
	return err
}

// Reset clears all documents (for testing/demo).
func (s *KV) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	return err
}
