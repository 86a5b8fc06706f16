// Package store is the SQLite-backed persistence layer: schema creation,
// batch writes, retention pruning, and the metadata/image/search reads the
// assistant and live server depend on.
package store

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// maxOpenConns bounds the pool; SQLite serializes writers regardless, so a
// small pool is enough to let reads overlap without starving writers.
const maxOpenConns = 5

// Store wraps a pooled SQLite connection.
type Store struct {
	db        *sql.DB
	retention atomic.Pointer[RetentionPolicy]
}

// Open connects to dsn, enables WAL + foreign keys, and idempotently brings
// the schema up to date.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}
