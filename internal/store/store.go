// Package store implements the embedded single-file SQLite backend: a row
// table, an FTS5 index, and a sqlite-vec (vec0) dense-vector index, wired
// together with forward-only migrations and foreign-key cascade. It
// exposes low-level CRUD primitives; ranking, dedup, and lifecycle policy
// live in package memory.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/KyleWMiller/Loci/internal/logging"
)

// Store wraps the single-writer SQLite connection backing the engine.
// The connection pool is pinned to one connection (spec: "single-writer
// resource for the life of the process"); Mu additionally serialises
// logical multi-statement operations (dedup probe + insert, hard delete,
// a decay pass) so two write-path calls never interleave.
type Store struct {
	DB   *sql.DB
	Mu   sync.Mutex
	path string
	dim  int
	log  *zap.Logger
}

// ErrIntegrityCheckFailed is returned when the startup PRAGMA
// integrity_check probe does not report "ok".
type ErrIntegrityCheckFailed struct {
	Detail string
}

func (e *ErrIntegrityCheckFailed) Error() string {
	return fmt.Sprintf("store: integrity check failed: %s (back up the database file and consider a fresh store; a compromised file cannot be opened)", e.Detail)
}

// Open opens (creating parent directories as needed) the store file at
// path, configures WAL journalling, foreign-key enforcement, and a 5s busy
// timeout, runs the integrity probe, and migrates the schema. dim is the
// vector dimension the embedded vec0 index is sized for.
func Open(path string, dim int) (*Store, error) {
	log := logging.For("store")
	timer := logging.StartTimer(log, "Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{DB: db, path: path, dim: dim, log: log}

	if err := s.integrityCheck(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	log.Info("store opened", zap.String("path", path), zap.Int("dim", dim))
	return s, nil
}

// integrityCheck runs PRAGMA integrity_check and fails fast on anything
// other than the single-row "ok" result. A fresh/empty file always passes.
func (s *Store) integrityCheck() error {
	rows, err := s.DB.Query("PRAGMA integrity_check")
	if err != nil {
		return fmt.Errorf("store: integrity_check query: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return fmt.Errorf("store: integrity_check scan: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: integrity_check iterate: %w", err)
	}
	if len(results) != 1 || results[0] != "ok" {
		return &ErrIntegrityCheckFailed{Detail: fmt.Sprintf("%v", results)}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// Dim returns the configured vector dimension.
func (s *Store) Dim() int {
	return s.dim
}
