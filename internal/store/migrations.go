package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// CurrentSchemaVersion is the latest schema version this build knows how
// to migrate to. Migrations are forward-only and linearly numbered.
const CurrentSchemaVersion = 2

const metaKeySchemaVersion = "schema_version"
const metaKeyEmbeddingModel = "embedding_model"

// migration applies one forward step of the schema, given a transaction
// already open for that step.
type migration func(tx *sql.Tx, dim int) error

var migrations = map[int]migration{
	1: migrateV1,
	2: migrateV2,
}

// migrate runs every migration strictly greater than the stored version,
// one at a time, each in its own transaction, advancing schema_metadata
// on success. An unknown target version (a stored version higher than
// this build understands, or a gap in the ladder) halts the chain with an
// error rather than panicking.
func (s *Store) migrate() error {
	// schema_metadata may not exist yet on a brand-new file; probe directly
	// rather than via GetMetadata to avoid a chicken-and-egg dependency.
	stored, err := s.storedSchemaVersionOrZero()
	if err != nil {
		return err
	}

	if stored > CurrentSchemaVersion {
		return fmt.Errorf("store: database schema version %d is newer than this build supports (%d); refusing to downgrade", stored, CurrentSchemaVersion)
	}

	for v := stored + 1; v <= CurrentSchemaVersion; v++ {
		m, ok := migrations[v]
		if !ok {
			return fmt.Errorf("store: no migration registered for schema version %d", v)
		}
		if err := s.runMigration(v, m); err != nil {
			return fmt.Errorf("store: migration to v%d: %w", v, err)
		}
		s.log.Info("applied schema migration", zap.Int("version", v))
	}
	return nil
}

func (s *Store) runMigration(version int, m migration) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m(tx, s.dim); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_metadata(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaKeySchemaVersion, fmt.Sprintf("%d", version),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// storedSchemaVersionOrZero returns the recorded schema_version, or 0 if
// the metadata table (or row) does not exist yet.
func (s *Store) storedSchemaVersionOrZero() (int, error) {
	var exists int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_metadata'`,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("store: probe schema_metadata: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var value string
	err = s.DB.QueryRow(`SELECT value FROM schema_metadata WHERE key = ?`, metaKeySchemaVersion).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: read schema_version: %w", err)
	}
	var v int
	if _, err := fmt.Sscanf(value, "%d", &v); err != nil {
		return 0, fmt.Errorf("store: parse schema_version %q: %w", value, err)
	}
	return v, nil
}

// migrateV1 creates the base schema: row table, FTS index, vec0 index,
// relations, audit log, and schema metadata table.
func migrateV1(tx *sql.Tx, dim int) error {
	for _, stmt := range schemaV1(dim) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// migrateV2 seeds an initial embedding_model metadata row if one is not
// already present, so a fresh store always has a baseline to compare a
// configured model string against on subsequent opens. The row starts
// empty; memory.Engine fills in the real model identifier the first time
// an embedder is wired against this store (see Engine.reconcileEmbeddingModel).
func migrateV2(tx *sql.Tx, _ int) error {
	var count int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM schema_metadata WHERE key = ?`, metaKeyEmbeddingModel,
	).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := tx.Exec(
		`INSERT INTO schema_metadata(key, value) VALUES (?, ?)`,
		metaKeyEmbeddingModel, "",
	)
	return err
}

// GetMetadata reads a schema_metadata value. It returns ("", false, nil)
// if the key is absent.
func (s *Store) GetMetadata(key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRow(`SELECT value FROM schema_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetMetadata upserts a schema_metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.DB.Exec(
		`INSERT INTO schema_metadata(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// SchemaVersion returns the currently stored schema version.
func (s *Store) SchemaVersion() (int, error) {
	return s.storedSchemaVersionOrZero()
}

// MetaKeyEmbeddingModel exposes the embedding-model metadata key for
// callers that need to compare the configured model against the stored
// one (startup warning on mismatch).
const MetaKeyEmbeddingModel = metaKeyEmbeddingModel
