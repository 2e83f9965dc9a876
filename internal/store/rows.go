package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// InsertMemoryTx inserts a new row into memories within tx.
func (s *Store) InsertMemoryTx(tx execer, m *memtypes.Memory) error {
	_, err := tx.Exec(
		`INSERT INTO memories (
			id, category, content, source_group, scope, confidence,
			access_count, last_accessed, created_at, updated_at,
			superseded_by, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Category), m.Content, nullString(m.SourceGroup), string(m.Scope),
		m.Confidence, m.AccessCount, nullTime(m.LastAccessed), m.CreatedAt, m.UpdatedAt,
		nullString(m.SupersededBy), nullRawJSON(m.Metadata),
	)
	if err != nil {
		return fmt.Errorf("store: insert memory %s: %w", m.ID, err)
	}
	return nil
}

// UpdateMemoryTx rewrites the mutable fields of an existing row.
func (s *Store) UpdateMemoryTx(tx execer, m *memtypes.Memory) error {
	_, err := tx.Exec(
		`UPDATE memories SET
			content = ?, source_group = ?, scope = ?, confidence = ?,
			access_count = ?, last_accessed = ?, updated_at = ?,
			superseded_by = ?, metadata = ?
		 WHERE id = ?`,
		m.Content, nullString(m.SourceGroup), string(m.Scope), m.Confidence,
		m.AccessCount, nullTime(m.LastAccessed), m.UpdatedAt,
		nullString(m.SupersededBy), nullRawJSON(m.Metadata), m.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update memory %s: %w", m.ID, err)
	}
	return nil
}

// GetMemory fetches one row by id. Returns (nil, nil) if absent.
func (s *Store) GetMemory(id string) (*memtypes.Memory, error) {
	return s.GetMemoryTx(s.DB, id)
}

// GetMemoryTx is the transactional form of GetMemory. Callers inside an
// open write transaction must use this (not GetMemory) to avoid blocking
// on the store's single-connection pool until the transaction ends.
func (s *Store) GetMemoryTx(tx execer, id string) (*memtypes.Memory, error) {
	row := tx.QueryRow(memorySelect+` WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get memory %s: %w", id, err)
	}
	return m, nil
}

// GetMemories fetches rows by id, skipping any that don't exist. Order of
// the result is not guaranteed to match ids.
func (s *Store) GetMemories(ids []string) ([]*memtypes.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}
	rows, err := s.DB.Query(memorySelect+fmt.Sprintf(` WHERE id IN (%s)`, string(placeholders)), args...)
	if err != nil {
		return nil, fmt.Errorf("store: get memories: %w", err)
	}
	defer rows.Close()
	return scanMemories(rows)
}

// TouchAccessTx bumps access_count and last_accessed for id in one
// statement, used by the read path's access-tracking step.
func (s *Store) TouchAccessTx(tx execer, id string, at time.Time) error {
	_, err := tx.Exec(
		`UPDATE memories SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("store: touch access %s: %w", id, err)
	}
	return nil
}

// DeleteMemoryTx hard-deletes a row. Relations referencing it cascade via
// the FK declared ON DELETE CASCADE.
func (s *Store) DeleteMemoryTx(tx execer, id string) error {
	_, err := tx.Exec(`DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete memory %s: %w", id, err)
	}
	return nil
}

// ListAllMemories returns every row, active and superseded, for export.
func (s *Store) ListAllMemories() ([]*memtypes.Memory, error) {
	rows, err := s.DB.Query(memorySelect)
	if err != nil {
		return nil, fmt.Errorf("store: list all memories: %w", err)
	}
	defer rows.Close()
	return scanMemories(rows)
}

// ListByCategory returns active (non-superseded) rows for a category,
// used by maintenance passes.
func (s *Store) ListByCategory(cat memtypes.Category) ([]*memtypes.Memory, error) {
	rows, err := s.DB.Query(memorySelect+` WHERE category = ? AND superseded_by IS NULL`, string(cat))
	if err != nil {
		return nil, fmt.Errorf("store: list by category %s: %w", cat, err)
	}
	defer rows.Close()
	return scanMemories(rows)
}

const memorySelect = `SELECT
	id, category, content, source_group, scope, confidence,
	access_count, last_accessed, created_at, updated_at,
	superseded_by, metadata
FROM memories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(r rowScanner) (*memtypes.Memory, error) {
	var m memtypes.Memory
	var category, scope string
	var sourceGroup, supersededBy sql.NullString
	var lastAccessed sql.NullTime
	var metadata sql.NullString

	if err := r.Scan(
		&m.ID, &category, &m.Content, &sourceGroup, &scope, &m.Confidence,
		&m.AccessCount, &lastAccessed, &m.CreatedAt, &m.UpdatedAt,
		&supersededBy, &metadata,
	); err != nil {
		return nil, err
	}
	m.Category = memtypes.Category(category)
	m.Scope = memtypes.Scope(scope)
	if sourceGroup.Valid {
		m.SourceGroup = sourceGroup.String
	}
	if supersededBy.Valid {
		m.SupersededBy = supersededBy.String
	}
	if lastAccessed.Valid {
		t := lastAccessed.Time
		m.LastAccessed = &t
	}
	if metadata.Valid {
		m.Metadata = []byte(metadata.String)
	}
	return &m, nil
}

func scanMemories(rows *sql.Rows) ([]*memtypes.Memory, error) {
	var out []*memtypes.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan memory: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullRawJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
