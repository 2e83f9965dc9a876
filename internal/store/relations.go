package store

import (
	"database/sql"
	"fmt"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// InsertRelationTx inserts a subject/predicate/object triple. The UNIQUE
// constraint on (subject_id, predicate, object_id) makes a duplicate
// insert fail with a constraint error; callers that want dedup-without-error
// should check RelationExists first.
func (s *Store) InsertRelationTx(tx execer, r *memtypes.Relation) error {
	_, err := tx.Exec(
		`INSERT INTO relations (id, subject_id, predicate, object_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.SubjectID, r.Predicate, r.ObjectID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert relation %s: %w", r.ID, err)
	}
	return nil
}

// RelationExists checks the UNIQUE triple before insert, so callers can
// silently no-op a duplicate rather than relying on a constraint error.
func (s *Store) RelationExists(subjectID, predicate, objectID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM relations WHERE subject_id = ? AND predicate = ? AND object_id = ?`,
		subjectID, predicate, objectID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("store: relation exists: %w", err)
	}
	return count > 0, nil
}

// RelationIDIfExistsTx looks up the id of a relation matching the full
// triple within tx, so store_relation can return the existing id on a
// deduplicated call instead of just a boolean.
func (s *Store) RelationIDIfExistsTx(tx execer, subjectID, predicate, objectID string) (string, bool, error) {
	var id string
	err := tx.QueryRow(
		`SELECT id FROM relations WHERE subject_id = ? AND predicate = ? AND object_id = ?`,
		subjectID, predicate, objectID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: relation id lookup: %w", err)
	}
	return id, true, nil
}

// RelationsFor returns every relation where id is the subject or the
// object, used by inspect to surface a memory's graph neighborhood.
func (s *Store) RelationsFor(id string) ([]*memtypes.Relation, error) {
	rows, err := s.DB.Query(
		`SELECT id, subject_id, predicate, object_id, created_at
		 FROM relations WHERE subject_id = ? OR object_id = ?
		 ORDER BY created_at`,
		id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("store: relations for %s: %w", id, err)
	}
	defer rows.Close()

	var out []*memtypes.Relation
	for rows.Next() {
		var r memtypes.Relation
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.Predicate, &r.ObjectID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: relation scan: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// ListAllRelations returns every relation row, for export.
func (s *Store) ListAllRelations() ([]*memtypes.Relation, error) {
	rows, err := s.DB.Query(`SELECT id, subject_id, predicate, object_id, created_at FROM relations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("store: list all relations: %w", err)
	}
	defer rows.Close()

	var out []*memtypes.Relation
	for rows.Next() {
		var r memtypes.Relation
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.Predicate, &r.ObjectID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: list relations scan: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// RelationCount returns the total number of relation rows, for health/stats.
func (s *Store) RelationCount() (int, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM relations`).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("store: relation count: %w", err)
	}
	return n, nil
}
