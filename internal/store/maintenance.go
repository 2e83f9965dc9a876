package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// DecayCategoryTx multiplies confidence by factor on every active row of
// category with confidence > 0, and returns how many rows were touched.
func (s *Store) DecayCategoryTx(tx execer, category memtypes.Category, factor float64, at time.Time) (int64, error) {
	res, err := tx.Exec(
		`UPDATE memories SET confidence = confidence * ?, updated_at = ?
		 WHERE category = ? AND superseded_by IS NULL AND confidence > 0`,
		factor, at, string(category),
	)
	if err != nil {
		return 0, fmt.Errorf("store: decay category %s: %w", category, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: decay rows affected %s: %w", category, err)
	}
	return n, nil
}

// ListCleanupCandidates returns active rows eligible for cleanup: low
// confidence and either never accessed (and old) or long unaccessed.
func (s *Store) ListCleanupCandidates(confidenceFloor float64, cutoff time.Time) ([]*memtypes.Memory, error) {
	rows, err := s.DB.Query(
		memorySelect+` WHERE superseded_by IS NULL AND confidence < ?
		 AND (
			(last_accessed IS NULL AND created_at < ?)
			OR (last_accessed IS NOT NULL AND last_accessed < ?)
		 )`,
		confidenceFloor, cutoff, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("store: cleanup candidates: %w", err)
	}
	defer rows.Close()
	return scanMemories(rows)
}

// GetVector fetches the stored embedding for id, or (nil, nil) if absent.
func (s *Store) GetVector(id string) ([]float32, error) {
	var blob []byte
	err := s.DB.QueryRow(`SELECT embedding FROM memories_vec WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get vector %s: %w", id, err)
	}
	return DecodeVector(blob), nil
}
