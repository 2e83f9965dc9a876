package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector packs a float32 slice into the little-endian binary blob
// sqlite-vec's vec0 virtual table expects for a float[N] column.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector unpacks a little-endian float32 blob back into a slice.
func DecodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(buf[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec
}

// UpsertVector replaces any existing embedding for id in the vec0 index.
// vec0 has no native UPSERT, so this deletes then inserts.
func (s *Store) UpsertVector(id string, vec []float32) error {
	if err := EnsureDim(vec, s.dim); err != nil {
		return err
	}
	if _, err := s.DB.Exec(`DELETE FROM memories_vec WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete stale vector %s: %w", id, err)
	}
	if _, err := s.DB.Exec(
		`INSERT INTO memories_vec(id, embedding) VALUES (?, ?)`,
		id, EncodeVector(vec),
	); err != nil {
		return fmt.Errorf("store: insert vector %s: %w", id, err)
	}
	return nil
}

// UpsertVectorTx is the transactional form of UpsertVector, used by the
// write path so the row insert, FTS insert, and vector insert commit or
// roll back together.
func (s *Store) UpsertVectorTx(tx execer, id string, vec []float32) error {
	if err := EnsureDim(vec, s.dim); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM memories_vec WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete stale vector %s: %w", id, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO memories_vec(id, embedding) VALUES (?, ?)`,
		id, EncodeVector(vec),
	); err != nil {
		return fmt.Errorf("store: insert vector %s: %w", id, err)
	}
	return nil
}

// DeleteVector removes id's embedding from the vec0 index, if present.
func (s *Store) DeleteVector(id string) error {
	_, err := s.DB.Exec(`DELETE FROM memories_vec WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete vector %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteVectorTx(tx execer, id string) error {
	_, err := tx.Exec(`DELETE FROM memories_vec WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete vector %s: %w", id, err)
	}
	return nil
}

// VectorMatch is one row of a k-NN probe: the memory id and its L2
// distance from the query vector.
type VectorMatch struct {
	ID       string
	Distance float64
}

// KNN issues a sqlite-vec k-NN query: WHERE embedding MATCH ? AND k = ?,
// which uses the vec0 index rather than a full table scan. Results come
// back ordered by ascending L2 distance.
func (s *Store) KNN(query []float32, k int) ([]VectorMatch, error) {
	return s.KNNTx(s.DB, query, k)
}

// KNNTx is the transactional form of KNN. The store's connection pool is
// pinned to a single connection, so any k-NN probe issued while a write
// transaction is open (the write path's dedup gate) MUST run
// against that same *sql.Tx — issuing it against s.DB instead would block
// forever waiting for a second connection that will never be granted.
func (s *Store) KNNTx(tx execer, query []float32, k int) ([]VectorMatch, error) {
	if err := EnsureDim(query, s.dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	rows, err := tx.Query(
		`SELECT id, distance FROM memories_vec WHERE embedding MATCH ? AND k = ? ORDER BY distance`,
		EncodeVector(query), k,
	)
	if err != nil {
		return nil, fmt.Errorf("store: knn query: %w", err)
	}
	defer rows.Close()

	var out []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.ID, &m.Distance); err != nil {
			return nil, fmt.Errorf("store: knn scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CosineToL2 converts a cosine-similarity threshold into the equivalent L2
// distance bound for unit-normalised vectors: L2 = sqrt(2*(1-cos)).
func CosineToL2(cosine float64) float64 {
	d := 2 * (1 - cosine)
	if d < 0 {
		d = 0
	}
	return math.Sqrt(d)
}

// L2ToCosine is the inverse of CosineToL2, for reporting a match's
// similarity back in cosine terms.
func L2ToCosine(l2 float64) float64 {
	return 1 - (l2*l2)/2
}

// EnsureDim validates that vec has the store's configured dimension.
func EnsureDim(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("store: embedding dimension %d does not match store dimension %d", len(vec), dim)
	}
	return nil
}
