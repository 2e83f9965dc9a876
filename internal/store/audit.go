package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// AppendAuditTx appends one audit_log row within tx. The audit log is
// deliberately not foreign-keyed to memories, so an entry survives hard
// deletion of the memory it describes.
func (s *Store) AppendAuditTx(tx execer, op memtypes.AuditOperation, memoryID string, details []byte, at time.Time) error {
	_, err := tx.Exec(
		`INSERT INTO audit_log (operation, memory_id, details, created_at) VALUES (?, ?, ?, ?)`,
		string(op), memoryID, nullRawJSON(details), at,
	)
	if err != nil {
		return fmt.Errorf("store: append audit %s/%s: %w", op, memoryID, err)
	}
	return nil
}

// AppendAudit is the non-transactional convenience form.
func (s *Store) AppendAudit(op memtypes.AuditOperation, memoryID string, details []byte, at time.Time) error {
	return s.AppendAuditTx(s.DB, op, memoryID, details, at)
}

// AuditHistory returns every audit entry for a memory id, oldest first.
func (s *Store) AuditHistory(memoryID string) ([]*memtypes.AuditEntry, error) {
	rows, err := s.DB.Query(
		`SELECT seq, operation, memory_id, details, created_at FROM audit_log WHERE memory_id = ? ORDER BY seq`,
		memoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: audit history %s: %w", memoryID, err)
	}
	defer rows.Close()

	var out []*memtypes.AuditEntry
	for rows.Next() {
		var e memtypes.AuditEntry
		var op string
		var details sql.NullString
		if err := rows.Scan(&e.Seq, &op, &e.MemoryID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: audit scan: %w", err)
		}
		e.Operation = memtypes.AuditOperation(op)
		if details.Valid {
			e.Details = []byte(details.String)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
