package memory

import (
	"context"
	"encoding/json"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// ForgetMemory implements both forget-path modes (spec.md §4.5). Soft
// forget marks the row superseded by the "forgotten" sentinel; hard
// forget removes the identifier from every index.
func (e *Engine) ForgetMemory(ctx context.Context, id, reason string, hardDelete bool) (*ForgetMemoryResponse, error) {
	now := e.now()

	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	tx, err := e.store.Begin()
	if err != nil {
		return nil, storeErr("begin forget transaction", err)
	}
	defer tx.Rollback()

	m, err := e.store.GetMemoryTx(tx, id)
	if err != nil {
		return nil, storeErr("forget lookup", err)
	}
	if m == nil {
		return nil, notFoundErr("memory %q does not exist", id)
	}

	if hardDelete {
		rowid, err := e.store.RowIDTx(tx, id)
		if err != nil {
			return nil, storeErr("forget resolve rowid", err)
		}
		// Audit is written before the row delete so the memory_id is
		// still a real identifier at the moment the entry is recorded,
		// and it survives the delete since audit_log has no FK to memories.
		details, _ := json.Marshal(map[string]any{"hard_delete": true, "reason": reason})
		if err := e.store.AppendAuditTx(tx, memtypes.AuditDelete, id, details, now); err != nil {
			return nil, storeErr("audit hard delete", err)
		}
		if err := e.store.DeleteFTSTx(tx, rowid, m.Content, string(m.Category)); err != nil {
			return nil, storeErr("delete fts row", err)
		}
		if err := e.store.DeleteVectorTx(tx, id); err != nil {
			return nil, storeErr("delete vector row", err)
		}
		if err := e.store.DeleteMemoryTx(tx, id); err != nil {
			return nil, storeErr("delete memory row", err)
		}
	} else {
		m.SupersededBy = memtypes.Forgotten
		m.UpdatedAt = now
		if err := e.store.UpdateMemoryTx(tx, m); err != nil {
			return nil, storeErr("soft forget update", err)
		}
		details, _ := json.Marshal(map[string]any{"hard_delete": false, "reason": reason})
		if err := e.store.AppendAuditTx(tx, memtypes.AuditDelete, id, details, now); err != nil {
			return nil, storeErr("audit soft delete", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit forget", err)
	}
	return &ForgetMemoryResponse{ID: id, HardDeleted: hardDelete}, nil
}
