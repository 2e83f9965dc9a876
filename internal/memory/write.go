package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/KyleWMiller/Loci/internal/memtypes"
	"github.com/KyleWMiller/Loci/internal/store"
)

// StoreMemory implements the write path: dedup gate, identifier minting,
// the three-index insert, optional supersession, and audit, all inside
// one transaction (spec.md §4.3 steps 1-8).
func (e *Engine) StoreMemory(ctx context.Context, req StoreMemoryRequest) (*StoreMemoryResponse, error) {
	if err := e.validateStoreRequest(&req); err != nil {
		return nil, err
	}

	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	tx, err := e.store.Begin()
	if err != nil {
		return nil, storeErr("begin write transaction", err)
	}
	defer tx.Rollback()

	now := e.now()

	dup, err := e.dedupGate(tx, req, now)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		if err := tx.Commit(); err != nil {
			return nil, storeErr("commit dedup update", err)
		}
		return dup, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeErr("mint identifier", err)
	}

	m := &memtypes.Memory{
		ID:          id.String(),
		Category:    req.Category,
		Content:     req.Content,
		SourceGroup: e.resolveGroup(req.Group),
		Scope:       resolveScope(req),
		Confidence:  resolveConfidence(req),
		AccessCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata:    req.Metadata,
	}
	if m.Scope == memtypes.ScopeGlobal {
		m.SourceGroup = ""
	}

	if err := e.store.InsertMemoryTx(tx, m); err != nil {
		return nil, storeErr("insert memory row", err)
	}

	rowid, err := e.store.RowIDTx(tx, m.ID)
	if err != nil {
		return nil, storeErr("resolve rowid for fts insert", err)
	}
	if err := e.store.InsertFTSTx(tx, rowid, m.Content, string(m.Category)); err != nil {
		return nil, storeErr("insert fts row", err)
	}
	if err := e.store.UpsertVectorTx(tx, m.ID, req.Embedding); err != nil {
		return nil, storeErr("insert vector row", err)
	}

	resp := &StoreMemoryResponse{ID: m.ID, Category: m.Category}

	if req.Supersedes != "" {
		target, err := e.store.GetMemoryTx(tx, req.Supersedes)
		if err != nil {
			return nil, storeErr("lookup supersedes target", err)
		}
		if target == nil {
			return nil, notFoundErr("supersedes target %q does not exist", req.Supersedes)
		}
		target.SupersededBy = m.ID
		target.UpdatedAt = now
		if err := e.store.UpdateMemoryTx(tx, target); err != nil {
			return nil, storeErr("apply supersession", err)
		}
		details, _ := json.Marshal(map[string]string{"superseded_by": m.ID})
		if err := e.store.AppendAuditTx(tx, memtypes.AuditSupersede, target.ID, details, now); err != nil {
			return nil, storeErr("audit supersession", err)
		}
		resp.Superseded = target.ID
	}

	if err := e.store.AppendAuditTx(tx, memtypes.AuditCreate, m.ID, nil, now); err != nil {
		return nil, storeErr("audit create", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit write", err)
	}
	return resp, nil
}

// dedupGate runs step 1 of the write path. It returns a non-nil response
// (and leaves tx ready to commit) when an existing row absorbed the write;
// it returns (nil, nil) when no match was found and the caller should
// proceed to insert a new row.
func (e *Engine) dedupGate(tx *sql.Tx, req StoreMemoryRequest, now time.Time) (*StoreMemoryResponse, error) {
	bound := store.CosineToL2(dedupThreshold(req, e.cfg))

	neighbours, err := e.store.KNNTx(tx, req.Embedding, dedupProbeK)
	if err != nil {
		return nil, storeErr("dedup knn probe", err)
	}

	for _, n := range neighbours {
		if n.Distance > bound {
			break
		}
		candidate, err := e.store.GetMemoryTx(tx, n.ID)
		if err != nil {
			return nil, storeErr("dedup candidate lookup", err)
		}
		if candidate == nil {
			continue
		}
		if candidate.Category != req.Category || !candidate.Active() {
			continue
		}

		candidate.Confidence = memtypes.ClampConfidence(candidate.Confidence + dedupBoost)
		candidate.AccessCount++
		candidate.UpdatedAt = now
		if err := e.store.UpdateMemoryTx(tx, candidate); err != nil {
			return nil, storeErr("dedup update", err)
		}
		details, _ := json.Marshal(map[string]string{"reason": "deduplication"})
		if err := e.store.AppendAuditTx(tx, memtypes.AuditUpdate, candidate.ID, details, now); err != nil {
			return nil, storeErr("audit dedup update", err)
		}
		return &StoreMemoryResponse{ID: candidate.ID, Category: candidate.Category, Deduplicated: true}, nil
	}
	return nil, nil
}

func (e *Engine) validateStoreRequest(req *StoreMemoryRequest) error {
	if req.Content == "" {
		return validationErr("content must not be empty")
	}
	if !memtypes.ValidCategory(req.Category) {
		return validationErr("unknown category %q", req.Category)
	}
	if req.HasScope && !memtypes.ValidScope(req.Scope) {
		return validationErr("unknown scope %q", req.Scope)
	}
	if req.HasConfidence && (req.Confidence < 0 || req.Confidence > 1) {
		return validationErr("confidence %v out of range [0,1]", req.Confidence)
	}
	if len(req.Embedding) != e.embedder.Dimensions() {
		return validationErr("embedding dimension %d does not match configured dimension %d", len(req.Embedding), e.embedder.Dimensions())
	}
	return nil
}

func resolveScope(req StoreMemoryRequest) memtypes.Scope {
	if req.HasScope {
		return req.Scope
	}
	return memtypes.DefaultScopeFor(req.Category)
}

func resolveConfidence(req StoreMemoryRequest) float64 {
	if req.HasConfidence {
		return req.Confidence
	}
	return 1.0
}

func dedupThreshold(req StoreMemoryRequest, cfg Config) float64 {
	if req.DedupThresholdOverride > 0 {
		return req.DedupThresholdOverride
	}
	return cfg.DedupThreshold
}
