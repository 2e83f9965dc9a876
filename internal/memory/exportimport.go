package memory

import (
	"context"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// ExportDocument is the structured export/import format (spec.md §6):
// full records for every memory and relation.
type ExportDocument struct {
	Memories  []*memtypes.Memory   `json:"memories"`
	Relations []*memtypes.Relation `json:"relations"`
}

// Export dumps every memory and relation row, active and superseded.
func (e *Engine) Export(ctx context.Context) (*ExportDocument, error) {
	memories, err := e.store.ListAllMemories()
	if err != nil {
		return nil, storeErr("export list memories", err)
	}
	relations, err := e.store.ListAllRelations()
	if err != nil {
		return nil, storeErr("export list relations", err)
	}
	return &ExportDocument{Memories: memories, Relations: relations}, nil
}

// ImportResult summarizes what an Import call actually did.
type ImportResult struct {
	MemoriesImported  int
	MemoriesSkipped   int
	RelationsImported int
	RelationsSkipped  int
}

// Import applies an ExportDocument: memories whose id already exists are
// skipped, everything else is re-embedded through the current provider and
// inserted by importMemory with its original id. Import does not go
// through StoreMemory and runs no dedup gate, so it never collapses two
// distinct historical rows together. Relations are created only when both
// endpoints exist after the memory pass.
func (e *Engine) Import(ctx context.Context, doc *ExportDocument) (*ImportResult, error) {
	res := &ImportResult{}

	for _, m := range doc.Memories {
		existing, err := e.store.GetMemory(m.ID)
		if err != nil {
			return res, storeErr("import lookup existing memory", err)
		}
		if existing != nil {
			res.MemoriesSkipped++
			continue
		}

		embedding, err := e.Embed(ctx, m.Content)
		if err != nil {
			return res, err
		}
		if err := e.importMemory(ctx, m, embedding); err != nil {
			return res, err
		}
		res.MemoriesImported++
	}

	for _, r := range doc.Relations {
		subject, err := e.store.GetMemory(r.SubjectID)
		if err != nil {
			return res, storeErr("import relation subject lookup", err)
		}
		object, err := e.store.GetMemory(r.ObjectID)
		if err != nil {
			return res, storeErr("import relation object lookup", err)
		}
		if subject == nil || object == nil {
			res.RelationsSkipped++
			continue
		}
		if _, err := e.StoreRelation(ctx, r.SubjectID, r.Predicate, r.ObjectID); err != nil {
			return res, err
		}
		res.RelationsImported++
	}

	return res, nil
}

// importMemory inserts one imported row preserving its original id,
// timestamps, confidence, and supersession state, through the same
// three-index transactional insert the normal write path uses, but
// without minting a fresh identifier or running the dedup gate (import
// dedup is handled up front by the id-exists check in Import).
func (e *Engine) importMemory(ctx context.Context, m *memtypes.Memory, embedding []float32) error {
	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	tx, err := e.store.Begin()
	if err != nil {
		return storeErr("begin import transaction", err)
	}
	defer tx.Rollback()

	if err := e.store.InsertMemoryTx(tx, m); err != nil {
		return storeErr("import insert memory row", err)
	}
	rowid, err := e.store.RowIDTx(tx, m.ID)
	if err != nil {
		return storeErr("import resolve rowid", err)
	}
	if err := e.store.InsertFTSTx(tx, rowid, m.Content, string(m.Category)); err != nil {
		return storeErr("import insert fts row", err)
	}
	if err := e.store.UpsertVectorTx(tx, m.ID, embedding); err != nil {
		return storeErr("import insert vector row", err)
	}
	if err := e.store.AppendAuditTx(tx, memtypes.AuditCreate, m.ID, nil, e.now()); err != nil {
		return storeErr("import audit create", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit import", err)
	}
	return nil
}
