package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// StoreRelation implements store_relation: validates both endpoints exist
// and are category=entity, dedups on the full triple, and inserts a new
// relation row otherwise. Idempotent under repeated calls.
func (e *Engine) StoreRelation(ctx context.Context, subjectID, predicate, objectID string) (*StoreRelationResponse, error) {
	if predicate == "" {
		return nil, validationErr("predicate must not be empty")
	}

	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	tx, err := e.store.Begin()
	if err != nil {
		return nil, storeErr("begin relation transaction", err)
	}
	defer tx.Rollback()

	subject, err := e.store.GetMemoryTx(tx, subjectID)
	if err != nil {
		return nil, storeErr("relation subject lookup", err)
	}
	if subject == nil {
		return nil, notFoundErr("relation subject %q does not exist", subjectID)
	}
	if subject.Category != memtypes.CategoryEntity {
		return nil, typeMismatchErr("relation subject %q is not category=entity", subjectID)
	}

	object, err := e.store.GetMemoryTx(tx, objectID)
	if err != nil {
		return nil, storeErr("relation object lookup", err)
	}
	if object == nil {
		return nil, notFoundErr("relation object %q does not exist", objectID)
	}
	if object.Category != memtypes.CategoryEntity {
		return nil, typeMismatchErr("relation object %q is not category=entity", objectID)
	}

	if existingID, ok, err := e.store.RelationIDIfExistsTx(tx, subjectID, predicate, objectID); err != nil {
		return nil, storeErr("relation dedup lookup", err)
	} else if ok {
		if err := tx.Commit(); err != nil {
			return nil, storeErr("commit relation dedup", err)
		}
		return &StoreRelationResponse{ID: existingID, Deduplicated: true}, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeErr("mint relation identifier", err)
	}
	rel := &memtypes.Relation{
		ID:        id.String(),
		SubjectID: subjectID,
		Predicate: predicate,
		ObjectID:  objectID,
		CreatedAt: e.now(),
	}
	if err := e.store.InsertRelationTx(tx, rel); err != nil {
		return nil, storeErr("insert relation", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit relation insert", err)
	}
	return &StoreRelationResponse{ID: rel.ID, Deduplicated: false}, nil
}
