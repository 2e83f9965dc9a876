package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// decayFactors maps each category to its configured decay multiplier.
// Episodic decays fastest; the rest share the slower factor.
func (e *Engine) decayFactors() map[memtypes.Category]float64 {
	return map[memtypes.Category]float64{
		memtypes.CategoryEpisodic:   e.cfg.EpisodicDecayFactor,
		memtypes.CategorySemantic:   e.cfg.SemanticDecayFactor,
		memtypes.CategoryProcedural: e.cfg.SemanticDecayFactor,
		memtypes.CategoryEntity:     e.cfg.SemanticDecayFactor,
	}
}

// runDecay multiplies every active row's confidence by its category's
// decay factor, one category at a time, auditing the batch under a
// synthetic "batch:<category>" key.
func (e *Engine) runDecay(ctx context.Context) (map[string]int, error) {
	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	now := e.now()
	results := map[string]int{}

	for cat, factor := range e.decayFactors() {
		tx, err := e.store.Begin()
		if err != nil {
			return results, storeErr("begin decay transaction", err)
		}

		n, err := e.store.DecayCategoryTx(tx, cat, factor, now)
		if err != nil {
			tx.Rollback()
			return results, storeErr(fmt.Sprintf("decay category %s", cat), err)
		}

		details, _ := json.Marshal(map[string]any{"category": string(cat), "factor": factor, "count": n})
		if err := e.store.AppendAuditTx(tx, memtypes.AuditDecay, "batch:"+string(cat), details, now); err != nil {
			tx.Rollback()
			return results, storeErr("audit decay batch", err)
		}

		if err := tx.Commit(); err != nil {
			return results, storeErr("commit decay", err)
		}
		results[string(cat)] = int(n)
	}
	return results, nil
}
