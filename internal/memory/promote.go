package memory

import (
	"context"
	"encoding/json"

	"github.com/KyleWMiller/Loci/internal/memtypes"
	"github.com/KyleWMiller/Loci/internal/store"
)

type promotionResult struct {
	clustersFound    int
	semanticsCreated int
}

// runPromotion clusters similar active episodic rows and distills each
// sufficiently large cluster into a new semantic row (spec.md §4.7).
// Episodic sources are never superseded; they retain event-level context.
func (e *Engine) runPromotion(ctx context.Context) (promotionResult, error) {
	rows, err := e.store.ListByCategory(memtypes.CategoryEpisodic)
	if err != nil {
		return promotionResult{}, storeErr("promotion list episodic", err)
	}

	byID := make(map[string]*memtypes.Memory, len(rows))
	for _, m := range rows {
		byID[m.ID] = m
	}
	processed := map[string]bool{}
	bound := store.CosineToL2(e.cfg.PromotionSimilarity)

	var result promotionResult
	for _, m := range rows {
		if processed[m.ID] {
			continue
		}
		vec, err := e.store.GetVector(m.ID)
		if err != nil || vec == nil {
			processed[m.ID] = true
			continue
		}
		neighbours, err := e.store.KNN(vec, promotionClusterProbeK)
		if err != nil {
			return result, storeErr("promotion knn probe", err)
		}

		var cluster []*memtypes.Memory
		for _, n := range neighbours {
			if n.Distance > bound {
				break
			}
			cand, ok := byID[n.ID]
			if !ok || processed[n.ID] || !cand.Active() {
				continue
			}
			cluster = append(cluster, cand)
		}

		if len(cluster) < e.cfg.PromotionThreshold {
			processed[m.ID] = true
			continue
		}

		result.clustersFound++
		for _, c := range cluster {
			processed[c.ID] = true
		}

		exemplar := cluster[0]
		for _, c := range cluster[1:] {
			if c.AccessCount > exemplar.AccessCount {
				exemplar = c
			}
		}

		sourceIDs := make([]string, len(cluster))
		for i, c := range cluster {
			sourceIDs[i] = c.ID
		}
		metadata, _ := json.Marshal(map[string]any{
			"promoted_from": "episodic",
			"source_ids":    sourceIDs,
		})

		embedding, err := e.Embed(ctx, exemplar.Content)
		if err != nil {
			return result, err
		}

		resp, err := e.StoreMemory(ctx, StoreMemoryRequest{
			Content:                exemplar.Content,
			Category:               memtypes.CategorySemantic,
			Group:                  exemplar.SourceGroup,
			Scope:                  exemplar.Scope,
			HasScope:               true,
			Metadata:               metadata,
			Embedding:              embedding,
			DedupThresholdOverride: e.cfg.PromotionSimilarity,
		})
		if err != nil {
			return result, err
		}

		if !resp.Deduplicated {
			result.semanticsCreated++
			details, _ := json.Marshal(map[string]any{
				"action":       "promote",
				"source_count": len(cluster),
				"source_ids":   sourceIDs,
			})
			if err := e.store.AppendAudit(memtypes.AuditCompact, resp.ID, details, e.now()); err != nil {
				return result, storeErr("audit promotion", err)
			}
		}
	}
	return result, nil
}
