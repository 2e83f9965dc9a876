package memory

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/KyleWMiller/Loci/internal/memtypes"
	"github.com/KyleWMiller/Loci/internal/store"
)

const (
	minMaxResults = 1
	maxMaxResults = 20
)

// RecallMemory implements query-recall: vector k-NN + FTS search fused by
// Reciprocal Rank Fusion, hydrated, post-filtered, and gated by a token
// budget (spec.md §4.4 steps 1-8).
func (e *Engine) RecallMemory(ctx context.Context, queryEmbedding []float32, queryText string, filter RecallFilter, cfg RecallConfig) (*RecallResponse, error) {
	if filter.Group == "" {
		return nil, validationErr("recall filter requires a group")
	}
	maxResults := clamp(orDefault(cfg.MaxResults, e.cfg.DefaultMaxResults), minMaxResults, maxMaxResults)
	tokenBudget := orDefault(cfg.TokenBudget, e.cfg.RecallTokenBudget)
	rrfK := orDefault(cfg.RRFK, e.cfg.RRFK)

	fanout := 3 * maxResults

	vecMatches, err := e.store.KNN(queryEmbedding, fanout)
	if err != nil {
		return nil, storeErr("recall vector knn", err)
	}

	var ftsMatches []store.FTSMatch
	if queryText != "" {
		hits, err := e.store.FTSSearch(queryText, fanout)
		if err != nil {
			return nil, storeErr("recall fts search", err)
		}
		ftsMatches = hits
	}

	scores := map[string]float64{}
	for rank, m := range vecMatches {
		scores[m.ID] += 1.0 / float64(rrfK+rank)
	}
	for rank, m := range ftsMatches {
		scores[m.ID] += 1.0 / float64(rrfK+rank)
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j] // stable, arbitrary tie-break
	})

	hydrated, err := e.store.GetMemories(ids)
	if err != nil {
		return nil, storeErr("recall hydrate", err)
	}
	byID := make(map[string]*memtypes.Memory, len(hydrated))
	for _, m := range hydrated {
		byID[m.ID] = m
	}

	var filtered []RecallResult
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			continue
		}
		if !m.Active() {
			continue
		}
		if !scopeAdmitted(m, filter) {
			continue
		}
		if filter.HasCategory && m.Category != filter.Category {
			continue
		}
		if m.Confidence < filter.MinConfidence {
			continue
		}
		filtered = append(filtered, RecallResult{Memory: m, Score: scores[id]})
	}
	totalMatched := len(filtered)

	var out []RecallResult
	usedTokens := 0
	for _, r := range filtered {
		est := len(r.Memory.Content) / 4
		if len(out) > 0 && usedTokens+est > tokenBudget {
			break
		}
		out = append(out, r)
		usedTokens += est
		if len(out) >= maxResults {
			break
		}
	}

	if err := e.trackAccess(out, e.now()); err != nil {
		return nil, err
	}

	if cfg.SummaryOnly {
		usedTokens = 0
		for i := range out {
			out[i] = projectSummary(out[i])
			usedTokens += len(out[i].Preview)/4 + 10
		}
	}

	return &RecallResponse{Results: out, TotalMatched: totalMatched, TokenEstimate: usedTokens}, nil
}

// HydrateByIDs implements the id-hydration entry point: fetch records in
// input order, score fixed at 1.0, with access tracking.
func (e *Engine) HydrateByIDs(ctx context.Context, ids []string) (*RecallResponse, error) {
	hydrated, err := e.store.GetMemories(ids)
	if err != nil {
		return nil, storeErr("hydrate by id", err)
	}
	byID := make(map[string]*memtypes.Memory, len(hydrated))
	for _, m := range hydrated {
		byID[m.ID] = m
	}

	var out []RecallResult
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, RecallResult{Memory: m, Score: 1.0})
		}
	}
	if err := e.trackAccess(out, e.now()); err != nil {
		return nil, err
	}
	tokens := 0
	for _, r := range out {
		tokens += len(r.Memory.Content) / 4
	}
	return &RecallResponse{Results: out, TotalMatched: len(out), TokenEstimate: tokens}, nil
}

func (e *Engine) trackAccess(results []RecallResult, at time.Time) error {
	if len(results) == 0 {
		return nil
	}
	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	tx, err := e.store.Begin()
	if err != nil {
		return storeErr("begin access-tracking transaction", err)
	}
	defer tx.Rollback()
	for _, r := range results {
		if err := e.store.TouchAccessTx(tx, r.Memory.ID, at); err != nil {
			return storeErr("track access", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit access tracking", err)
	}
	return nil
}

func scopeAdmitted(m *memtypes.Memory, filter RecallFilter) bool {
	if m.Scope == memtypes.ScopeGlobal {
		if filter.HasScope && filter.Scope != memtypes.ScopeGlobal {
			return false
		}
		return true
	}
	if m.SourceGroup != filter.Group {
		return false
	}
	if filter.HasScope && filter.Scope != memtypes.ScopeGroup {
		return false
	}
	return true
}

// projectSummary replaces full content with an 80-char preview, Unicode
// code-point-boundary aware. The memory record is copied, so the hydrated
// row is left untouched. RecallMemory re-estimates tokens for summary
// results as len(preview)/4 + 10.
func projectSummary(r RecallResult) RecallResult {
	r.Preview = previewString(r.Memory.Content, summaryPreviewChars)
	summary := *r.Memory
	summary.Content = ""
	r.Memory = &summary
	return r
}

// previewString truncates s to at most n runes, never splitting a
// multi-byte code point.
func previewString(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Inspect implements memory_inspect: the full record plus optionally its
// outbound relations (100-char object preview) and audit history.
func (e *Engine) Inspect(ctx context.Context, id string, includeRelations, includeLog bool) (*InspectResponse, error) {
	m, err := e.store.GetMemory(id)
	if err != nil {
		return nil, storeErr("inspect lookup", err)
	}
	if m == nil {
		return nil, notFoundErr("memory %q does not exist", id)
	}

	resp := &InspectResponse{Memory: m}

	if includeRelations {
		rels, err := e.store.RelationsFor(id)
		if err != nil {
			return nil, storeErr("inspect relations", err)
		}
		for _, r := range rels {
			if r.SubjectID != id {
				continue
			}
			preview := ""
			if obj, err := e.store.GetMemory(r.ObjectID); err == nil && obj != nil {
				preview = previewString(obj.Content, inspectPreviewChars)
			}
			resp.Relations = append(resp.Relations, RelationPreview{Relation: r, ObjectPreview: preview})
		}
	}

	if includeLog {
		entries, err := e.store.AuditHistory(id)
		if err != nil {
			return nil, storeErr("inspect audit log", err)
		}
		resp.Audit = entries
	}

	return resp, nil
}
