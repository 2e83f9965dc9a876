package memory

import (
	"context"
	"time"
)

// Stats implements memory_stats. When group is non-empty, spec.md §4.8
// narrows every count to source_group = group OR scope = global; an empty
// group reports whole-store totals. RelationCount is never narrowed, since
// relations are not owned by a single group.
func (e *Engine) Stats(ctx context.Context, group string) (*StatsResponse, error) {
	st, err := e.store.ComputeStats(group)
	if err != nil {
		return nil, storeErr("compute stats", err)
	}

	resp := &StatsResponse{
		TotalCount:      st.TotalCount,
		ActiveCount:     st.ActiveCount,
		SupersededCount: st.SupersededCount,
		CountByCategory: st.CountByCategory,
		CountByScope:    st.CountByScope,
		RelationCount:   st.RelationCount,
		FileSizeBytes:   st.FileSizeBytes,
	}
	if st.OldestCreatedAt != nil {
		resp.OldestCreatedAt = st.OldestCreatedAt.Format(time.RFC3339)
	}
	if st.NewestCreatedAt != nil {
		resp.NewestCreatedAt = st.NewestCreatedAt.Format(time.RFC3339)
	}
	return resp, nil
}

// Health implements the diagnostic command's health check.
func (e *Engine) Health(ctx context.Context) (*HealthResponse, error) {
	st, err := e.store.ComputeStats("")
	if err != nil {
		return nil, storeErr("compute health", err)
	}
	return &HealthResponse{
		SchemaVersion:  st.SchemaVersion,
		EmbeddingModel: st.EmbeddingModel,
		IntegrityOK:    true, // Open() already ran PRAGMA integrity_check and would have failed otherwise
		VecVersion:     st.VecVersion,
		RowCount:       st.TotalCount,
	}, nil
}
