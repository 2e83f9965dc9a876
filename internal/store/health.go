package store

import (
	"database/sql"
	"fmt"
	"os"
	"time"
)

// Stats summarizes the store's contents for the CLI's stats/doctor
// subcommands and for memory.Engine.Health.
type Stats struct {
	TotalCount      int
	ActiveCount     int
	SupersededCount int
	CountByCategory map[string]int
	CountByScope    map[string]int
	RelationCount   int
	FileSizeBytes   int64
	OldestCreatedAt *time.Time
	NewestCreatedAt *time.Time
	SchemaVersion   int
	EmbeddingModel  string
	VecVersion      string
}

// groupFilter builds the WHERE clause spec.md §4.8 mandates for a
// group-scoped stats query: memories owned by group, plus every
// global-scope memory regardless of owner. An empty group means no
// filter at all (whole-store totals).
func groupFilter(group string) (clause string, args []any) {
	if group == "" {
		return "", nil
	}
	return "WHERE (source_group = ? OR scope = 'global')", []any{group}
}

// andOr returns "AND" when where is a non-empty WHERE clause (so a second
// predicate can be appended) or "WHERE" when where is empty.
func andOr(where string) string {
	if where == "" {
		return "WHERE"
	}
	return "AND"
}

// ComputeStats gathers the aggregate counts and file metadata used by the
// CLI's stats and doctor subcommands. When group is non-empty, every count
// (except RelationCount, which always reports the whole store) is narrowed
// to that group's memories plus global-scope memories, per spec.md §4.8.
func (s *Store) ComputeStats(group string) (*Stats, error) {
	st := &Stats{CountByCategory: map[string]int{}, CountByScope: map[string]int{}}
	where, args := groupFilter(group)

	catRows, err := s.DB.Query(fmt.Sprintf(`SELECT category, COUNT(*) FROM memories %s %s superseded_by IS NULL GROUP BY category`,
		where, andOr(where)), args...)
	if err != nil {
		return nil, fmt.Errorf("store: stats by category: %w", err)
	}
	for catRows.Next() {
		var cat string
		var n int
		if err := catRows.Scan(&cat, &n); err != nil {
			catRows.Close()
			return nil, fmt.Errorf("store: stats category scan: %w", err)
		}
		st.CountByCategory[cat] = n
	}
	catRows.Close()
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	scopeRows, err := s.DB.Query(fmt.Sprintf(`SELECT scope, COUNT(*) FROM memories %s %s superseded_by IS NULL GROUP BY scope`,
		where, andOr(where)), args...)
	if err != nil {
		return nil, fmt.Errorf("store: stats by scope: %w", err)
	}
	for scopeRows.Next() {
		var scope string
		var n int
		if err := scopeRows.Scan(&scope, &n); err != nil {
			scopeRows.Close()
			return nil, fmt.Errorf("store: stats scope scan: %w", err)
		}
		st.CountByScope[scope] = n
	}
	scopeRows.Close()
	if err := scopeRows.Err(); err != nil {
		return nil, err
	}

	if err := s.DB.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM memories %s`, where), args...).Scan(&st.TotalCount); err != nil {
		return nil, fmt.Errorf("store: stats total count: %w", err)
	}
	if err := s.DB.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM memories %s %s superseded_by IS NULL`, where, andOr(where)), args...).Scan(&st.ActiveCount); err != nil {
		return nil, fmt.Errorf("store: stats active count: %w", err)
	}
	st.SupersededCount = st.TotalCount - st.ActiveCount

	relCount, err := s.RelationCount()
	if err != nil {
		return nil, err
	}
	st.RelationCount = relCount

	var oldest, newest sql.NullTime
	err = s.DB.QueryRow(fmt.Sprintf(`SELECT MIN(created_at), MAX(created_at) FROM memories %s`, where), args...).Scan(&oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("store: stats min/max created_at: %w", err)
	}
	if oldest.Valid {
		t := oldest.Time
		st.OldestCreatedAt = &t
	}
	if newest.Valid {
		t := newest.Time
		st.NewestCreatedAt = &t
	}

	if fi, err := os.Stat(s.path); err == nil {
		st.FileSizeBytes = fi.Size()
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return nil, err
	}
	st.SchemaVersion = version

	if model, ok, err := s.GetMetadata(MetaKeyEmbeddingModel); err != nil {
		return nil, err
	} else if ok {
		st.EmbeddingModel = model
	}

	var vecVersion string
	if err := s.DB.QueryRow(`SELECT vec_version()`).Scan(&vecVersion); err == nil {
		st.VecVersion = vecVersion
	}

	return st, nil
}
