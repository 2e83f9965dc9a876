package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// compactionGroupResult is one emitted summary.
type compactionGroupResult struct {
	summaryID   string
	sourceCount int
}

// runCompaction groups old episodic rows by (source_group, ISO year-week)
// and merges each group of at least CompactionMinGroup members into a new
// summary row, superseding the members (spec.md §4.7).
func (e *Engine) runCompaction(ctx context.Context) ([]compactionGroupResult, error) {
	cutoff := e.now().Add(-e.cfg.compactionAge())

	rows, err := e.store.ListByCategory(memtypes.CategoryEpisodic)
	if err != nil {
		return nil, storeErr("compaction list episodic", err)
	}

	groups := map[string][]*memtypes.Memory{}
	var order []string
	for _, m := range rows {
		if !m.CreatedAt.Before(cutoff) {
			continue
		}
		key := isoWeekGroupKey(m.SourceGroup, m)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}
	sort.Strings(order)

	var results []compactionGroupResult
	for _, key := range order {
		members := groups[key]
		if len(members) < e.cfg.CompactionMinGroup {
			continue
		}
		res, err := e.compactGroup(ctx, members)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func isoWeekGroupKey(group string, m *memtypes.Memory) string {
	year, week := m.CreatedAt.ISOWeek()
	return fmt.Sprintf("%s|%04d-W%02d", group, year, week)
}

func (e *Engine) compactGroup(ctx context.Context, members []*memtypes.Memory) (compactionGroupResult, error) {
	sort.Slice(members, func(i, j int) bool { return members[i].CreatedAt.Before(members[j].CreatedAt) })

	contents := make([]string, len(members))
	for i, m := range members {
		contents[i] = m.Content
	}
	merged := strings.Join(contents, "\n---\n")
	truncated := truncateBytesUTF8(merged, compactionTruncateBytes)

	embedding, err := e.Embed(ctx, truncated)
	if err != nil {
		return compactionGroupResult{}, err
	}

	first := members[0]
	req := StoreMemoryRequest{
		Content:                truncated,
		Category:               memtypes.CategoryEpisodic,
		Group:                  first.SourceGroup,
		Scope:                  first.Scope,
		HasScope:               true,
		Embedding:              embedding,
		DedupThresholdOverride: compactionDedupThreshold,
	}
	resp, err := e.StoreMemory(ctx, req)
	if err != nil {
		return compactionGroupResult{}, err
	}

	if err := e.supersedeCompactedMembers(members, resp.ID, e.now()); err != nil {
		return compactionGroupResult{}, err
	}

	return compactionGroupResult{summaryID: resp.ID, sourceCount: len(members)}, nil
}

// supersedeCompactedMembers marks every compacted member superseded by the
// new summary row and records one audit entry, as its own locked logical
// operation separate from the StoreMemory call that produced summaryID
// (StoreMemory takes the same lock itself, so the two must not nest).
func (e *Engine) supersedeCompactedMembers(members []*memtypes.Memory, summaryID string, now time.Time) error {
	e.store.Mu.Lock()
	defer e.store.Mu.Unlock()

	tx, err := e.store.Begin()
	if err != nil {
		return storeErr("begin compaction supersede transaction", err)
	}
	defer tx.Rollback()

	for _, m := range members {
		m.SupersededBy = summaryID
		m.UpdatedAt = now
		if err := e.store.UpdateMemoryTx(tx, m); err != nil {
			return storeErr("supersede compacted member", err)
		}
	}
	details, _ := json.Marshal(map[string]any{"source_count": len(members), "summary_id": summaryID})
	if err := e.store.AppendAuditTx(tx, memtypes.AuditCompact, summaryID, details, now); err != nil {
		return storeErr("audit compaction", err)
	}
	return tx.Commit()
}

// truncateBytesUTF8 truncates s to at most maxBytes bytes without
// splitting a multi-byte rune, appending "..." when truncation occurred.
func truncateBytesUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	suffix := "..."
	limit := maxBytes - len(suffix)
	if limit < 0 {
		limit = 0
	}
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + suffix
}
