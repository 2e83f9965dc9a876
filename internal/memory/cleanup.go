package memory

import (
	"context"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// CleanupPreview is one dry-run cleanup candidate.
type CleanupPreview struct {
	ID      string
	Preview string
}

// PreviewCleanup returns cleanup candidates without deleting anything.
func (e *Engine) PreviewCleanup(ctx context.Context) ([]CleanupPreview, error) {
	candidates, err := e.cleanupCandidates()
	if err != nil {
		return nil, err
	}
	out := make([]CleanupPreview, len(candidates))
	for i, m := range candidates {
		out[i] = CleanupPreview{ID: m.ID, Preview: previewString(m.Content, summaryPreviewChars)}
	}
	return out, nil
}

// runCleanup hard-deletes every active row that is both low-confidence and
// long-untouched (spec.md §4.7).
func (e *Engine) runCleanup(ctx context.Context) (int, error) {
	candidates, err := e.cleanupCandidates()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range candidates {
		if _, err := e.ForgetMemory(ctx, m.ID, "cleanup", true); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (e *Engine) cleanupCandidates() ([]*memtypes.Memory, error) {
	cutoff := e.now().Add(-e.cfg.cleanupNoAccessAge())
	candidates, err := e.store.ListCleanupCandidates(e.cfg.CleanupConfidenceFloor, cutoff)
	if err != nil {
		return nil, storeErr("cleanup candidates", err)
	}
	return candidates, nil
}
