package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KyleWMiller/Loci/internal/embedprovider"
	"github.com/KyleWMiller/Loci/internal/memtypes"
	"github.com/KyleWMiller/Loci/internal/store"
)

const testGroup = "test-group"

// newTestEngine opens a fresh temp-file store and wires it to a
// deterministic hash embedder, with a fixed clock callers can advance.
func newTestEngine(t *testing.T, clock *time.Time) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := store.Open(path, embedprovider.Dim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	emb := embedprovider.NewHashEmbedder(embedprovider.Dim)
	cfg := DefaultConfig()
	cfg.DefaultGroup = testGroup

	return New(s, emb, cfg, WithClock(func() time.Time { return *clock }))
}

func mustEmbed(t *testing.T, e *Engine, text string) []float32 {
	t.Helper()
	vec, err := e.Embed(context.Background(), text)
	require.NoError(t, err)
	return vec
}

func storeReq(t *testing.T, e *Engine, content string, cat memtypes.Category) StoreMemoryRequest {
	t.Helper()
	return StoreMemoryRequest{
		Content:   content,
		Category:  cat,
		Group:     testGroup,
		Embedding: mustEmbed(t, e, content),
	}
}
