package memory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleWMiller/Loci/internal/embedprovider"
	"github.com/KyleWMiller/Loci/internal/store"
)

func TestNewSeedsEmbeddingModelOnFreshStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := store.Open(path, embedprovider.Dim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	emb := embedprovider.NewHashEmbedder(embedprovider.Dim)
	now := time.Now().UTC()
	_ = New(s, emb, DefaultConfig(), WithClock(func() time.Time { return now }))

	stored, ok, err := s.GetMetadata(store.MetaKeyEmbeddingModel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, emb.Name(), stored)
}

func TestNewLeavesMismatchedEmbeddingModelStoredButWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := store.Open(path, embedprovider.Dim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SetMetadata(store.MetaKeyEmbeddingModel, "some-other-model"))

	emb := embedprovider.NewHashEmbedder(embedprovider.Dim)
	now := time.Now().UTC()
	_ = New(s, emb, DefaultConfig(), WithClock(func() time.Time { return now }))

	// A mismatch is logged, not silently overwritten; the stored value is
	// left in place so a later re-embed step still knows what it was.
	stored, ok, err := s.GetMetadata(store.MetaKeyEmbeddingModel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "some-other-model", stored)
}
