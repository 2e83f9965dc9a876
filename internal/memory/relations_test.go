package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

func TestStoreRelationDedupsOnFullTriple(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	alice, err := e.StoreMemory(ctx, storeReq(t, e, "Alice", memtypes.CategoryEntity))
	require.NoError(t, err)
	bob, err := e.StoreMemory(ctx, storeReq(t, e, "Bob", memtypes.CategoryEntity))
	require.NoError(t, err)

	first, err := e.StoreRelation(ctx, alice.ID, "manages", bob.ID)
	require.NoError(t, err)
	assert.False(t, first.Deduplicated)

	second, err := e.StoreRelation(ctx, alice.ID, "manages", bob.ID)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.ID, second.ID)
}

func TestStoreRelationRejectsNonEntityEndpoints(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	alice, err := e.StoreMemory(ctx, storeReq(t, e, "Alice", memtypes.CategoryEntity))
	require.NoError(t, err)
	episode, err := e.StoreMemory(ctx, storeReq(t, e, "went for a walk", memtypes.CategoryEpisodic))
	require.NoError(t, err)

	_, err = e.StoreRelation(ctx, alice.ID, "did", episode.ID)
	assert.Error(t, err)
}

func TestStoreRelationRejectsUnknownEndpoint(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	alice, err := e.StoreMemory(ctx, storeReq(t, e, "Alice", memtypes.CategoryEntity))
	require.NoError(t, err)

	_, err = e.StoreRelation(ctx, alice.ID, "knows", "nonexistent-id")
	assert.Error(t, err)
}
