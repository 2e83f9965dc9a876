package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

func TestStoreMemoryWriteReadRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	resp, err := e.StoreMemory(ctx, storeReq(t, e, "had coffee with Priya", memtypes.CategoryEpisodic))
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	assert.False(t, resp.Deduplicated)

	got, err := e.Inspect(ctx, resp.ID, false, false)
	require.NoError(t, err)
	assert.Equal(t, "had coffee with Priya", got.Memory.Content)
	assert.True(t, got.Memory.Active())
}

func TestStoreMemoryDedupBoostsExistingRow(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	req := storeReq(t, e, "standup notes: shipped the migration", memtypes.CategoryEpisodic)
	first, err := e.StoreMemory(ctx, req)
	require.NoError(t, err)
	require.False(t, first.Deduplicated)

	before, err := e.Inspect(ctx, first.ID, false, false)
	require.NoError(t, err)
	startConfidence := before.Memory.Confidence

	now = now.Add(time.Minute)
	second, err := e.StoreMemory(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.ID, second.ID)

	after, err := e.Inspect(ctx, first.ID, false, false)
	require.NoError(t, err)
	assert.Greater(t, after.Memory.Confidence, startConfidence)
	assert.Equal(t, int64(1), after.Memory.AccessCount)
}

func TestStoreMemoryCrossCategoryDoesNotMerge(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	content := "Priya is the backend lead"
	episodic, err := e.StoreMemory(ctx, storeReq(t, e, content, memtypes.CategoryEpisodic))
	require.NoError(t, err)

	semantic, err := e.StoreMemory(ctx, storeReq(t, e, content, memtypes.CategorySemantic))
	require.NoError(t, err)

	assert.NotEqual(t, episodic.ID, semantic.ID)
	assert.False(t, semantic.Deduplicated)
}

func TestStoreMemorySupersessionHidesOriginal(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	original, err := e.StoreMemory(ctx, storeReq(t, e, "the deploy process is manual", memtypes.CategoryProcedural))
	require.NoError(t, err)

	req := storeReq(t, e, "the deploy process is now automated via CI", memtypes.CategoryProcedural)
	req.Supersedes = original.ID
	replacement, err := e.StoreMemory(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, original.ID, replacement.Superseded)

	oldRow, err := e.Inspect(ctx, original.ID, false, false)
	require.NoError(t, err)
	assert.False(t, oldRow.Memory.Active())
	assert.Equal(t, replacement.ID, oldRow.Memory.SupersededBy)
}

func TestStoreMemoryValidation(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	_, err := e.StoreMemory(ctx, StoreMemoryRequest{Category: memtypes.CategoryEpisodic, Embedding: mustEmbed(t, e, "x")})
	assert.Error(t, err, "empty content must be rejected")

	_, err = e.StoreMemory(ctx, StoreMemoryRequest{Content: "x", Category: memtypes.Category("bogus"), Embedding: mustEmbed(t, e, "x")})
	assert.Error(t, err, "unknown category must be rejected")

	_, err = e.StoreMemory(ctx, StoreMemoryRequest{Content: "x", Category: memtypes.CategoryEpisodic, Embedding: []float32{1, 2, 3}})
	assert.Error(t, err, "wrong embedding dimension must be rejected")
}
