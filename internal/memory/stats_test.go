package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

func TestStatsReflectsStoredMemories(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	_, err := e.StoreMemory(ctx, storeReq(t, e, "one fact", memtypes.CategorySemantic))
	require.NoError(t, err)
	_, err = e.StoreMemory(ctx, storeReq(t, e, "another fact entirely", memtypes.CategoryEpisodic))
	require.NoError(t, err)

	stats, err := e.Stats(ctx, testGroup)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, 2, stats.ActiveCount)
	assert.Equal(t, 0, stats.SupersededCount)
}

func TestStatsGroupFilterExcludesOtherGroups(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	ctx := context.Background()

	req := storeReq(t, e, "team rocket's plan", memtypes.CategorySemantic)
	req.Group = "team-rocket"
	_, err := e.StoreMemory(ctx, req)
	require.NoError(t, err)

	_, err = e.StoreMemory(ctx, storeReq(t, e, "default group's note", memtypes.CategorySemantic))
	require.NoError(t, err)

	stats, err := e.Stats(ctx, "team-rocket")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCount)
}

func TestHealthReportsSchemaVersion(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)

	h, err := e.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.IntegrityOK)
	assert.Greater(t, h.SchemaVersion, 0)
}
