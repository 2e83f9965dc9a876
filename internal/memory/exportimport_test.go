package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

func TestExportImportRoundTripPreservesIDs(t *testing.T) {
	now := time.Now().UTC()
	src := newTestEngine(t, &now)
	ctx := context.Background()

	alice, err := src.StoreMemory(ctx, storeReq(t, src, "Alice", memtypes.CategoryEntity))
	require.NoError(t, err)
	bob, err := src.StoreMemory(ctx, storeReq(t, src, "Bob", memtypes.CategoryEntity))
	require.NoError(t, err)
	_, err = src.StoreRelation(ctx, alice.ID, "manages", bob.ID)
	require.NoError(t, err)

	doc, err := src.Export(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Memories, 2)
	require.Len(t, doc.Relations, 1)

	dst := newTestEngine(t, &now)
	res, err := dst.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 2, res.MemoriesImported)
	assert.Equal(t, 0, res.MemoriesSkipped)
	assert.Equal(t, 1, res.RelationsImported)
	assert.Equal(t, 0, res.RelationsSkipped)

	gotAlice, err := dst.Inspect(ctx, alice.ID, true, false)
	require.NoError(t, err)
	assert.Equal(t, "Alice", gotAlice.Memory.Content)
	require.Len(t, gotAlice.Relations, 1)
	assert.Equal(t, bob.ID, gotAlice.Relations[0].Relation.ObjectID)
}

func TestImportSkipsExistingIDsAndDanglingRelations(t *testing.T) {
	now := time.Now().UTC()
	src := newTestEngine(t, &now)
	ctx := context.Background()

	alice, err := src.StoreMemory(ctx, storeReq(t, src, "Alice", memtypes.CategoryEntity))
	require.NoError(t, err)

	doc, err := src.Export(ctx)
	require.NoError(t, err)
	doc.Relations = append(doc.Relations, &memtypes.Relation{
		ID: "dangling", SubjectID: alice.ID, Predicate: "knows", ObjectID: "ghost-id", CreatedAt: now,
	})

	// Importing into the same store: the memory id already exists, the
	// relation references an id that was never exported.
	res, err := src.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, res.MemoriesImported)
	assert.Equal(t, 1, res.MemoriesSkipped)
	assert.Equal(t, 0, res.RelationsImported)
	assert.Equal(t, 1, res.RelationsSkipped)
}
