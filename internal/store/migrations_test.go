package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetMetadata(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetMetadata("missing-key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetMetadata("foo", "bar"))
	v, ok, err := s.GetMetadata("foo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bar", v)

	require.NoError(t, s.SetMetadata("foo", "baz"))
	v2, _, err := s.GetMetadata("foo")
	require.NoError(t, err)
	assert.Equal(t, "baz", v2)
}

func TestMigrateV2SeedsEmbeddingModelKey(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.GetMetadata(MetaKeyEmbeddingModel)
	require.NoError(t, err)
	assert.True(t, ok, "migrateV2 should seed an empty embedding_model row on a fresh store")
}

func TestSchemaVersionMatchesCurrent(t *testing.T) {
	s := openTestStore(t)
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)
}
