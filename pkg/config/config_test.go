package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Storage.DefaultGroup)
	assert.Equal(t, 5, cfg.Retrieval.DefaultMaxResults)
	assert.Equal(t, 0.92, cfg.Retrieval.DedupThreshold)
	assert.Equal(t, "local-hash", cfg.Embedding.Model)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Storage.DefaultGroup)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  default_group: team-rocket
retrieval:
  default_max_results: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "team-rocket", cfg.Storage.DefaultGroup)
	assert.Equal(t, 10, cfg.Retrieval.DefaultMaxResults)
}

func TestLoadEnvOverridesDBAndGroup(t *testing.T) {
	t.Setenv("LOCI_DB", "/tmp/custom.db")
	t.Setenv("LOCI_GROUP", "env-group")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.Storage.DBPath)
	assert.Equal(t, "env-group", cfg.Storage.DefaultGroup)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".loci/memory.db"), expandTilde("~/.loci/memory.db"))
	assert.Equal(t, "/absolute/path", expandTilde("/absolute/path"))
}

func TestEngineConfigProjection(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	ec := cfg.EngineConfig()
	assert.Equal(t, cfg.Storage.DefaultGroup, ec.DefaultGroup)
	assert.Equal(t, cfg.Retrieval.DedupThreshold, ec.DedupThreshold)
	assert.Equal(t, cfg.Maintenance.CompactionMinGroupSize, ec.CompactionMinGroup)
}
