package main

import (
	"fmt"

	"github.com/KyleWMiller/Loci/internal/embedprovider"
	"github.com/KyleWMiller/Loci/internal/memory"
	"github.com/KyleWMiller/Loci/internal/store"
	"github.com/KyleWMiller/Loci/pkg/config"
)

// openEngine loads configuration, opens the store, builds the configured
// embedder, and wires them into an Engine. Callers must Close the
// returned store when done.
func openEngine() (*memory.Engine, *store.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if group != "" {
		cfg.Storage.DefaultGroup = group
	}

	emb, err := buildEmbedder(embedder)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(cfg.Storage.DBPath, emb.Dimensions())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	eng := memory.New(s, emb, cfg.EngineConfig())
	return eng, s, nil
}

func buildEmbedder(name string) (embedprovider.Embedder, error) {
	switch name {
	case "", "local-hash":
		return embedprovider.NewSerialized(embedprovider.NewHashEmbedder(embedprovider.Dim)), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q (only local-hash is wired without a model download)", name)
	}
}
