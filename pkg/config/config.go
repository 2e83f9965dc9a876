// Package config loads the memory engine's configuration from a YAML file,
// environment variables, and flags via viper, following the layered
// precedence the teacher's config loader and MycelicMemory/steveyegge-beads
// both use (flags > env > file > defaults).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/KyleWMiller/Loci/internal/memory"
)

// Config mirrors the key groups enumerated in spec.md §6.
type Config struct {
	Server struct {
		Transport string `mapstructure:"transport"`
	} `mapstructure:"server"`

	Storage struct {
		DBPath       string `mapstructure:"db_path"`
		DefaultGroup string `mapstructure:"default_group"`
	} `mapstructure:"storage"`

	Embedding struct {
		Model    string `mapstructure:"model"`
		CacheDir string `mapstructure:"cache_dir"`
	} `mapstructure:"embedding"`

	Retrieval struct {
		DefaultMaxResults int     `mapstructure:"default_max_results"`
		RecallTokenBudget int     `mapstructure:"recall_token_budget"`
		RRFK              int     `mapstructure:"rrf_k"`
		DedupThreshold    float64 `mapstructure:"dedup_threshold"`
	} `mapstructure:"retrieval"`

	Maintenance struct {
		EpisodicDecayFactor   float64 `mapstructure:"episodic_decay_factor"`
		SemanticDecayFactor   float64 `mapstructure:"semantic_decay_factor"`
		CompactionAgeDays     int     `mapstructure:"compaction_age_days"`
		CompactionMinGroupSize int    `mapstructure:"compaction_min_group_size"`
		PromotionThreshold    int     `mapstructure:"promotion_threshold"`
		PromotionSimilarity   float64 `mapstructure:"promotion_similarity"`
		CleanupConfidenceFloor float64 `mapstructure:"cleanup_confidence_floor"`
		CleanupNoAccessDays   int     `mapstructure:"cleanup_no_access_days"`
	} `mapstructure:"maintenance"`
}

// Load resolves configuration from an optional file path plus environment
// overrides. LOCI_DB, LOCI_GROUP, and LOCI_LOG_LEVEL are the three
// documented env overrides; AutomaticEnv additionally lets any
// LOCI_SECTION_KEY-shaped env var override its matching viper key.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LOCI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("storage.db_path", "LOCI_DB")
	_ = v.BindEnv("storage.default_group", "LOCI_GROUP")
	_ = v.BindEnv("log.level", "LOCI_LOG_LEVEL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Storage.DBPath = expandTilde(cfg.Storage.DBPath)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", "none")

	v.SetDefault("storage.db_path", "~/.loci/memory.db")
	v.SetDefault("storage.default_group", "default")

	v.SetDefault("embedding.model", "local-hash")
	v.SetDefault("embedding.cache_dir", "~/.loci/models")

	v.SetDefault("retrieval.default_max_results", 5)
	v.SetDefault("retrieval.recall_token_budget", 4000)
	v.SetDefault("retrieval.rrf_k", 60)
	v.SetDefault("retrieval.dedup_threshold", 0.92)

	v.SetDefault("maintenance.episodic_decay_factor", 0.95)
	v.SetDefault("maintenance.semantic_decay_factor", 0.99)
	v.SetDefault("maintenance.compaction_age_days", 30)
	v.SetDefault("maintenance.compaction_min_group_size", 5)
	v.SetDefault("maintenance.promotion_threshold", 3)
	v.SetDefault("maintenance.promotion_similarity", 0.88)
	v.SetDefault("maintenance.cleanup_confidence_floor", 0.05)
	v.SetDefault("maintenance.cleanup_no_access_days", 90)
}

func expandTilde(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// EngineConfig projects the loaded config onto memory.Config.
func (c *Config) EngineConfig() memory.Config {
	cfg := memory.DefaultConfig()
	cfg.DefaultGroup = c.Storage.DefaultGroup
	cfg.DefaultMaxResults = c.Retrieval.DefaultMaxResults
	cfg.RecallTokenBudget = c.Retrieval.RecallTokenBudget
	cfg.RRFK = c.Retrieval.RRFK
	cfg.DedupThreshold = c.Retrieval.DedupThreshold
	cfg.EpisodicDecayFactor = c.Maintenance.EpisodicDecayFactor
	cfg.SemanticDecayFactor = c.Maintenance.SemanticDecayFactor
	cfg.CompactionAgeDays = c.Maintenance.CompactionAgeDays
	cfg.CompactionMinGroup = c.Maintenance.CompactionMinGroupSize
	cfg.PromotionThreshold = c.Maintenance.PromotionThreshold
	cfg.PromotionSimilarity = c.Maintenance.PromotionSimilarity
	cfg.CleanupConfidenceFloor = c.Maintenance.CleanupConfidenceFloor
	cfg.CleanupNoAccessDays = c.Maintenance.CleanupNoAccessDays
	return cfg
}
