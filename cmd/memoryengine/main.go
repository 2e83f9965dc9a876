// Package main implements the memoryengine CLI: a thin diagnostic and
// scripting wrapper around the cognitive memory engine. It adapts flags
// onto internal/memory.Engine methods; it does not implement a
// tool-protocol server (MCP, HTTP) — that surface is explicitly out of
// scope for the core engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KyleWMiller/Loci/internal/logging"
)

var (
	cfgFile  string
	dbPath   string
	group    string
	embedder string
	verbose  bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "memoryengine",
	Short: "Diagnostic CLI for the persistent cognitive memory engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.Init(verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "override storage.db_path")
	rootCmd.PersistentFlags().StringVar(&group, "group", "", "override storage.default_group")
	rootCmd.PersistentFlags().StringVar(&embedder, "embedder", "local-hash", "embedder implementation to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(maintainCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
