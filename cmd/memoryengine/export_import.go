package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KyleWMiller/Loci/internal/memory"
)

var exportOutPath string
var importInPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every memory and relation as a JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := openEngine()
		if err != nil {
			return err
		}
		defer s.Close()

		doc, err := eng.Export(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(exportOutPath, doc)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a previously exported JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importInPath == "" {
			return fmt.Errorf("--in is required")
		}
		eng, s, err := openEngine()
		if err != nil {
			return err
		}
		defer s.Close()

		var doc memory.ExportDocument
		f, err := os.Open(importInPath)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&doc); err != nil {
			return fmt.Errorf("decode import file: %w", err)
		}

		res, err := eng.Import(cmd.Context(), &doc)
		if err != nil {
			return err
		}
		fmt.Printf("memories imported: %d, skipped: %d\n", res.MemoriesImported, res.MemoriesSkipped)
		fmt.Printf("relations imported: %d, skipped: %d\n", res.RelationsImported, res.RelationsSkipped)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutPath, "out", "", "write to this file instead of stdout")
	importCmd.Flags().StringVar(&importInPath, "in", "", "read the export document from this file")
}

func writeJSON(path string, v any) error {
	enc := json.NewEncoder(os.Stdout)
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		enc = json.NewEncoder(f)
	}
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
