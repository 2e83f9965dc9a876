package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run the store's health check (schema version, integrity, vector-extension version)",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := openEngine()
		if err != nil {
			return err
		}
		defer s.Close()

		health, err := eng.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("schema_version:  %d\n", health.SchemaVersion)
		fmt.Printf("embedding_model: %s\n", health.EmbeddingModel)
		fmt.Printf("integrity_ok:    %v\n", health.IntegrityOK)
		fmt.Printf("vec_version:     %s\n", health.VecVersion)
		fmt.Printf("row_count:       %d\n", health.RowCount)
		return nil
	},
}
