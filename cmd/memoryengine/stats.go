package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print memory_stats: counts by category/scope, relations, file size",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, s, err := openEngine()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := eng.Stats(cmd.Context(), group)
		if err != nil {
			return err
		}
		fmt.Printf("total:      %d\n", st.TotalCount)
		fmt.Printf("active:     %d\n", st.ActiveCount)
		fmt.Printf("superseded: %d\n", st.SupersededCount)
		fmt.Printf("relations:  %d\n", st.RelationCount)
		fmt.Printf("file bytes: %d\n", st.FileSizeBytes)
		for cat, n := range st.CountByCategory {
			fmt.Printf("  category %-12s %d\n", cat, n)
		}
		for scope, n := range st.CountByScope {
			fmt.Printf("  scope    %-12s %d\n", scope, n)
		}
		return nil
	},
}
