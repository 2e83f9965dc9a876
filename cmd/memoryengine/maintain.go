package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var maintainOnce bool

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run decay, compaction, promotion, and cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !maintainOnce {
			return fmt.Errorf("maintain currently only supports --once; run the scheduler in-process for continuous maintenance")
		}
		eng, s, err := openEngine()
		if err != nil {
			return err
		}
		defer s.Close()

		report, err := eng.RunMaintenanceOnce(cmd.Context())
		if err != nil {
			fmt.Printf("maintenance completed with %d error(s)\n", len(report.Errors))
			for _, e := range report.Errors {
				fmt.Println("  -", e)
			}
		}
		fmt.Printf("decayed:            %v\n", report.DecayedByCategory)
		fmt.Printf("compacted groups:   %d (%d source rows)\n", report.CompactedGroups, report.CompactedSourceRows)
		fmt.Printf("clusters found:     %d\n", report.ClustersFound)
		fmt.Printf("semantics created:  %d\n", report.SemanticsCreated)
		fmt.Printf("cleaned up:         %d\n", report.CleanedUp)
		return nil
	},
}

func init() {
	maintainCmd.Flags().BoolVar(&maintainOnce, "once", false, "run exactly one maintenance pass synchronously")
}
