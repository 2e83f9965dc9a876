package memory

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RunMaintenanceOnce runs decay, compaction, promotion, and cleanup
// exactly once, isolating each job's failure from the others so one
// category's decay failing does not abort the rest of the cycle. This
// backs the CLI's "maintain --once" subcommand.
func (e *Engine) RunMaintenanceOnce(ctx context.Context) (*MaintenanceReport, error) {
	report := &MaintenanceReport{DecayedByCategory: map[string]int{}}
	var errs error

	decayed, err := e.runDecay(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	report.DecayedByCategory = decayed

	compacted, err := e.runCompaction(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	report.CompactedGroups = len(compacted)
	for _, c := range compacted {
		report.CompactedSourceRows += c.sourceCount
	}

	promoted, err := e.runPromotion(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	report.ClustersFound = promoted.clustersFound
	report.SemanticsCreated = promoted.semanticsCreated

	cleaned, err := e.runCleanup(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	report.CleanedUp = cleaned

	if errs != nil {
		report.Errors = multierr.Errors(errs)
	}
	e.log.Info("maintenance pass complete",
		zap.Any("decayed", decayed),
		zap.Int("compacted_groups", report.CompactedGroups),
		zap.Int("clusters_found", report.ClustersFound),
		zap.Int("semantics_created", report.SemanticsCreated),
		zap.Int("cleaned_up", report.CleanedUp),
	)
	return report, errs
}
