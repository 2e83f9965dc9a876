package memory

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaintenanceScheduler runs the four maintenance sub-jobs on independent
// tickers inside one goroutine group, grounded on the teacher's
// reflection_worker.go ticker-loop shape. Each job's failure is logged and
// isolated; a failing decay cycle never stalls compaction, promotion, or
// cleanup on their own tickers.
type MaintenanceScheduler struct {
	engine *Engine
	log    *zap.Logger

	decayEvery      time.Duration
	compactEvery    time.Duration
	promoteEvery    time.Duration
	cleanupEvery    time.Duration

	cancel context.CancelFunc
	group  *errgroup.Group
}

// SchedulerIntervals configures how often each maintenance job runs.
type SchedulerIntervals struct {
	Decay      time.Duration
	Compact    time.Duration
	Promote    time.Duration
	Cleanup    time.Duration
}

// DefaultSchedulerIntervals mirrors a conservative operator schedule: decay
// hourly, the heavier structural jobs daily.
func DefaultSchedulerIntervals() SchedulerIntervals {
	return SchedulerIntervals{
		Decay:   time.Hour,
		Compact: 24 * time.Hour,
		Promote: 24 * time.Hour,
		Cleanup: 24 * time.Hour,
	}
}

// NewScheduler builds a scheduler over engine with the given intervals.
func NewScheduler(engine *Engine, intervals SchedulerIntervals) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		engine:       engine,
		log:          engine.log.Named("scheduler"),
		decayEvery:   intervals.Decay,
		compactEvery: intervals.Compact,
		promoteEvery: intervals.Promote,
		cleanupEvery: intervals.Cleanup,
	}
}

// Start launches one ticker-driven goroutine per job. Call Stop to shut
// them down; Stop blocks until all goroutines have returned.
func (s *MaintenanceScheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	s.group = g

	g.Go(func() error { s.runTickerLoop(gctx, "decay", s.decayEvery, func(c context.Context) error {
		_, err := s.engine.runDecay(c)
		return err
	}); return nil })
	g.Go(func() error { s.runTickerLoop(gctx, "compact", s.compactEvery, func(c context.Context) error {
		_, err := s.engine.runCompaction(c)
		return err
	}); return nil })
	g.Go(func() error { s.runTickerLoop(gctx, "promote", s.promoteEvery, func(c context.Context) error {
		_, err := s.engine.runPromotion(c)
		return err
	}); return nil })
	g.Go(func() error { s.runTickerLoop(gctx, "cleanup", s.cleanupEvery, func(c context.Context) error {
		_, err := s.engine.runCleanup(c)
		return err
	}); return nil })
}

// Stop cancels every ticker loop and waits for the goroutines to exit.
func (s *MaintenanceScheduler) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	return s.group.Wait()
}

func (s *MaintenanceScheduler) runTickerLoop(ctx context.Context, job string, interval time.Duration, fn func(context.Context) error) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				s.log.Error("maintenance job failed", zap.String("job", job), zap.Error(err))
			}
		}
	}
}
