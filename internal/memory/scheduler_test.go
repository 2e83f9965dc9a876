package memory

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestSchedulerStartStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := time.Now().UTC()
	e := newTestEngine(t, &now)

	sched := NewScheduler(e, SchedulerIntervals{
		Decay:   10 * time.Millisecond,
		Compact: 10 * time.Millisecond,
		Promote: 10 * time.Millisecond,
		Cleanup: 10 * time.Millisecond,
	})
	sched.Start(context.Background())
	time.Sleep(50 * time.Millisecond)

	if err := sched.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestSchedulerStopBeforeStartIsNoop(t *testing.T) {
	now := time.Now().UTC()
	e := newTestEngine(t, &now)
	sched := NewScheduler(e, DefaultSchedulerIntervals())
	if err := sched.Stop(); err != nil {
		t.Fatalf("stop without start should be a no-op: %v", err)
	}
}
