// Package logging provides the engine's process-wide structured logger.
// It wraps go.uber.org/zap the way cmd/nerd wires zap in the teacher
// repo, but adds a lightweight per-component child-logger and operation
// timer convention (named after, not copied from, the teacher's
// category/timer helpers) so store, memory, and maintenance code can log
// consistently without each constructing its own zap.Logger.
package logging

import (
	"time"

	"go.uber.org/zap"
)

var base *zap.Logger = zap.NewNop()

// Init installs the process-wide logger. debug selects development-mode
// (console, debug level) output; otherwise production JSON encoding at
// info level is used.
func Init(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// For returns a child logger scoped to a named component, e.g.
// logging.For("store") or logging.For("memory.write").
func For(component string) *zap.Logger {
	return base.Named(component)
}

// Sync flushes any buffered log entries. Safe to call even if Init was
// never called.
func Sync() {
	_ = base.Sync()
}

// Timer measures and logs the duration of an operation on Stop.
type Timer struct {
	logger *zap.Logger
	op     string
	start  time.Time
}

// StartTimer begins timing op against logger l.
func StartTimer(l *zap.Logger, op string) *Timer {
	return &Timer{logger: l, op: op, start: time.Now()}
}

// Stop logs the elapsed duration at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopThreshold logs at warn level if elapsed exceeds threshold, debug
// otherwise.
func (t *Timer) StopThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn(t.op+" slow", zap.Duration("elapsed", elapsed), zap.Duration("threshold", threshold))
	} else {
		t.logger.Debug(t.op+" completed", zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
