package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
)

// Worker is one unit of repeatable work
type Worker interface {
	// Name returns worker name for logging
	Name() string
	// Run executes one iteration of work
	Run(ctx context.Context) error
}

// PeriodicWorker runs a Worker immediately and then on every tick until the context ends
type PeriodicWorker struct {
	worker   Worker
	interval time.Duration
	name     string
	wg       sync.WaitGroup

	runs     atomic.Int64
	failures atomic.Int64
}

// NewPeriodicWorker creates new periodic worker
func NewPeriodicWorker(worker Worker, interval time.Duration) *PeriodicWorker {
	return &PeriodicWorker{
		worker:   worker,
		interval: interval,
		name:     worker.Name(),
	}
}

// Start starts the worker loop in the background
func (pw *PeriodicWorker) Start(ctx context.Context) {
	pw.wg.Add(1)
	go pw.run(ctx)
}

// Wait blocks until the worker loop exits
func (pw *PeriodicWorker) Wait() {
	pw.wg.Wait()
}

// Stop waits up to timeout for the loop to exit after its context was cancelled.
// Returns false on timeout.
func (pw *PeriodicWorker) Stop(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("worker stopped gracefully", zap.String("worker", pw.name))
		return true
	case <-time.After(timeout):
		logger.Warn("worker stop timeout", zap.String("worker", pw.name))
		return false
	}
}

// Runs returns the number of completed iterations
func (pw *PeriodicWorker) Runs() int64 {
	return pw.runs.Load()
}

// Failures returns the number of iterations that returned an error
func (pw *PeriodicWorker) Failures() int64 {
	return pw.failures.Load()
}

func (pw *PeriodicWorker) run(ctx context.Context) {
	defer pw.wg.Done()

	logger.Info("worker started",
		zap.String("worker", pw.name),
		zap.Duration("interval", pw.interval),
	)

	pw.runOnce(ctx)

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping", zap.String("worker", pw.name))
			return

		case <-ticker.C:
			pw.runOnce(ctx)
		}
	}
}

// runOnce never propagates errors; a failed iteration waits for the next tick
func (pw *PeriodicWorker) runOnce(ctx context.Context) {
	start := time.Now()
	err := pw.worker.Run(ctx)
	pw.runs.Add(1)

	if err != nil {
		pw.failures.Add(1)
		logger.Error("worker execution failed",
			zap.String("worker", pw.name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	logger.Debug("worker iteration completed",
		zap.String("worker", pw.name),
		zap.Duration("duration", time.Since(start)),
	)
}

// RunBackground is a convenience function to run a single worker
func RunBackground(ctx context.Context, worker Worker, interval time.Duration) *PeriodicWorker {
	pw := NewPeriodicWorker(worker, interval)
	pw.Start(ctx)
	return pw
}
