package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	calls atomic.Int64
	fail  bool
}

func (w *countingWorker) Name() string { return "counting" }

func (w *countingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	if w.fail {
		return errors.New("boom")
	}
	return nil
}

func TestPeriodicWorker_RunsImmediatelyAndOnTicks(t *testing.T) {
	w := &countingWorker{}
	ctx, cancel := context.WithCancel(context.Background())

	pw := RunBackground(ctx, w, 5*time.Millisecond)

	require.Eventually(t, func() bool { return pw.Runs() >= 3 }, time.Second, time.Millisecond)

	cancel()
	assert.True(t, pw.Stop(time.Second))
	assert.Equal(t, int64(0), pw.Failures())
	assert.Equal(t, w.calls.Load(), pw.Runs())
}

func TestPeriodicWorker_FailuresDoNotStopLoop(t *testing.T) {
	w := &countingWorker{fail: true}
	ctx, cancel := context.WithCancel(context.Background())

	pw := NewPeriodicWorker(w, 5*time.Millisecond)
	pw.Start(ctx)

	require.Eventually(t, func() bool { return pw.Failures() >= 2 }, time.Second, time.Millisecond)

	cancel()
	pw.Wait()
	assert.Equal(t, pw.Runs(), pw.Failures())
}

func TestPeriodicWorker_CancelledBeforeStart(t *testing.T) {
	w := &countingWorker{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pw := RunBackground(ctx, w, time.Hour)
	pw.Wait()

	assert.Equal(t, int64(1), pw.Runs())
}
