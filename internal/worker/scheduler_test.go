package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) factory(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { close(m.stopped) }
}

type recorder struct {
	mu    sync.Mutex
	calls []time.Time
	runs  chan struct{}
	fail  bool
}

func (r *recorder) task(_ context.Context, now time.Time) error {
	r.mu.Lock()
	r.calls = append(r.calls, now)
	fail := r.fail
	r.mu.Unlock()
	r.runs <- struct{}{}
	if fail {
		return errors.New("boom")
	}
	return nil
}

func waitRun(t *testing.T, runs <-chan struct{}) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scheduled run")
	}
}

func TestSchedulerRunsAtStartAndOnTicks(t *testing.T) {
	frozen := time.Date(2025, 7, 26, 9, 0, 0, 0, time.UTC)
	ticker := newManualTicker()
	rec := &recorder{runs: make(chan struct{}, 4)}

	s := NewScheduler("insights", time.Hour, rec.task,
		WithClock(func() time.Time { return frozen }),
		WithTicker(ticker.factory))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitRun(t, rec.runs)
	ticker.ch <- frozen.Add(time.Hour)
	waitRun(t, rec.runs)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	<-ticker.stopped

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.calls, 2)
	assert.True(t, rec.calls[0].Equal(frozen), "task receives the injected clock")
}

func TestSchedulerContinuesAfterErrors(t *testing.T) {
	ticker := newManualTicker()
	rec := &recorder{runs: make(chan struct{}, 4), fail: true}

	s := NewScheduler("insights", time.Minute, rec.task, WithTicker(ticker.factory))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitRun(t, rec.runs)
	ticker.ch <- time.Now()
	waitRun(t, rec.runs)
	ticker.ch <- time.Now()
	waitRun(t, rec.runs)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestSchedulerSkipsRunWhenAlreadyCancelled(t *testing.T) {
	ticker := newManualTicker()
	rec := &recorder{runs: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewScheduler("insights", time.Minute, rec.task, WithTicker(ticker.factory)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}
