// Package worker runs periodic background jobs.
package worker

import (
	"context"
	"time"

	"raseed/internal/log"
)

// Task is one scheduled run. now is the scheduler's clock at the tick.
type Task func(ctx context.Context, now time.Time) error

// Scheduler runs a Task once at start and then on every interval tick until
// its context is cancelled. Task errors are logged and the loop continues.
type Scheduler struct {
	name      string
	task      Task
	interval  time.Duration
	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())
	logger    *log.Logger
}

type Option func(*Scheduler)

// WithClock sets the clock passed to the task.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithTicker replaces the interval ticker, mainly for tests.
func WithTicker(newTicker func(time.Duration) (<-chan time.Time, func())) Option {
	return func(s *Scheduler) { s.newTicker = newTicker }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(name string, interval time.Duration, task Task, opts ...Option) *Scheduler {
	s := &Scheduler{
		name:     name,
		task:     task,
		interval: interval,
		now:      time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Wrap(nil, log.ComponentWorker)
	}
	return s
}

// Run blocks until ctx is done and returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	ticks, stop := s.newTicker(s.interval)
	defer stop()

	s.logger.InfoContext(ctx, "Scheduler started", "job", s.name, "interval", s.interval)
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Scheduler stopped", "job", s.name, "reason", ctx.Err())
			return ctx.Err()
		case <-ticks:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := s.now()
	start := time.Now()
	if err := s.task(ctx, now); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled run failed",
			"job", s.name,
			log.FieldError, err,
			log.FieldDuration, time.Since(start).Milliseconds())
		return
	}
	s.logger.InfoContext(ctx, "Scheduled run complete",
		"job", s.name,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"next_run", now.Add(s.interval).Format(time.RFC3339))
}
