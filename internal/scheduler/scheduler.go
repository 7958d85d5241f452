package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked once per polling cycle.
type TickFunc func(ctx context.Context, now time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	StartupDelay time.Duration
}

// Scheduler drives a fixed-delay polling loop: the interval is waited
// out after each tick completes, so ticks never overlap.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function until ctx is cancelled. A tick
// error is logged and never terminates the loop; only cancellation does.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := s.wait(ctx, s.opts.StartupDelay); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tick(ctx, now); err != nil {
			s.logger.Error().Err(err).Time("tick", now).Msg("tick execution failed")
		}

		s.logger.Debug().Dur("interval", s.opts.Interval).Msg("waiting for next tick")
		if err := s.wait(ctx, s.opts.Interval); err != nil {
			return err
		}
	}
}

// wait sleeps for d, returning early with ctx.Err() on cancellation.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
