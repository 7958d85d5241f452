package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Options{Interval: time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int64

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(ctx context.Context, now time.Time) error {
			ticks.Add(1)
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	if ticks.Load() == 0 {
		t.Fatal("expected at least one tick before cancellation")
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	s := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ticks atomic.Int64
	err := s.Run(ctx, func(ctx context.Context, now time.Time) error {
		ticks.Add(1)
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks.Load() != 0 {
		t.Fatal("no tick should run on a cancelled context")
	}
}

func TestRunCancelInterruptsWait(t *testing.T) {
	// A long interval must not delay shutdown: cancellation during the
	// inter-tick wait returns promptly.
	s := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(ctx context.Context, now time.Time) error {
			return nil
		})
	}()

	time.Sleep(10 * time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not interrupt its wait")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("cancellation took too long: %s", elapsed)
	}
}

func TestRunContinuesPastTickErrors(t *testing.T) {
	s := New(Options{Interval: time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(ctx context.Context, now time.Time) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return errors.New("simulated failure")
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler stopped ticking")
	}

	if ticks.Load() < 3 {
		t.Fatalf("tick errors must not stop the loop, got %d ticks", ticks.Load())
	}
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on zero interval")
		}
	}()
	New(Options{Interval: 0}, zerolog.Nop())
}
