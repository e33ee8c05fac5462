package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int64
	err   error
}

func (s *countingSweeper) SweepAndDecay(_ context.Context, _ time.Time) (int64, error) {
	s.calls.Add(1)
	return 0, s.err
}

func TestDecaySchedulerTicks(t *testing.T) {
	sweeper := &countingSweeper{}
	scheduler := NewDecayScheduler(sweeper, 10*time.Millisecond)
	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("scheduler ran %d sweeps, want at least 2", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDecaySchedulerKeepsRunningAfterError(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("mongo down")}
	scheduler := NewDecayScheduler(sweeper, 10*time.Millisecond)
	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("scheduler ran %d sweeps, want at least 3 despite errors", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}
