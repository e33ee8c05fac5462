package services

import (
	"context"
	"log"
	"time"
)

// Sweeper is implemented by the stats service; the scheduler only needs the
// sweep entry point.
type Sweeper interface {
	SweepAndDecay(ctx context.Context, now time.Time) (int64, error)
}

// DecayScheduler runs the leaderboard decay sweep on a fixed interval. A
// failed sweep is logged and retried on the next tick; the sweep itself is
// idempotent, so overlapping or repeated runs are harmless.
type DecayScheduler struct {
	sweeper  Sweeper
	interval time.Duration
	stop     chan struct{}
}

func NewDecayScheduler(sweeper Sweeper, interval time.Duration) *DecayScheduler {
	return &DecayScheduler{
		sweeper:  sweeper,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *DecayScheduler) Start() {
	go s.run()
}

func (s *DecayScheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Decay scheduler started, interval %s", s.interval)
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			updated, err := s.sweeper.SweepAndDecay(ctx, time.Now())
			cancel()
			if err != nil {
				log.Printf("Decay sweep failed: %v", err)
				continue
			}
			log.Printf("Decay sweep finished, %d records updated", updated)
		case <-s.stop:
			return
		}
	}
}

// Stop halts the sweep loop. Safe to call once.
func (s *DecayScheduler) Stop() {
	close(s.stop)
}
