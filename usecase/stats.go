package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/services"
	"github.com/appdotbuilder/octa-focus/utils"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// StatsStore is the persistence contract for per-user-per-category stats
// rows. Implementations must make ApplyCompletion and DecayStale safe to run
// concurrently against the same row without losing either write.
type StatsStore interface {
	ApplyCompletion(ctx context.Context, userID string, category model.Category, durationMinutes int, now time.Time) (*model.UserStats, error)
	DecayStale(ctx context.Context, now time.Time) (int64, error)
	TopByScore(ctx context.Context, category model.Category, limit int64) ([]*model.UserStats, error)
	ByUser(ctx context.Context, userID string, category model.Category) ([]*model.UserStats, error)
}

type StatsService struct {
	store StatsStore
	cache *services.LeaderboardCache
}

func NewStatsService(store StatsStore, cache *services.LeaderboardCache) *StatsService {
	return &StatsService{store: store, cache: cache}
}

// RecordCompletion folds a completed session into the user's stats row for
// the goal's category. Callers on the session-completion path treat a
// returned error as best-effort: the completion itself already happened.
func (svc *StatsService) RecordCompletion(ctx context.Context, userID string, category model.Category, durationMinutes int, now time.Time) (*model.UserStats, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if !model.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if durationMinutes <= 0 {
		return nil, errors.New("duration must be positive")
	}

	record, err := svc.store.ApplyCompletion(ctx, userID, category, durationMinutes, now)
	if err != nil {
		return nil, err
	}

	svc.invalidateCache(ctx)
	return record, nil
}

// SweepAndDecay applies time decay to every stats row whose score was last
// updated before the grace window. Unlike the completion path, errors here
// propagate: the sweep runs under a scheduler that is expected to alert.
func (svc *StatsService) SweepAndDecay(ctx context.Context, now time.Time) (int64, error) {
	updated, err := svc.store.DecayStale(ctx, now)
	if err != nil {
		return 0, err
	}

	utils.TrackDecaySweep(updated)
	if updated > 0 {
		svc.invalidateCache(ctx)
	}
	return updated, nil
}

// GetLeaderboard returns stats rows ordered by score descending, optionally
// filtered to one category. Scores are as of the last decay sweep; reads
// never recompute decay.
func (svc *StatsService) GetLeaderboard(ctx context.Context, category model.Category, limit int64) ([]*model.UserStats, error) {
	if category != "" && !model.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	if svc.cache != nil {
		if records, ok := svc.cache.Get(ctx, category, limit); ok {
			return records, nil
		}
	}

	records, err := svc.store.TopByScore(ctx, category, limit)
	if err != nil {
		return nil, err
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, category, limit, records); err != nil {
			log.Printf("Warning: failed to cache leaderboard: %v", err)
		}
	}
	return records, nil
}

// GetUserStats returns the user's stats rows. StreakDays is corrected to 0
// in the response when the last activity is older than the streak window;
// the stored row is left untouched and the next completion re-derives the
// real value from last_activity.
func (svc *StatsService) GetUserStats(ctx context.Context, userID string, category model.Category, now time.Time) ([]*model.UserStats, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if category != "" && !model.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	records, err := svc.store.ByUser(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		rec.StreakDays = rec.CurrentStreak(now)
	}
	return records, nil
}

func (svc *StatsService) invalidateCache(ctx context.Context) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Invalidate(ctx); err != nil {
		log.Printf("Warning: failed to invalidate leaderboard cache: %v", err)
	}
}
