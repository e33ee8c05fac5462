package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache keeps leaderboard pages in Redis for a short TTL. The
// leaderboard only changes on completions and decay sweeps, so a small
// staleness window is acceptable and keeps the read path off Mongo.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

var GlobalLeaderboardCache *LeaderboardCache

// NewLeaderboardCache creates and initializes a new leaderboard cache
func NewLeaderboardCache(redisURL string, ttl time.Duration) (*LeaderboardCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &LeaderboardCache{client: client, ttl: ttl}, nil
}

func leaderboardKey(category model.Category, limit int64) string {
	if category == "" {
		return fmt.Sprintf("leaderboard:all:%d", limit)
	}
	return fmt.Sprintf("leaderboard:%s:%d", category, limit)
}

func (lc *LeaderboardCache) Get(ctx context.Context, category model.Category, limit int64) ([]*model.UserStats, bool) {
	data, err := lc.client.Get(ctx, leaderboardKey(category, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.TrackError("cache", "leaderboard_get_failed")
		}
		utils.TrackCacheOperation("leaderboard", false)
		return nil, false
	}

	var records []*model.UserStats
	if err := json.Unmarshal(data, &records); err != nil {
		utils.TrackError("cache", "leaderboard_decode_failed")
		return nil, false
	}
	utils.TrackCacheOperation("leaderboard", true)
	return records, true
}

func (lc *LeaderboardCache) Set(ctx context.Context, category model.Category, limit int64, records []*model.UserStats) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %v", err)
	}

	if err := lc.client.Set(ctx, leaderboardKey(category, limit), data, lc.ttl).Err(); err != nil {
		utils.TrackError("cache", "leaderboard_set_failed")
		return fmt.Errorf("failed to cache leaderboard: %v", err)
	}
	return nil
}

// Invalidate drops every cached leaderboard page. Called after writes that
// change scores (completions and decay sweeps).
func (lc *LeaderboardCache) Invalidate(ctx context.Context) error {
	iter := lc.client.Scan(ctx, 0, "leaderboard:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		utils.TrackError("cache", "leaderboard_scan_failed")
		return fmt.Errorf("failed to scan leaderboard keys: %v", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := lc.client.Del(ctx, keys...).Err(); err != nil {
		utils.TrackError("cache", "leaderboard_invalidate_failed")
		return fmt.Errorf("failed to invalidate leaderboard cache: %v", err)
	}
	return nil
}
