package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxApplyRetries bounds the optimistic-concurrency loop in ApplyCompletion.
// A retry only happens when a decay sweep (or another completion) touched the
// same row between our read and write, so contention is rare.
const maxApplyRetries = 3

type StatsRepo struct {
	MongoCollection *mongo.Collection
}

// Retrieves MongoDB collection for user stats
func GetStatsRepo(client *mongo.Client) *StatsRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := os.Getenv("STATS_COLLECTION")
	return &StatsRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

// ApplyCompletion folds one completed session into the (userID, category)
// stats row, creating it on first activity. The update is guarded by the
// last_score_update value read beforehand, so a concurrent writer on the same
// row causes a re-read instead of a lost update.
func (r *StatsRepo) ApplyCompletion(ctx context.Context, userID string, category model.Category, durationMinutes int, now time.Time) (*model.UserStats, error) {
	timer := utils.TrackDBOperation("upsert", "user_stats")
	defer timer.ObserveDuration()

	if userID == "" {
		utils.TrackError("database", "missing_user_id")
		return nil, errors.New("user ID is required")
	}

	filter := bson.M{"user_id": userID, "category": category}

	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		var current model.UserStats
		err := r.MongoCollection.FindOne(ctx, filter).Decode(&current)
		if err == mongo.ErrNoDocuments {
			fresh := &model.UserStats{
				UserID:               userID,
				Category:             category,
				TotalSessions:        1,
				CompletedSessions:    1,
				TotalDurationMinutes: durationMinutes,
				StreakDays:           1,
				LastActivity:         now,
				LeaderboardScore:     model.Score(1, durationMinutes, 1),
				LastScoreUpdate:      now,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if _, err := r.MongoCollection.InsertOne(ctx, fresh); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					// Another completion created the row first; fold into it.
					continue
				}
				utils.TrackError("database", "stats_insert_failed")
				return nil, fmt.Errorf("failed to create stats record: %w", err)
			}
			return fresh, nil
		}
		if err != nil {
			utils.TrackError("database", "stats_fetch_failed")
			return nil, fmt.Errorf("failed to fetch stats record: %w", err)
		}

		streak := model.NextStreak(current.StreakDays, current.LastActivity, now)
		updated := current
		updated.TotalSessions++
		updated.CompletedSessions++
		updated.TotalDurationMinutes += durationMinutes
		updated.StreakDays = streak
		updated.LastActivity = now
		updated.LeaderboardScore = model.Score(updated.CompletedSessions, updated.TotalDurationMinutes, streak)
		updated.LastScoreUpdate = now
		updated.UpdatedAt = now

		guard := bson.M{
			"user_id":           userID,
			"category":          category,
			"last_score_update": current.LastScoreUpdate,
		}
		update := bson.M{
			"$set": bson.M{
				"total_sessions":         updated.TotalSessions,
				"completed_sessions":     updated.CompletedSessions,
				"total_duration_minutes": updated.TotalDurationMinutes,
				"streak_days":            updated.StreakDays,
				"last_activity":          updated.LastActivity,
				"leaderboard_score":      updated.LeaderboardScore,
				"last_score_update":      updated.LastScoreUpdate,
				"updated_at":             updated.UpdatedAt,
			},
		}

		result, err := r.MongoCollection.UpdateOne(ctx, guard, update)
		if err != nil {
			utils.TrackError("database", "stats_update_failed")
			return nil, fmt.Errorf("failed to update stats record: %w", err)
		}
		if result.MatchedCount == 0 {
			// Lost the race against the decay sweep or a concurrent
			// completion; re-read and recompute.
			utils.TrackError("database", "stats_update_conflict")
			continue
		}
		return &updated, nil
	}

	return nil, errors.New("stats update retries exhausted")
}

// DecayStale multiplies every stale positive score by the per-day decay
// factor, computed server-side in a single bulk update so the sweep cannot
// race a concurrent completion on the same row. Rows touched within the
// grace window, and rows already at zero, are left alone. Returns the number
// of rows modified.
func (r *StatsRepo) DecayStale(ctx context.Context, now time.Time) (int64, error) {
	timer := utils.TrackDBOperation("update", "user_stats")
	defer timer.ObserveDuration()

	cutoff := now.Add(-model.DecayGrace)
	filter := bson.M{
		"last_score_update": bson.M{"$lt": cutoff},
		"leaderboard_score": bson.M{"$gt": 0},
	}

	const msPerDay = 24 * 60 * 60 * 1000
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"leaderboard_score": bson.M{
				"$multiply": bson.A{
					"$leaderboard_score",
					bson.M{"$pow": bson.A{
						model.DecayFactor,
						bson.M{"$divide": bson.A{
							bson.M{"$subtract": bson.A{now, "$last_score_update"}},
							msPerDay,
						}},
					}},
				},
			},
			"last_score_update": now,
			"updated_at":        now,
		}}},
	}

	result, err := r.MongoCollection.UpdateMany(ctx, filter, pipeline)
	if err != nil {
		utils.TrackError("database", "decay_sweep_failed")
		return 0, fmt.Errorf("failed to decay stale scores: %w", err)
	}
	return result.ModifiedCount, nil
}

// TopByScore returns the highest-scoring stats rows, optionally filtered to
// one category. Ties break on user_id so the ordering is deterministic.
func (r *StatsRepo) TopByScore(ctx context.Context, category model.Category, limit int64) ([]*model.UserStats, error) {
	timer := utils.TrackDBOperation("find", "user_stats")
	defer timer.ObserveDuration()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "leaderboard_score", Value: -1},
			{Key: "user_id", Value: 1},
		}).
		SetLimit(limit)

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.TrackError("database", "leaderboard_fetch_failed")
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.UserStats
	if err = cursor.All(ctx, &records); err != nil {
		utils.TrackError("database", "leaderboard_decode_failed")
		return nil, err
	}
	return records, nil
}

// ByUser returns a user's stats rows across categories, or the single row
// for one category.
func (r *StatsRepo) ByUser(ctx context.Context, userID string, category model.Category) ([]*model.UserStats, error) {
	timer := utils.TrackDBOperation("find", "user_stats")
	defer timer.ObserveDuration()

	if userID == "" {
		utils.TrackError("database", "missing_user_id")
		return nil, errors.New("user ID is required")
	}

	filter := bson.M{"user_id": userID}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.MongoCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}}))
	if err != nil {
		utils.TrackError("database", "stats_fetch_failed")
		return nil, fmt.Errorf("failed to fetch user stats: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.UserStats
	if err = cursor.All(ctx, &records); err != nil {
		utils.TrackError("database", "stats_decode_failed")
		return nil, err
	}
	return records, nil
}
