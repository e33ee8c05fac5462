package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func SetupIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	statsCollection := db.Collection("user_stats")
	goalsCollection := db.Collection("goals")
	sessionsCollection := db.Collection("focus_sessions")
	usersCollection := db.Collection("users")
	loginSessionsCollection := db.Collection("login_sessions")

	// The unique compound index is load-bearing: ApplyCompletion relies on a
	// duplicate-key error to detect two first-completions racing on the same
	// (user, category) pair.
	statsIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: options.Index().
				SetName("user_category_unique").
				SetUnique(true),
		},
		// Leaderboard read path
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "leaderboard_score", Value: -1},
			},
			Options: options.Index().
				SetName("category_score"),
		},
		// Decay sweep selection
		{
			Keys: bson.D{
				{Key: "last_score_update", Value: 1},
			},
			Options: options.Index().
				SetName("last_score_update"),
		},
	}

	goalIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: options.Index().
				SetName("user_goals_category").
				SetUnique(false),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().
				SetName("user_goals_status"),
		},
	}

	sessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "started_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_sessions_date"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().
				SetName("user_sessions_status"),
		},
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("user_id_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetName("username_unique").
				SetUnique(true),
		},
	}

	loginSessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("session_id_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().
				SetName("user_active_sessions"),
		},
	}

	if _, err := statsCollection.Indexes().CreateMany(ctx, statsIndexes); err != nil {
		return fmt.Errorf("failed to create stats indexes: %w", err)
	}
	if _, err := goalsCollection.Indexes().CreateMany(ctx, goalIndexes); err != nil {
		return fmt.Errorf("failed to create goal indexes: %w", err)
	}
	if _, err := sessionsCollection.Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	if _, err := usersCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if _, err := loginSessionsCollection.Indexes().CreateMany(ctx, loginSessionIndexes); err != nil {
		return fmt.Errorf("failed to create login session indexes: %w", err)
	}

	log.Println("MongoDB indexes created")
	return nil
}
