package repository

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionsRepo struct {
	MongoCollection *mongo.Collection
}

// Retrieves MongoDB collection for focus sessions
func GetSessionsRepo(client *mongo.Client) *SessionsRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := os.Getenv("SESSIONS_COLLECTION")
	return &SessionsRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

// Add a new focus session into the database
func (r *SessionsRepo) CreateSession(ctx context.Context, session *model.FocusSession) error {
	timer := utils.TrackDBOperation("insert", "focus_sessions")
	defer timer.ObserveDuration()

	if session.UserID == "" {
		utils.TrackError("database", "missing_user_id")
		return errors.New("user ID is required")
	}

	_, err := r.MongoCollection.InsertOne(ctx, session)
	if err != nil {
		utils.TrackError("database", "session_creation_failed")
		return err
	}
	return nil
}

// Retrieves a single focus session owned by the user
func (r *SessionsRepo) GetSession(ctx context.Context, sessionID string, userID string) (*model.FocusSession, error) {
	timer := utils.TrackDBOperation("find", "focus_sessions")
	defer timer.ObserveDuration()

	var session model.FocusSession
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": sessionID, "user_id": userID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "session_fetch_failed")
		return nil, err
	}
	return &session, nil
}

// Retrieves a user's focus sessions, newest first
func (r *SessionsRepo) GetUserSessions(ctx context.Context, userID string) ([]*model.FocusSession, error) {
	timer := utils.TrackDBOperation("find", "focus_sessions")
	defer timer.ObserveDuration()

	cursor, err := r.MongoCollection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}),
	)
	if err != nil {
		utils.TrackError("database", "session_fetch_failed")
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.FocusSession
	if err = cursor.All(ctx, &sessions); err != nil {
		utils.TrackError("database", "session_decode_failed")
		return nil, err
	}
	return sessions, nil
}

// Moves an ACTIVE session to a terminal status. The status guard in the
// filter keeps a session from being completed or abandoned twice.
func (r *SessionsRepo) FinishSession(ctx context.Context, sessionID string, userID string, status model.SessionStatus, actualDurationMinutes int, now time.Time) error {
	timer := utils.TrackDBOperation("update", "focus_sessions")
	defer timer.ObserveDuration()

	filter := bson.M{
		"_id":     sessionID,
		"user_id": userID,
		"status":  model.SessionActive,
	}
	update := bson.M{
		"$set": bson.M{
			"status":                  status,
			"actual_duration_minutes": actualDurationMinutes,
			"completed_at":            now,
			"updated_at":              now,
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		utils.TrackError("database", "session_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		utils.TrackError("database", "session_not_active")
		return errors.New("session not found or not active")
	}
	return nil
}

// Counts active sessions for a user; the service layer uses this to keep a
// user from running overlapping focus blocks.
func (r *SessionsRepo) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	timer := utils.TrackDBOperation("count", "focus_sessions")
	defer timer.ObserveDuration()

	count, err := r.MongoCollection.CountDocuments(ctx,
		bson.M{"user_id": userID, "status": model.SessionActive})
	if err != nil {
		utils.TrackError("database", "session_count_failed")
		return 0, err
	}
	return int(count), nil
}
