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
)

type LoginSessionsRepo struct {
	MongoCollection *mongo.Collection
}

// Retrieves MongoDB collection for login sessions
func GetLoginSessionsRepo(client *mongo.Client) *LoginSessionsRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := os.Getenv("LOGIN_SESSIONS_COLLECTION")
	return &LoginSessionsRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

func (r *LoginSessionsRepo) CreateSession(ctx context.Context, session *model.LoginSession) error {
	timer := utils.TrackDBOperation("insert", "login_sessions")
	defer timer.ObserveDuration()

	if session == nil || session.SessionID == "" || session.UserID == "" {
		utils.TrackError("database", "invalid_session_data")
		return errors.New("invalid session data: missing required fields")
	}

	_, err := r.MongoCollection.InsertOne(ctx, session)
	if err != nil {
		utils.TrackError("database", "login_session_creation_failed")
		return err
	}
	return nil
}

func (r *LoginSessionsRepo) EndSession(ctx context.Context, sessionID string, userID string) error {
	timer := utils.TrackDBOperation("update", "login_sessions")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "user_id": userID},
		bson.M{"$set": bson.M{"is_active": false, "last_activity_at": time.Now()}},
	)
	if err != nil {
		utils.TrackError("database", "login_session_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("session not found")
	}
	return nil
}

func (r *LoginSessionsRepo) GetUserActiveSessions(ctx context.Context, userID string) ([]*model.LoginSession, error) {
	timer := utils.TrackDBOperation("find", "login_sessions")
	defer timer.ObserveDuration()

	cursor, err := r.MongoCollection.Find(ctx,
		bson.M{"user_id": userID, "is_active": true, "expires_at": bson.M{"$gt": time.Now()}})
	if err != nil {
		utils.TrackError("database", "login_session_fetch_failed")
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.LoginSession
	if err = cursor.All(ctx, &sessions); err != nil {
		utils.TrackError("database", "login_session_decode_failed")
		return nil, err
	}
	return sessions, nil
}
