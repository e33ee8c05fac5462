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
)

type UsersRepo struct {
	MongoCollection *mongo.Collection
}

// Retrieves MongoDB collection for users
func GetUsersRepo(client *mongo.Client) *UsersRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := os.Getenv("USERS_COLLECTION")
	return &UsersRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

func (r *UsersRepo) AddUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", "users")
	defer timer.ObserveDuration()

	count, err := r.MongoCollection.CountDocuments(ctx, bson.M{"username": user.Username})
	if err != nil {
		utils.TrackError("database", "user_count_failed")
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return errors.New("username already exists")
	}

	_, err = r.MongoCollection.InsertOne(ctx, user)
	if err != nil {
		utils.TrackError("database", "user_creation_failed")
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UsersRepo) FindUser(ctx context.Context, userID string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	var user model.User
	err := r.MongoCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "user_fetch_failed")
		return nil, err
	}
	return &user, nil
}

func (r *UsersRepo) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	var user model.User
	err := r.MongoCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "user_fetch_failed")
		return nil, err
	}
	return &user, nil
}

// EnableTwoFactor stores the TOTP secret and flips the flag in one update.
func (r *UsersRepo) EnableTwoFactor(ctx context.Context, userID string, secret string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"two_factor_enabled": true,
			"two_factor_secret":  secret,
			"updated_at":         time.Now(),
		}},
	)
	if err != nil {
		utils.TrackError("database", "user_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("user not found")
	}
	return nil
}
