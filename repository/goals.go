package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type GoalsRepo struct {
	MongoCollection *mongo.Collection
}

// Retrieves MongoDB collection for goals
func GetGoalsRepo(client *mongo.Client) *GoalsRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := os.Getenv("GOALS_COLLECTION")
	return &GoalsRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

// Add a new goal (following the model) into the database
func (r *GoalsRepo) CreateGoal(ctx context.Context, goal *model.Goal) error {
	timer := utils.TrackDBOperation("insert", "goals")
	defer timer.ObserveDuration()

	if goal.UserID == "" {
		utils.TrackError("database", "missing_user_id")
		return errors.New("user ID is required")
	}

	_, err := r.MongoCollection.InsertOne(ctx, goal)
	if err != nil {
		utils.TrackError("database", "goal_creation_failed")
		return err
	}
	return nil
}

// Retrieves all goals for a user, optionally filtered by category
func (r *GoalsRepo) GetUserGoals(ctx context.Context, userID string, category model.Category) ([]*model.Goal, error) {
	timer := utils.TrackDBOperation("find", "goals")
	defer timer.ObserveDuration()

	filter := bson.M{"user_id": userID}
	if category != "" {
		filter["category"] = category
	}

	var goals []*model.Goal
	cursor, err := r.MongoCollection.Find(ctx, filter)
	if err != nil {
		utils.TrackError("database", "goal_fetch_failed")
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &goals); err != nil {
		utils.TrackError("database", "goal_decode_failed")
		return nil, err
	}
	return goals, nil
}

// Retrieves a single goal owned by the user
func (r *GoalsRepo) GetGoal(ctx context.Context, goalID string, userID string) (*model.Goal, error) {
	timer := utils.TrackDBOperation("find", "goals")
	defer timer.ObserveDuration()

	var goal model.Goal
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": goalID, "user_id": userID}).Decode(&goal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "goal_fetch_failed")
		return nil, err
	}
	return &goal, nil
}

// Applies only the fields present in the request; absent fields keep their
// stored values.
func (r *GoalsRepo) UpdateGoal(ctx context.Context, goalID string, userID string, updates *dto.UpdateGoalRequest) error {
	timer := utils.TrackDBOperation("update", "goals")
	defer timer.ObserveDuration()

	set := bson.M{"updated_at": time.Now()}
	if updates.Title != nil {
		set["title"] = *updates.Title
	}
	if updates.Description != nil {
		set["description"] = *updates.Description
	}
	if updates.Category != nil {
		set["category"] = *updates.Category
	}
	if updates.Status != nil {
		set["status"] = *updates.Status
	}
	if updates.TargetDate != nil {
		set["target_date"] = *updates.TargetDate
	}

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": goalID, "user_id": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		utils.TrackError("database", "goal_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		utils.TrackError("database", "goal_not_found")
		return errors.New("goal not found")
	}
	return nil
}

// Removes a specific goal from database
func (r *GoalsRepo) DeleteGoal(ctx context.Context, goalID string, userID string) error {
	timer := utils.TrackDBOperation("delete", "goals")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": goalID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "goal_deletion_failed")
		return err
	}
	if result.DeletedCount == 0 {
		utils.TrackError("database", "goal_not_found")
		return errors.New("goal not found")
	}
	return nil
}

// Toggles the done flag of one embedded milestone
func (r *GoalsRepo) ToggleMilestone(ctx context.Context, goalID string, userID string, milestoneID string) error {
	timer := utils.TrackDBOperation("update", "goals")
	defer timer.ObserveDuration()

	goal, err := r.GetGoal(ctx, goalID, userID)
	if err != nil {
		return err
	}
	if goal == nil {
		return errors.New("goal not found")
	}

	now := time.Now()
	found := false
	for i := range goal.Milestones {
		if goal.Milestones[i].MilestoneID == milestoneID {
			goal.Milestones[i].Done = !goal.Milestones[i].Done
			if goal.Milestones[i].Done {
				goal.Milestones[i].CompletedAt = now
			} else {
				goal.Milestones[i].CompletedAt = time.Time{}
			}
			found = true
			break
		}
	}
	if !found {
		utils.TrackError("database", "milestone_not_found")
		return errors.New("milestone not found")
	}

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": goalID, "user_id": userID},
		bson.M{"$set": bson.M{"milestones": goal.Milestones, "updated_at": now}},
	)
	if err != nil {
		utils.TrackError("database", "milestone_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("goal %s not found", goalID)
	}
	return nil
}
