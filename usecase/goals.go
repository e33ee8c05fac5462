package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/repository"

	"github.com/google/uuid"
)

type GoalService struct {
	GoalsRepo *repository.GoalsRepo
}

func NewGoalService(repo *repository.GoalsRepo) *GoalService {
	return &GoalService{GoalsRepo: repo}
}

func (svc *GoalService) CreateGoal(ctx context.Context, userID string, req *dto.CreateGoalRequest) (*model.Goal, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if !model.ValidCategory(req.Category) {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}

	now := time.Now()
	goal := &model.Goal{
		GoalID:      uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      model.GoalActive,
		TargetDate:  req.TargetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, m := range req.Milestones {
		goal.Milestones = append(goal.Milestones, model.Milestone{
			MilestoneID: uuid.New().String(),
			Title:       m.Title,
			DueDate:     m.DueDate,
		})
	}

	if err := svc.GoalsRepo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (svc *GoalService) GetUserGoals(ctx context.Context, userID string, category model.Category) ([]*model.Goal, error) {
	if category != "" && !model.ValidCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return svc.GoalsRepo.GetUserGoals(ctx, userID, category)
}

func (svc *GoalService) UpdateGoal(ctx context.Context, userID string, goalID string, req *dto.UpdateGoalRequest) (*model.Goal, error) {
	if req.Category != nil && !model.ValidCategory(*req.Category) {
		return nil, fmt.Errorf("unknown category %q", *req.Category)
	}

	if err := svc.GoalsRepo.UpdateGoal(ctx, goalID, userID, req); err != nil {
		return nil, err
	}
	return svc.GoalsRepo.GetGoal(ctx, goalID, userID)
}

func (svc *GoalService) DeleteGoal(ctx context.Context, userID string, goalID string) error {
	return svc.GoalsRepo.DeleteGoal(ctx, goalID, userID)
}

func (svc *GoalService) ToggleMilestone(ctx context.Context, userID string, goalID string, milestoneID string) (*model.Goal, error) {
	if err := svc.GoalsRepo.ToggleMilestone(ctx, goalID, userID, milestoneID); err != nil {
		return nil, err
	}
	return svc.GoalsRepo.GetGoal(ctx, goalID, userID)
}
