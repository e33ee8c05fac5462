package dto

import (
	"time"

	"github.com/appdotbuilder/octa-focus/model"
)

type CreateGoalRequest struct {
	Title       string           `json:"title" binding:"required,max=120"`
	Description string           `json:"description" binding:"max=2000"`
	Category    model.Category   `json:"category" binding:"required"`
	TargetDate  time.Time        `json:"target_date"`
	Milestones  []MilestoneInput `json:"milestones" binding:"max=20,dive"`
}

type MilestoneInput struct {
	Title   string    `json:"title" binding:"required,max=120"`
	DueDate time.Time `json:"due_date"`
}

// UpdateGoalRequest carries only the fields the client actually sent.
// Pointer fields distinguish "leave unchanged" from an explicit zero value.
type UpdateGoalRequest struct {
	Title       *string           `json:"title,omitempty" binding:"omitempty,max=120"`
	Description *string           `json:"description,omitempty" binding:"omitempty,max=2000"`
	Category    *model.Category   `json:"category,omitempty"`
	Status      *model.GoalStatus `json:"status,omitempty"`
	TargetDate  *time.Time        `json:"target_date,omitempty"`
}
