package handler

import (
	"log"
	"strings"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/usecase"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	goals *usecase.GoalService
}

func NewGoalHandler(goals *usecase.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req dto.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	goal, err := h.goals.CreateGoal(ctx, userID.(string), &req)
	if err != nil {
		if strings.Contains(err.Error(), "unknown category") {
			utils.BadRequest(c, "unknown category")
			return
		}
		log.Printf("Error creating goal: %v", err)
		utils.InternalError(c, "Failed to create goal")
		return
	}

	utils.Created(c, gin.H{"goal": goal})
}

func (h *GoalHandler) GetUserGoals(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	category := model.Category(c.Query("category"))
	goals, err := h.goals.GetUserGoals(ctx, userID.(string), category)
	if err != nil {
		if strings.Contains(err.Error(), "unknown category") {
			utils.BadRequest(c, "unknown category")
			return
		}
		log.Printf("Error fetching goals: %v", err)
		utils.InternalError(c, "Failed to fetch goals")
		return
	}

	utils.Success(c, gin.H{"goals": goals})
}

func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req dto.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	goal, err := h.goals.UpdateGoal(ctx, userID.(string), c.Param("id"), &req)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "unknown category"):
			utils.BadRequest(c, "unknown category")
		case err.Error() == "goal not found":
			utils.NotFound(c, "Goal not found")
		default:
			log.Printf("Error updating goal: %v", err)
			utils.InternalError(c, "Failed to update goal")
		}
		return
	}

	utils.Success(c, gin.H{"goal": goal})
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	if err := h.goals.DeleteGoal(ctx, userID.(string), c.Param("id")); err != nil {
		if err.Error() == "goal not found" {
			utils.NotFound(c, "Goal not found")
			return
		}
		log.Printf("Error deleting goal: %v", err)
		utils.InternalError(c, "Failed to delete goal")
		return
	}

	utils.Success(c, gin.H{"message": "goal deleted"})
}

func (h *GoalHandler) ToggleMilestone(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	goal, err := h.goals.ToggleMilestone(ctx, userID.(string), c.Param("id"), c.Param("milestoneId"))
	if err != nil {
		switch err.Error() {
		case "goal not found":
			utils.NotFound(c, "Goal not found")
		case "milestone not found":
			utils.NotFound(c, "Milestone not found")
		default:
			log.Printf("Error toggling milestone: %v", err)
			utils.InternalError(c, "Failed to toggle milestone")
		}
		return
	}

	utils.Success(c, gin.H{"goal": goal})
}
