package handler

import (
	"log"
	"strconv"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/usecase"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *usecase.StatsService
}

func NewStatsHandler(stats *usecase.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetLeaderboard returns the top stats rows by score, optionally filtered by
// ?category= and truncated by ?limit= (default 10, max 100).
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	category := model.Category(c.Query("category"))

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			utils.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.stats.GetLeaderboard(ctx, category, limit)
	if err != nil {
		if category != "" && !model.ValidCategory(category) {
			utils.BadRequest(c, "unknown category")
			return
		}
		log.Printf("Error fetching leaderboard: %v", err)
		utils.InternalError(c, "Failed to fetch leaderboard")
		return
	}

	utils.Success(c, gin.H{
		"leaderboard": records,
		"count":       len(records),
	})
}

// GetUserStats returns the authenticated user's per-category stats rows.
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	category := model.Category(c.Query("category"))
	if category != "" && !model.ValidCategory(category) {
		utils.BadRequest(c, "unknown category")
		return
	}

	records, err := h.stats.GetUserStats(ctx, userID.(string), category, time.Now())
	if err != nil {
		log.Printf("Error fetching stats for user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch user stats")
		return
	}

	utils.Success(c, gin.H{
		"stats": records,
	})
}

// RunDecaySweep triggers a decay sweep on demand. The scheduler runs the
// same sweep periodically; this endpoint exists for operations.
func (h *StatsHandler) RunDecaySweep(c *gin.Context) {
	ctx := c.Request.Context()

	updated, err := h.stats.SweepAndDecay(ctx, time.Now())
	if err != nil {
		log.Printf("Decay sweep failed: %v", err)
		utils.InternalError(c, "Decay sweep failed")
		return
	}

	utils.Success(c, gin.H{
		"updated_count": updated,
	})
}
