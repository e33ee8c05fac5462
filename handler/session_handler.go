package handler

import (
	"log"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/usecase"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *usecase.SessionService
}

func NewSessionHandler(sessions *usecase.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	session, err := h.sessions.StartSession(ctx, userID.(string), &req)
	if err != nil {
		switch err.Error() {
		case "goal not found":
			utils.NotFound(c, "Goal not found")
		case "another session is already active":
			utils.Conflict(c, "Another session is already active")
		default:
			log.Printf("Error starting session: %v", err)
			utils.InternalError(c, "Failed to start session")
		}
		return
	}

	utils.Created(c, gin.H{"session": session})
}

func (h *SessionHandler) CompleteSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req dto.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	session, err := h.sessions.CompleteSession(ctx, userID.(string), c.Param("id"), &req)
	if err != nil {
		switch err.Error() {
		case "session not found":
			utils.NotFound(c, "Session not found")
		case "session is not active":
			utils.Conflict(c, "Session is not active")
		default:
			log.Printf("Error completing session: %v", err)
			utils.InternalError(c, "Failed to complete session")
		}
		return
	}

	utils.Success(c, gin.H{"session": session})
}

func (h *SessionHandler) AbandonSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	session, err := h.sessions.AbandonSession(ctx, userID.(string), c.Param("id"))
	if err != nil {
		switch err.Error() {
		case "session not found":
			utils.NotFound(c, "Session not found")
		case "session is not active":
			utils.Conflict(c, "Session is not active")
		default:
			log.Printf("Error abandoning session: %v", err)
			utils.InternalError(c, "Failed to abandon session")
		}
		return
	}

	utils.Success(c, gin.H{"session": session})
}

func (h *SessionHandler) GetUserSessions(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	sessions, err := h.sessions.GetUserSessions(ctx, userID.(string))
	if err != nil {
		log.Printf("Error fetching sessions: %v", err)
		utils.InternalError(c, "Failed to fetch sessions")
		return
	}

	utils.Success(c, gin.H{"sessions": sessions})
}
