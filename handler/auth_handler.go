package handler

import (
	"log"
	"time"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/repository"
	"github.com/appdotbuilder/octa-focus/services"
	"github.com/appdotbuilder/octa-focus/usecase"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

type AuthHandler struct {
	users         *usecase.UserService
	loginSessions *repository.LoginSessionsRepo
}

func NewAuthHandler(users *usecase.UserService, loginSessions *repository.LoginSessionsRepo) *AuthHandler {
	return &AuthHandler{users: users, loginSessions: loginSessions}
}

func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	if err := h.users.CreateUser(ctx, &user); err != nil {
		if err.Error() == "username already exists" {
			utils.Conflict(c, "username already exists")
			return
		}
		utils.BadRequest(c, err.Error())
		return
	}

	token, err := services.GenerateToken(user.UserID)
	if err != nil {
		log.Printf("Token generation error: %v", err)
		utils.InternalError(c, "failed to generate token")
		return
	}
	refreshToken, err := services.GenerateRefreshToken(user.UserID)
	if err != nil {
		log.Printf("Refresh token generation error: %v", err)
		utils.InternalError(c, "failed to generate refresh token")
		return
	}

	utils.Created(c, dto.TokenPair{
		AccessToken:  token,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	user, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		utils.Unauthorized(c, "invalid credentials")
		return
	}

	ua := useragent.Parse(c.Request.UserAgent())
	deviceInfo := ua.Name + " on " + ua.OS
	now := time.Now()

	session := &model.LoginSession{
		SessionID:      uuid.New().String(),
		UserID:         user.UserID,
		DeviceInfo:     deviceInfo,
		IPAddress:      c.ClientIP(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Duration(utils.RefreshTokenExpirationTime) * time.Second),
		LastActivityAt: now,
		IsActive:       true,
	}
	if err := h.loginSessions.CreateSession(ctx, session); err != nil {
		// Device tracking is advisory; login still proceeds.
		log.Printf("Warning: failed to record login session: %v", err)
	}

	token, err := services.GenerateToken(user.UserID)
	if err != nil {
		log.Printf("Token generation error: %v", err)
		utils.InternalError(c, "failed to generate token")
		return
	}
	refreshToken, err := services.GenerateRefreshToken(user.UserID)
	if err != nil {
		log.Printf("Refresh token generation error: %v", err)
		utils.InternalError(c, "failed to generate refresh token")
		return
	}

	utils.Success(c, gin.H{
		"token":      token,
		"refresh":    refreshToken,
		"session_id": session.SessionID,
		"two_factor": user.TwoFactorEnabled,
	})
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is blacklisted so it cannot be replayed.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	if services.IsTokenBlacklisted(body.RefreshToken) {
		utils.Unauthorized(c, "refresh token has been invalidated")
		return
	}

	claims, err := services.ParseToken(body.RefreshToken)
	if err != nil {
		utils.Unauthorized(c, "invalid refresh token")
		return
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		utils.Unauthorized(c, "not a refresh token")
		return
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		utils.Unauthorized(c, "invalid refresh token")
		return
	}

	token, err := services.GenerateToken(userID)
	if err != nil {
		log.Printf("Token generation error: %v", err)
		utils.InternalError(c, "failed to generate token")
		return
	}
	refreshToken, err := services.GenerateRefreshToken(userID)
	if err != nil {
		log.Printf("Refresh token generation error: %v", err)
		utils.InternalError(c, "failed to generate refresh token")
		return
	}

	if err := services.BlacklistTokens("", body.RefreshToken); err != nil {
		log.Printf("Warning: failed to blacklist rotated refresh token: %v", err)
	}

	utils.Success(c, dto.TokenPair{
		AccessToken:  token,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		SessionID    string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	if err := services.BlacklistTokens(body.AccessToken, body.RefreshToken); err != nil {
		log.Printf("Error blacklisting tokens: %v", err)
		utils.InternalError(c, "failed to invalidate tokens")
		return
	}

	if userID, exists := c.Get("user_id"); exists && body.SessionID != "" {
		if err := h.loginSessions.EndSession(c.Request.Context(), body.SessionID, userID.(string)); err != nil {
			log.Printf("Warning: failed to end login session: %v", err)
		}
	}

	utils.Success(c, gin.H{"message": "logged out"})
}
