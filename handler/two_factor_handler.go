package handler

import (
	"log"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/repository"
	"github.com/appdotbuilder/octa-focus/services"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
)

type TwoFactorHandler struct {
	usersRepo *repository.UsersRepo
}

func NewTwoFactorHandler(usersRepo *repository.UsersRepo) *TwoFactorHandler {
	return &TwoFactorHandler{usersRepo: usersRepo}
}

// Enable generates a TOTP secret for the account and returns the
// provisioning URL. The secret only becomes active after Verify succeeds.
func (h *TwoFactorHandler) Enable(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	user, err := h.usersRepo.FindUser(ctx, userID.(string))
	if err != nil || user == nil {
		utils.NotFound(c, "User not found")
		return
	}
	if user.TwoFactorEnabled {
		utils.Conflict(c, "two-factor already enabled")
		return
	}

	secret, url, err := services.GenerateTwoFactorSecret(user.Username)
	if err != nil {
		log.Printf("Error generating 2FA secret: %v", err)
		utils.InternalError(c, "failed to generate secret")
		return
	}

	// The client must echo the secret back to Verify with a valid code.
	utils.Success(c, gin.H{
		"secret": secret,
		"url":    url,
	})
}

// Verify activates two-factor auth after the client proves it can produce a
// valid code for the pending secret.
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	ctx := c.Request.Context()
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	var req struct {
		dto.VerifyTwoFactorRequest
		Secret string `json:"secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	if !services.VerifyTwoFactorCode(req.Code, req.Secret) {
		utils.Unauthorized(c, "invalid code")
		return
	}

	if err := h.usersRepo.EnableTwoFactor(ctx, userID.(string), req.Secret); err != nil {
		log.Printf("Error enabling 2FA: %v", err)
		utils.InternalError(c, "failed to enable two-factor")
		return
	}

	utils.Success(c, gin.H{"message": "two-factor enabled"})
}
