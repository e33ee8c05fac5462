package handler

import (
	"context"
	"time"

	"github.com/appdotbuilder/octa-focus/services"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthHandler struct {
	mongoClient *mongo.Client
}

func NewHealthHandler(mongoClient *mongo.Client) *HealthHandler {
	return &HealthHandler{mongoClient: mongoClient}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	mongoStatus := "up"
	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		mongoStatus = "down"
	}

	redisStatus := "not configured"
	if services.TokenBlacklist != nil {
		redisStatus = "up"
		if err := services.TokenBlacklist.Client.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	utils.Success(c, gin.H{
		"mongo":       mongoStatus,
		"redis":       redisStatus,
		"cpu_percent": utils.GetCPUUsage(),
	})
}
