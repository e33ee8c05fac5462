package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/appdotbuilder/octa-focus/handler"
	"github.com/appdotbuilder/octa-focus/middleware"
	"github.com/appdotbuilder/octa-focus/repository"
	"github.com/appdotbuilder/octa-focus/services"
	"github.com/appdotbuilder/octa-focus/usecase"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Fatalf("Error loading .env file: %v", err)
	}

	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"USERS_COLLECTION",
		"GOALS_COLLECTION",
		"SESSIONS_COLLECTION",
		"STATS_COLLECTION",
		"LOGIN_SESSIONS_COLLECTION",
		"JWT_SECRET_KEY",
		"JWT_EXPIRATION_TIME",
		"REFRESH_TOKEN_EXPIRATION_TIME",
		"PORT",
	}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	utils.InitJWT()
	utils.InitMongoClient()
}

func setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Repositories
	usersRepo := repository.GetUsersRepo(utils.MongoClient)
	goalsRepo := repository.GetGoalsRepo(utils.MongoClient)
	sessionsRepo := repository.GetSessionsRepo(utils.MongoClient)
	statsRepo := repository.GetStatsRepo(utils.MongoClient)
	loginSessionsRepo := repository.GetLoginSessionsRepo(utils.MongoClient)

	// Services
	statsService := usecase.NewStatsService(statsRepo, services.GlobalLeaderboardCache)
	sessionService := usecase.NewSessionService(sessionsRepo, goalsRepo, statsService)
	goalService := usecase.NewGoalService(goalsRepo)
	userService := usecase.NewUserService(usersRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(userService, loginSessionsRepo)
	twoFactorHandler := handler.NewTwoFactorHandler(usersRepo)
	goalHandler := handler.NewGoalHandler(goalService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	statsHandler := handler.NewStatsHandler(statsService)
	healthHandler := handler.NewHealthHandler(utils.MongoClient)

	// Decay sweeps run in the background for the life of the process.
	decayInterval := utils.GetEnvAsDuration("DECAY_SWEEP_INTERVAL", time.Hour)
	services.NewDecayScheduler(statsService, decayInterval).Start()

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/2fa/enable", twoFactorHandler.Enable)
		protected.POST("/auth/2fa/verify", twoFactorHandler.Verify)

		goals := protected.Group("/goals")
		{
			goals.POST("/", goalHandler.CreateGoal)
			goals.GET("/", goalHandler.GetUserGoals)
			goals.PUT("/:id", goalHandler.UpdateGoal)
			goals.DELETE("/:id", goalHandler.DeleteGoal)
			goals.POST("/:id/milestones/:milestoneId/toggle", goalHandler.ToggleMilestone)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.POST("/", sessionHandler.StartSession)
			sessions.GET("/", sessionHandler.GetUserSessions)
			sessions.POST("/:id/complete", sessionHandler.CompleteSession)
			sessions.POST("/:id/abandon", sessionHandler.AbandonSession)
		}

		protected.GET("/leaderboard", statsHandler.GetLeaderboard)
		protected.GET("/stats", statsHandler.GetUserStats)
		protected.POST("/admin/decay/run", statsHandler.RunDecaySweep)
	}

	return router
}

func main() {
	// Redis-backed pieces are optional: without REDIS_URL the blacklist
	// fails open and the leaderboard reads go straight to Mongo.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		blacklist, err := services.NewTokenBlacklist(redisURL)
		if err != nil {
			log.Fatalf("Failed to initialize token blacklist: %v", err)
		}
		services.TokenBlacklist = blacklist

		cacheTTL := utils.GetEnvAsDuration("LEADERBOARD_CACHE_TTL", 30*time.Second)
		cache, err := services.NewLeaderboardCache(redisURL, cacheTTL)
		if err != nil {
			log.Fatalf("Failed to initialize leaderboard cache: %v", err)
		}
		services.GlobalLeaderboardCache = cache
	}

	db := utils.MongoClient.Database(os.Getenv("MONGO_DB"))
	if err := repository.SetupIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	router := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
