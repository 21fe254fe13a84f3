package routes

import (
	"weatherbot-api/api/handlers"
	"weatherbot-api/api/middleware"
	"weatherbot-api/internal/messenger"
	"weatherbot-api/internal/profile"
	"weatherbot-api/internal/schedule"
	"weatherbot-api/internal/scheduler"
	"weatherbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies carries everything the HTTP surface needs
type Dependencies struct {
	DB        *gorm.DB
	Profiles  profile.Repository
	Schedules schedule.Repository
	Messages  handlers.MessageCounter
	Poller    messenger.Service
	Sweeper   scheduler.Scheduler
}

func SetupRoutes(router *gin.Engine, deps Dependencies, logger *logger.Logger) {
	// Add middleware
	router.Use(middleware.RequestLogging(logger))
	router.Use(gin.Recovery())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, logger)
	statusHandler := handlers.NewStatusHandler(deps.Profiles, deps.Schedules, deps.Messages, deps.Poller, deps.Sweeper, logger)
	schedulesHandler := handlers.NewSchedulesHandler(deps.Schedules, logger)

	// Setup routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.GET("/status", statusHandler.Status)
		v1.GET("/users/:user_id/schedules", schedulesHandler.ListByUser)
	}

	// Root health check
	router.GET("/health", healthHandler.Check)
}
