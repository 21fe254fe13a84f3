package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherbot-api/api/routes"
	"weatherbot-api/internal/common"
	"weatherbot-api/internal/config"
	"weatherbot-api/internal/convo"
	"weatherbot-api/internal/database"
	"weatherbot-api/internal/events"
	"weatherbot-api/internal/forecast"
	"weatherbot-api/internal/geocode"
	"weatherbot-api/internal/messenger"
	"weatherbot-api/internal/profile"
	"weatherbot-api/internal/schedule"
	"weatherbot-api/internal/scheduler"
	"weatherbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.NewWithLevel(cfg.Log.Level)
	defer logger.Sync()

	// Get the underlying zap logger for services
	zapLogger := logger.SugaredLogger.Desugar()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Run module migrations
	if err := profile.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run profile migrations", "error", err)
	}
	if err := schedule.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run schedule migrations", "error", err)
	}
	if err := messenger.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run message store migrations", "error", err)
	}

	// Initialize event bus
	eventBus := events.NewEventBus(zapLogger)

	clock := common.NewRealClock()

	// Initialize repositories and providers
	profileRepository := profile.NewGormRepository(db, zapLogger)
	scheduleRepository := schedule.NewGormRepository(db, zapLogger)
	storeProvider := messenger.NewStoreProvider(db, zapLogger)
	resolver := geocode.NewClient(cfg.Geocode, zapLogger)
	forecastProvider := forecast.NewNWSClient(cfg.Forecast, zapLogger)
	metarProvider := forecast.NewMetarClient(cfg.Forecast, zapLogger)

	// Initialize services
	conversationService, err := convo.NewConversationService(
		eventBus, zapLogger,
		profileRepository, scheduleRepository,
		resolver, forecastProvider, metarProvider,
		clock)
	if err != nil {
		logger.Fatal("Failed to initialize conversation service", "error", err)
	}

	messengerService, err := messenger.NewMessengerService(cfg.Messenger, storeProvider, storeProvider, eventBus, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize messenger service", "error", err)
	}
	if err := messengerService.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start messenger service", "error", err)
	}

	// Initialize scheduler
	var scheduleSweeper scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		scheduleSweeper, err = scheduler.NewScheduler(cfg.Scheduler, scheduleRepository, conversationService, zapLogger, clock)
		if err != nil {
			logger.Fatal("Failed to create scheduler", "error", err)
		}
		if err := scheduleSweeper.Start(context.Background()); err != nil {
			logger.Fatal("Failed to start scheduler", "error", err)
		}

		logger.Info("Schedule sweeper started",
			"poll_interval", cfg.Scheduler.PollInterval)
	} else {
		logger.Info("Schedule sweeper disabled")
	}

	logger.Info("Services initialized",
		"conversation", conversationService != nil,
		"messenger", messengerService.IsRunning())

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		DB:        db,
		Profiles:  profileRepository,
		Schedules: scheduleRepository,
		Messages:  storeProvider,
		Poller:    messengerService,
		Sweeper:   scheduleSweeper,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the scheduler first so no new deliveries start
	if cfg.Scheduler.Enabled && scheduleSweeper != nil {
		if err := scheduleSweeper.Stop(); err != nil {
			logger.Error("Failed to stop scheduler gracefully", "error", err)
		}
	}

	// Then stop the inbound poller
	if err := messengerService.Stop(); err != nil {
		logger.Error("Failed to stop messenger service gracefully", "error", err)
	}

	// Close event bus
	if err := eventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
