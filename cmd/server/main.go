package main

import (
	"alcyxob/coachlink/internal/api"
	"alcyxob/coachlink/internal/cache"
	"alcyxob/coachlink/internal/config"
	"alcyxob/coachlink/internal/notify"
	"alcyxob/coachlink/internal/repository/mongo"
	"alcyxob/coachlink/internal/scheduling"
	"alcyxob/coachlink/internal/service"
	"alcyxob/coachlink/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title CoachLink API
// @version 1.0
// @description API for the CoachLink marketplace: coaching programs, enrollments, and session scheduling.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting CoachLink server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("Could not load config", zap.Error(err))
	}
	logger.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established.")

	// --- Ensure Indexes ---
	logger.Info("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		mongo.EnsureEnrollmentIndexes(ctx, appDB.Collection("enrollments"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureAvailabilityIndexes(ctx, appDB.Collection("availability"))
		mongo.EnsureBlackoutIndexes(ctx, appDB.Collection("blackouts"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		logger.Info("Index creation process completed.")
	}()

	// --- Slot Cache ---
	// Redis is optional: a failed connection degrades slot lookups to
	// recomputation instead of killing the server.
	var slotCache *cache.SlotCache
	redisClient, err := cache.ConnectRedis(cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, slot caching disabled", zap.Error(err))
	} else {
		slotCache = cache.NewSlotCache(redisClient, cfg.Redis.SlotTTL, logger)
		defer redisClient.Close()
		logger.Info("Slot cache ready.", zap.Duration("ttl", cfg.Redis.SlotTTL))
	}

	// --- Initialize Storage ---
	logger.Info("Initializing media storage...")
	mediaStorage, err := storage.NewS3Storage(cfg.S3, logger)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	logger.Info("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	enrollmentRepo := mongo.NewMongoEnrollmentRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	availabilityRepo := mongo.NewMongoAvailabilityRepository(appDB)
	blackoutRepo := mongo.NewMongoBlackoutRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)

	// --- Initialize Services ---
	logger.Info("Initializing services...")
	notifier := notify.NewInboxNotifier(notificationRepo, logger)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	programService := service.NewProgramService(programRepo, mediaStorage)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, programRepo, sessionRepo, notifier, logger)
	availabilityService := service.NewAvailabilityService(availabilityRepo, blackoutRepo, slotCache)
	sessionService := service.NewSessionService(
		sessionRepo,
		enrollmentRepo,
		availabilityRepo,
		blackoutRepo,
		slotCache,
		notifier,
		scheduling.SystemClock(),
		logger,
	)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	logger.Info("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		programService,
		enrollmentService,
		availabilityService,
		sessionService,
		notificationRepo,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Server starting", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting.")
}
