package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository/postgres"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/transcribe"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("configuration loaded", "address", cfg.Server.Address, "logMode", cfg.Log.Mode)

	// --- Database Connection ---
	db, err := postgres.ConnectDB(cfg.Database.DSN)
	if err != nil {
		appLog.Fatal("could not connect to database", "error", err)
	}
	if err := postgres.MigrateDB(db); err != nil {
		appLog.Fatal("could not migrate database schema", "error", err)
	}
	appLog.Info("database connection established")

	// --- Initialize Repositories ---
	userRepo := postgres.NewUserRepository(db, appLog)
	exerciseRepo := postgres.NewExerciseRepository(db, appLog)
	workoutRepo := postgres.NewWorkoutRepository(db, appLog)
	voiceNoteRepo := postgres.NewVoiceNoteRepository(db, appLog)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Google.OAuthClientID, appLog)
	userService := service.NewUserService(userRepo, appLog)
	exerciseService := service.NewExerciseService(exerciseRepo, appLog)
	workoutService := service.NewWorkoutService(db, workoutRepo, exerciseRepo, appLog)

	// Voice notes need both an archive bucket and the Speech API; without
	// them the rest of the API runs fine.
	var transcriptionService service.TranscriptionService
	if cfg.Google.SpeechEnabled {
		fileStorage, err := storage.NewS3Storage(cfg.S3, appLog)
		if err != nil {
			appLog.Fatal("failed to initialize S3 storage", "error", err)
		}
		transcriber, err := transcribe.NewGCPTranscriber(context.Background(), appLog)
		if err != nil {
			appLog.Fatal("failed to initialize speech transcriber", "error", err)
		}
		transcriptionService = service.NewTranscriptionService(voiceNoteRepo, fileStorage, transcriber, appLog)
		appLog.Info("voice note transcription enabled")
	} else {
		appLog.Info("voice note transcription disabled")
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, appLog, authService, userService, exerciseService, workoutService, transcriptionService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		appLog.Info("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("listen and serve error", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLog.Fatal("server forced to shutdown", "error", err)
	}

	appLog.Info("server exiting")
}
