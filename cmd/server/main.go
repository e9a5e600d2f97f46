package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-sphere/internal/auth"
	"github.com/yukikurage/task-sphere/internal/config"
	"github.com/yukikurage/task-sphere/internal/constants"
	"github.com/yukikurage/task-sphere/internal/database"
	"github.com/yukikurage/task-sphere/internal/handlers"
	"github.com/yukikurage/task-sphere/internal/logging"
	"github.com/yukikurage/task-sphere/internal/repository"
	"github.com/yukikurage/task-sphere/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET not set, using development secret")
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), constants.SessionTTL)
	if err != nil {
		log.Error("failed to create token service", "error", err)
		os.Exit(1)
	}

	// Initialize AI service
	suggestions := services.NewSuggestionService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if suggestions == nil {
		log.Info("OPENAI_API_KEY not set, task suggestions disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthService:  services.NewAuthService(repository.NewUserRepository(db), tokens),
		TaskService:  services.NewTaskService(repository.NewTaskRepository(db), suggestions),
		Tokens:       tokens,
		Logger:       log,
		SecureCookie: cfg.IsProduction(),
		WebDir:       cfg.WebDir,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
