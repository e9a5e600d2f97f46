package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-sphere/internal/constants"
	apierrors "github.com/yukikurage/task-sphere/internal/errors"
	"github.com/yukikurage/task-sphere/internal/logging"
	"github.com/yukikurage/task-sphere/internal/middleware"
	"github.com/yukikurage/task-sphere/internal/services"
)

// RouterConfig carries everything the HTTP layer depends on.
type RouterConfig struct {
	AuthService  *services.AuthService
	TaskService  *services.TaskService
	Tokens       middleware.TokenVerifier
	Logger       *slog.Logger
	SecureCookie bool
	// WebDir holds the browser bundle. Pages are not served when empty.
	WebDir string
}

// NewRouter wires middleware and routes. Every request, including unknown
// paths, passes through the session gate.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(cfg.Logger, constants.ContextKeyUserID))
	r.Use(middleware.SessionGate(cfg.Tokens, cfg.Logger))

	authHandler := NewAuthHandler(cfg.AuthService, cfg.SecureCookie)
	taskHandler := NewTaskHandler(cfg.TaskService)

	// Health check endpoint
	r.GET(constants.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task routes (protected by the gate)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("/reorder", taskHandler.ReorderTasks)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", middleware.RequireTaskID(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
		}
	}

	if cfg.WebDir != "" {
		r.StaticFile(constants.HomePath, filepath.Join(cfg.WebDir, "index.html"))
		r.StaticFile(constants.LoginPath, filepath.Join(cfg.WebDir, "login.html"))
		r.StaticFile(constants.SignupPath, filepath.Join(cfg.WebDir, "signup.html"))
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.WebDir))))
	} else {
		r.NoRoute(func(c *gin.Context) {
			apierrors.NotFound(c, "")
		})
	}

	return r
}
