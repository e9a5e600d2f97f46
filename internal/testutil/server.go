// Package testutil starts a complete task-sphere server for client-side tests.
package testutil

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-sphere/internal/auth"
	"github.com/yukikurage/task-sphere/internal/constants"
	"github.com/yukikurage/task-sphere/internal/handlers"
	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/repository"
	"github.com/yukikurage/task-sphere/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestSecret signs session tokens issued by NewServer.
const TestSecret = "testutil-secret-at-least-32-bytes!"

// NewDB opens a migrated in-memory SQLite database closed at test cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	return db
}

// NewServer serves the full router over HTTP. suggestions may be nil.
func NewServer(t *testing.T, suggestions *services.SuggestionService) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := NewDB(t)
	tokens, err := auth.NewTokenService([]byte(TestSecret), constants.SessionTTL)
	require.NoError(t, err)

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthService: services.NewAuthService(repository.NewUserRepository(db), tokens),
		TaskService: services.NewTaskService(repository.NewTaskRepository(db), suggestions),
		Tokens:      tokens,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}
