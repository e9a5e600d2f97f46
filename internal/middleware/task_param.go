package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/yukikurage/task-sphere/internal/errors"
)

// RequireTaskID rejects task routes whose :id cannot be a task identifier.
// Such ids cannot exist, so they get the same 404 as an unknown id.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := uuid.Validate(c.Param("id")); err != nil {
			apierrors.NotFound(c, "Task not found")
			return
		}
		c.Next()
	}
}
