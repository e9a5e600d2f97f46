package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/task-sphere/internal/models"
)

var (
	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("repository: email already registered")
	// ErrOwnershipMismatch is returned when a reorder names a task the user does
	// not own in the given timeframe, or names a task twice.
	ErrOwnershipMismatch = errors.New("repository: task ownership mismatch")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateAtEnd assigns the next position in the task's (user, timeframe)
	// bucket and inserts the task
	CreateAtEnd(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// ListByUser lists a user's tasks by ascending position, optionally
	// restricted to one timeframe
	ListByUser(ctx context.Context, userID string, timeframe *models.Timeframe) ([]models.Task, error)

	// Update writes text and completed
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task without touching its siblings' positions
	Delete(ctx context.Context, id string) error

	// Reorder rewrites position = index for every id in one transaction
	Reorder(ctx context.Context, userID string, timeframe models.Timeframe, ids []string) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
