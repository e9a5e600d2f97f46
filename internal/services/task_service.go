package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskForbidden          = errors.New("task belongs to another user")
	ErrTextRequired           = errors.New("text is required")
	ErrInvalidTimeframe       = errors.New("timeframe must be one of daily, weekly, monthly, yearly")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAIUpstream             = errors.New("AI service request failed")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	suggestions *SuggestionService
}

// NewTaskService creates a new TaskService. suggestions may be nil, in which
// case SuggestTasks returns ErrAIServiceNotConfigured.
func NewTaskService(taskRepo repository.TaskRepository, suggestions *SuggestionService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		suggestions: suggestions,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID    string
	Text      string
	Timeframe models.Timeframe
}

// UpdateTaskInput represents a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Text      *string
	Completed *bool
}

// ReorderTasksInput names the full new order of one timeframe bucket.
type ReorderTasksInput struct {
	UserID    string
	Timeframe models.Timeframe
	TaskIDs   []string
}

// SuggestTasksInput is the free text the AI breaks down into tasks.
type SuggestTasksInput struct {
	Text      string
	Timeframe models.Timeframe
}

// ListTasks returns the user's tasks by ascending position. A nil timeframe
// returns every bucket.
func (s *TaskService) ListTasks(ctx context.Context, userID string, timeframe *models.Timeframe) ([]models.Task, error) {
	if timeframe != nil && !timeframe.Valid() {
		return nil, ErrInvalidTimeframe
	}

	tasks, err := s.taskRepo.ListByUser(ctx, userID, timeframe)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task owned by userID
func (s *TaskService) GetTask(ctx context.Context, taskID, userID string) (*models.Task, error) {
	return s.findOwned(ctx, taskID, userID)
}

// CreateTask appends a new task to the end of its timeframe bucket
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTextRequired
	}
	if !input.Timeframe.Valid() {
		return nil, ErrInvalidTimeframe
	}

	task := &models.Task{
		UserID:    input.UserID,
		Text:      input.Text,
		Timeframe: input.Timeframe,
	}

	if err := s.taskRepo.CreateAtEnd(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask changes text and/or completed on a task owned by userID
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if input.Text != nil {
		if strings.TrimSpace(*input.Text) == "" {
			return nil, ErrTextRequired
		}
		task.Text = *input.Text
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task owned by userID
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID string) error {
	if _, err := s.findOwned(ctx, taskID, userID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ReorderTasks sets position = index for every task in input.TaskIDs. Nothing
// is written unless every id belongs to the user and the timeframe. An empty
// list updates nothing.
func (s *TaskService) ReorderTasks(ctx context.Context, input ReorderTasksInput) (int64, error) {
	if !input.Timeframe.Valid() {
		return 0, ErrInvalidTimeframe
	}

	updated, err := s.taskRepo.Reorder(ctx, input.UserID, input.Timeframe, input.TaskIDs)
	if err != nil {
		if errors.Is(err, repository.ErrOwnershipMismatch) {
			return 0, ErrTaskForbidden
		}
		return 0, fmt.Errorf("failed to reorder tasks: %w", err)
	}

	return updated, nil
}

// SuggestTasks asks the AI to break free text into task texts for a timeframe
func (s *TaskService) SuggestTasks(ctx context.Context, input SuggestTasksInput) ([]SuggestedTask, error) {
	if s.suggestions == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTextRequired
	}
	if !input.Timeframe.Valid() {
		return nil, ErrInvalidTimeframe
	}

	suggested, err := s.suggestions.Suggest(ctx, input.Text, input.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUpstream, err)
	}

	return suggested, nil
}

// findOwned loads a task and checks that userID owns it
func (s *TaskService) findOwned(ctx context.Context, taskID, userID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.UserID != userID {
		return nil, ErrTaskForbidden
	}

	return task, nil
}
