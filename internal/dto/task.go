package dto

import (
	"time"

	"github.com/yukikurage/task-sphere/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Text      string           `json:"text"`
	Completed bool             `json:"completed"`
	Timeframe models.Timeframe `json:"timeframe"`
	Position  int              `json:"position"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Text      string           `json:"text"`
	Timeframe models.Timeframe `json:"timeframe"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Omitted fields are
// left unchanged.
type UpdateTaskRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// TaskRef identifies one task in a reorder request
type TaskRef struct {
	ID string `json:"id"`
}

// ReorderTasksRequest is the body of PUT /api/tasks/reorder. Tasks are listed
// in their new order.
type ReorderTasksRequest struct {
	Tasks     []TaskRef        `json:"tasks"`
	Timeframe models.Timeframe `json:"timeframe"`
}

// ReorderTasksResponse reports how many positions were rewritten
type ReorderTasksResponse struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

// SuggestTasksRequest is the body of POST /api/tasks/suggest
type SuggestTasksRequest struct {
	Text      string           `json:"text"`
	Timeframe models.Timeframe `json:"timeframe"`
}

// SuggestionDTO is one unpersisted task suggestion
type SuggestionDTO struct {
	Text string `json:"text"`
}

// SuggestTasksResponse wraps the suggestions list
type SuggestTasksResponse struct {
	Suggestions []SuggestionDTO `json:"suggestions"`
}

// SuccessResponse is returned by endpoints with nothing else to report
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:        task.ID,
		UserID:    task.UserID,
		Text:      task.Text,
		Completed: task.Completed,
		Timeframe: task.Timeframe,
		Position:  task.Position,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// TaskIDs flattens the request's task references in order
func (r ReorderTasksRequest) TaskIDs() []string {
	ids := make([]string, len(r.Tasks))
	for i, ref := range r.Tasks {
		ids[i] = ref.ID
	}
	return ids
}
