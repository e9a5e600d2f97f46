package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-sphere/internal/dto"
	apierrors "github.com/yukikurage/task-sphere/internal/errors"
	"github.com/yukikurage/task-sphere/internal/middleware"
	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks ordered by position.
// Filters by ?timeframe= when present.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var timeframe *models.Timeframe
	if raw := c.Query("timeframe"); raw != "" {
		tf := models.Timeframe(raw)
		timeframe = &tf
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID, timeframe)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask appends a new task to its timeframe
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		UserID:    userID,
		Text:      req.Text,
		Timeframe: req.Timeframe,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask changes text and/or completed
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), userID, services.UpdateTaskInput{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// ReorderTasks persists a new order for one timeframe
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.ReorderTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Tasks == nil {
		apierrors.BadRequest(c, "Tasks array is required")
		return
	}

	count, err := h.taskService.ReorderTasks(c.Request.Context(), services.ReorderTasksInput{
		UserID:    userID,
		Timeframe: req.Timeframe,
		TaskIDs:   req.TaskIDs(),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReorderTasksResponse{Success: true, Count: count})
}

// SuggestTasks asks the AI for tasks without persisting them
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggested, err := h.taskService.SuggestTasks(c.Request.Context(), services.SuggestTasksInput{
		Text:      req.Text,
		Timeframe: req.Timeframe,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.SuggestionDTO, len(suggested))
	for i, s := range suggested {
		items[i] = dto.SuggestionDTO{Text: s.Text}
	}

	c.JSON(http.StatusOK, dto.SuggestTasksResponse{Suggestions: items})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTextRequired):
		apierrors.BadRequestWithDetails(c, "Text is required", gin.H{"field": "text"})
	case errors.Is(err, services.ErrInvalidTimeframe):
		apierrors.BadRequestWithDetails(c, "Invalid timeframe", gin.H{"field": "timeframe"})
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c, "Forbidden")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured")
	case errors.Is(err, services.ErrAIUpstream):
		apierrors.BadGateway(c, "Failed to generate suggestions")
	default:
		apierrors.InternalError(c, "")
	}
}
