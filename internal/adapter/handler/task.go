package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	taskdto "github.com/acadease/backend/internal/adapter/dto/task"
	"github.com/acadease/backend/internal/usecase/task"
)

// Task handles task HTTP requests
type Task struct {
	taskService task.Service
	logger      *zap.Logger
}

// NewTask creates a new task handler
func NewTask(taskService task.Service, logger *zap.Logger) *Task {
	return &Task{
		taskService: taskService,
		logger:      logger,
	}
}

// List returns the caller's tasks, newest first
// GET /v1/tasks
func (h *Task) List(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	tasks, err := h.taskService.ListTasks(ctx, token)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, tasks)
}

// Create creates a new task owned by the caller
// POST /v1/tasks
func (h *Task) Create(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req taskdto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	created, err := h.taskService.CreateTask(ctx, token, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, created)
}

// Delete removes one of the caller's tasks
// DELETE /v1/tasks/:id
func (h *Task) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	if err := h.taskService.DeleteTask(ctx, token, c.Param("id")); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, nil)
}
