package handler

import (
	"encoding/base64"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	aidto "github.com/acadease/backend/internal/adapter/dto/ai"
	"github.com/acadease/backend/internal/domain/entities"
	"github.com/acadease/backend/internal/usecase/extract"
	"github.com/acadease/backend/internal/usecase/task"
)

// AI handles extraction pipeline HTTP requests
type AI struct {
	extractService extract.Service
	taskService    task.Service
	logger         *zap.Logger
}

// NewAI creates a new AI handler
func NewAI(extractService extract.Service, taskService task.Service, logger *zap.Logger) *AI {
	return &AI{
		extractService: extractService,
		taskService:    taskService,
		logger:         logger,
	}
}

// AnalyzeAudio runs the transcribe-then-extract pipeline on an audio
// recording. The response is always 200 with the pipeline outcome; failures
// are reported through its error_source field, not an HTTP error.
// POST /v1/ai/audio
func (h *AI) AnalyzeAudio(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req aidto.AnalyzeAudioRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("audio must be base64 encoded"))
	}

	analysis := h.extractService.AnalyzeAudio(ctx, audio)
	return HandleSuccess(h.logger, c, analysis)
}

// AnalyzeImage extracts task details from an image
// POST /v1/ai/image
func (h *AI) AnalyzeImage(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req aidto.AnalyzeImageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	proposal, err := h.extractService.AnalyzeImage(ctx, req.Image)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, proposal)
}

// Chat answers a question grounded in the caller's task list. The current
// tasks are fetched first so the assistant sees what the user sees; if that
// listing fails the chat still proceeds with no context.
// POST /v1/ai/chat
func (h *AI) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	var req aidto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	var tasks []entities.Task
	if listed, err := h.taskService.ListTasks(ctx, token); err != nil {
		h.logger.Warn("chat proceeding without task context", zap.Error(err))
	} else {
		tasks = listed
	}

	answer := h.extractService.Chat(ctx, req.Message, tasks)
	return HandleSuccess(h.logger, c, answer)
}
