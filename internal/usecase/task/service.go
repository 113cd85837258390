package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/domain/entities"
	"github.com/acadease/backend/internal/infrastructure/external/gateway"
	"github.com/acadease/backend/pkg/authtoken"
	"github.com/acadease/backend/pkg/config"
)

// CreateInput is the caller-supplied portion of a new task
type CreateInput struct {
	Title       string
	Description string
	Priority    string
	Deadline    string
}

// Service defines task operations. Every operation resolves the owning user
// from the gateway token before touching the remote store.
type Service interface {
	CreateTask(ctx context.Context, token string, input CreateInput) (*entities.Task, error)
	DeleteTask(ctx context.Context, token, taskID string) error
	ListTasks(ctx context.Context, token string) ([]entities.Task, error)
}

type taskService struct {
	gw         *gateway.Client
	collection string
	logger     *zap.Logger
}

// NewTaskService constructs a new task service
func NewTaskService(gw *gateway.Client, cfg *config.GatewayConfig, logger *zap.Logger) Service {
	return &taskService{
		gw:         gw,
		collection: cfg.TaskCollection,
		logger:     logger,
	}
}

// CreateTask validates the draft locally and creates the record with the
// token's owner. No partial task ever reaches the gateway.
func (s *taskService) CreateTask(ctx context.Context, token string, input CreateInput) (*entities.Task, error) {
	claims, err := s.owner(token)
	if err != nil {
		return nil, err
	}

	draft := entities.NewTask(
		input.Title,
		input.Description,
		entities.NormalizePriority(input.Priority),
		input.Deadline,
		claims.RecordID,
	)
	if err := draft.Validate(); err != nil {
		return nil, apperrors.ErrValidation(err)
	}

	raw, err := s.gw.CreateRecord(ctx, token, s.collection, createPayload(draft))
	if err != nil {
		return nil, err
	}

	var created entities.Task
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	s.logger.Info("task created",
		zap.String("task_id", created.ID),
		zap.String("user_id", claims.RecordID),
	)
	return &created, nil
}

// DeleteTask removes a task by id
func (s *taskService) DeleteTask(ctx context.Context, token, taskID string) error {
	claims, err := s.owner(token)
	if err != nil {
		return err
	}
	if taskID == "" {
		return apperrors.ErrInvalidArgument("task id is required")
	}

	if err := s.gw.DeleteRecord(ctx, token, s.collection, taskID); err != nil {
		return err
	}

	s.logger.Info("task deleted",
		zap.String("task_id", taskID),
		zap.String("user_id", claims.RecordID),
	)
	return nil
}

// ListTasks returns the caller's tasks, newest first. The listing is always
// filtered to the token's owner; there is no unfiltered variant.
func (s *taskService) ListTasks(ctx context.Context, token string) ([]entities.Task, error) {
	claims, err := s.owner(token)
	if err != nil {
		return nil, err
	}

	list, err := s.gw.ListRecords(ctx, token, s.collection, gateway.ListOptions{
		Filter:  fmt.Sprintf("user = %q", claims.RecordID),
		Sort:    "-created",
		PerPage: 200,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]entities.Task, 0, len(list.Items))
	for _, item := range list.Items {
		var t entities.Task
		if err := json.Unmarshal(item, &t); err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *taskService) owner(token string) (*authtoken.Claims, error) {
	claims, err := authtoken.Parse(token)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	if claims.Expired(time.Now()) {
		return nil, apperrors.ErrTokenExpired()
	}
	return claims, nil
}

// createPayload shapes the record body for the gateway, omitting read-only
// fields like id and timestamps
func createPayload(t *entities.Task) map[string]interface{} {
	payload := map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"priority":    string(t.Priority),
		"completed":   t.Completed,
		"user":        t.User,
	}
	if t.Deadline != "" {
		payload["deadline"] = t.Deadline
	}
	return payload
}
