package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskboard-service/internal/domain"
	"github.com/spec-kit/taskboard-service/internal/events"
	"github.com/spec-kit/taskboard-service/internal/repository"
	apperrors "github.com/spec-kit/taskboard-service/pkg/util/errorutil"
)

// TaskService manages the per-user task list the auth subsystem guards.
type TaskService struct {
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, dispatcher: dispatcher}
}

// TaskCreateInput captures the fields a user supplies for a new task.
type TaskCreateInput struct {
	Title       string
	Description string
	DueAt       *time.Time
}

// TaskUpdateInput captures editable fields; nil pointers leave fields as-is.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	DueAt       *time.Time
}

// CreateTask creates a task owned by the given user.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input TaskCreateInput) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required")
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusTodo,
		DueAt:       input.DueAt,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.EventTaskCreated, ownerID, events.TaskCreatedPayload{
		TaskID: task.ID,
		Title:  task.Title,
	})
	return task, nil
}

// ListTasks returns the owner's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, limit, offset int) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// GetTask returns one task after an ownership check.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.getOwned(ctx, ownerID, taskID)
}

// UpdateTask applies edits to an owned task. Moving into DONE stamps
// CompletedAt; moving out of it clears the stamp.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.getOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.NewValidationError("title required")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DueAt != nil {
		task.DueAt = input.DueAt
	}
	if input.Status != nil {
		if !domain.ValidTaskStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status")
		}
		task.Status = *input.Status
		if task.Status == domain.TaskStatusDone && task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
		if task.Status != domain.TaskStatusDone {
			task.CompletedAt = nil
		}
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.Status != nil && oldStatus != task.Status {
		s.publishEvent(ctx, events.EventTaskStatusChanged, ownerID, events.TaskStatusChangedPayload{
			TaskID:    task.ID,
			OldStatus: string(oldStatus),
			NewStatus: string(task.Status),
		})
	}
	return task, nil
}

// DeleteTask removes an owned task.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if _, err := s.getOwned(ctx, ownerID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TaskService) getOwned(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task")
		}
		return nil, apperrors.MapError(err)
	}
	if task.OwnerID != ownerID {
		// Do not confirm the task exists for someone else.
		return nil, apperrors.NewNotFound("task")
	}
	return task, nil
}

func (s *TaskService) publishEvent(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
