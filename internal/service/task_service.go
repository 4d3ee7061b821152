package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
)

// Notifier delivers a task-related message to a user. Delivery is
// best-effort; implementations log failures instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, companyID, userID, taskID uuid.UUID, message string)
}

type TaskService struct {
	repo     repository.TaskRepository
	notifier Notifier
	now      func() time.Time
}

func NewTaskService(repo repository.TaskRepository, notifier Notifier) *TaskService {
	return &TaskService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, companyID, creatorID uuid.UUID, title, description string, assigneeID, propertyID, typeID uuid.UUID, dueDate time.Time) (*models.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "must not be empty")
	}
	if dueDate.IsZero() {
		return nil, NewValidationError("due_date", "must be set")
	}
	if assigneeID == uuid.Nil {
		return nil, NewValidationError("assignee_id", "must be set")
	}
	if propertyID == uuid.Nil {
		return nil, NewValidationError("property_id", "must be set")
	}

	t := &models.Task{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Title:       title,
		Description: description,
		CreatorID:   creatorID,
		AssigneeID:  assigneeID,
		PropertyID:  propertyID,
		TypeID:      typeID,
		State:       models.StatePending,
		DueDate:     dueDate,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if s.notifier != nil && t.AssigneeID != t.CreatorID {
		s.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, t.ID, "New task assigned: "+t.Title)
	}

	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("target_id", id.String()))
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error) {
	tasks, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the given options to the stored row and persists it.
// Direct edit is the only path that may touch a completed or deleted task's
// references.
func (s *TaskService) UpdateTask(ctx context.Context, companyID, id uuid.UUID, options ...models.TaskOption) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}

	previousAssignee := t.AssigneeID
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	if t.Title == "" {
		return nil, NewValidationError("title", "must not be empty")
	}

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, NewBusinessError("VERSION_CONFLICT", "the task was modified by someone else, reload and retry")
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	if s.notifier != nil && t.AssigneeID != previousAssignee {
		s.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, t.ID, "Task reassigned to you: "+t.Title)
	}

	return t, nil
}

// ToggleTask flips pending <-> completed, maintaining the completion
// timestamp. A deleted task cannot be toggled.
func (s *TaskService) ToggleTask(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}

	switch t.State {
	case models.StatePending:
		now := s.now()
		t.State = models.StateCompleted
		t.CompletedAt = &now
	case models.StateCompleted:
		t.State = models.StatePending
		t.CompletedAt = nil
	case models.StateDeleted:
		return nil, NewBusinessError("TASK_DELETED", "a deleted task cannot be toggled",
			ToDetail("id", id.String()))
	default:
		return nil, NewBusinessError("INVALID_STATE", "task is in an unrecognized state",
			ToDetail("state", string(t.State)))
	}

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, NewBusinessError("VERSION_CONFLICT", "the task was modified by someone else, reload and retry")
		}
		return nil, fmt.Errorf("toggling task: %w", err)
	}

	if s.notifier != nil && t.State == models.StateCompleted && t.CreatorID != t.AssigneeID {
		s.notifier.Notify(ctx, t.CompanyID, t.CreatorID, t.ID, "Task completed: "+t.Title)
	}

	return t, nil
}

// DeleteTask soft-deletes; there is no undelete path.
func (s *TaskService) DeleteTask(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}

	if t.State == models.StateDeleted {
		return nil, NewBusinessError("TASK_DELETED", "task is already deleted",
			ToDetail("id", id.String()))
	}

	if err := s.repo.SoftDelete(ctx, t); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, NewBusinessError("VERSION_CONFLICT", "the task was modified by someone else, reload and retry")
		}
		return nil, fmt.Errorf("deleting task: %w", err)
	}

	return t, nil
}
