package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
)

// Pusher is the realtime fan-out; the hub implements it.
type Pusher interface {
	Push(userID uuid.UUID, payload any)
}

type NotificationService struct {
	repo   repository.NotificationRepository
	pusher Pusher
}

func NewNotificationService(repo repository.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
	}
}

// Notify persists a notification and pushes it to the user's live
// connections. Failures are logged, never surfaced: notification delivery
// must not fail the task mutation that triggered it.
func (s *NotificationService) Notify(ctx context.Context, companyID, userID, taskID uuid.UUID, message string) {
	n := &models.Notification{
		ID:        uuid.New(),
		CompanyID: companyID,
		UserID:    userID,
		TaskID:    taskID,
		Message:   message,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		logger.Error("Service: creating notification", err,
			zap.String("user_id", userID.String()),
			zap.String("task_id", taskID.String()))
		return
	}

	if s.pusher != nil {
		s.pusher.Push(userID, n)
	}
}

func (s *NotificationService) List(ctx context.Context, companyID, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	notifications, err := s.repo.ListForUser(ctx, companyID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead is best-effort from the caller's perspective: handlers log the
// error and answer 204 regardless.
func (s *NotificationService) MarkRead(ctx context.Context, companyID, userID, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, companyID, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("notification", id.String())
		}
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, companyID, userID uuid.UUID) (int, error) {
	count, err := s.repo.UnreadCount(ctx, companyID, userID)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}
