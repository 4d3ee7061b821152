package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
)

type NotificationRepo struct {
	storage *Storage
}

func NewNotificationRepo(storage *Storage) *NotificationRepo {
	return &NotificationRepo{storage: storage}
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO notifications (id, company_id, user_id, task_id, message, read, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, NOW()) RETURNING created_at`,
		n.ID, n.CompanyID, n.UserID, n.TaskID, n.Message,
	).Scan(&n.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating notification", err)
		return fmt.Errorf("creating notification: %w", mapError(err))
	}
	return nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, companyID, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	start := time.Now()

	rows, err := r.storage.pool.Query(ctx,
		`SELECT id, company_id, user_id, task_id, message, read, created_at
			FROM notifications
			WHERE company_id = $1 AND user_id = $2
			ORDER BY created_at DESC
			LIMIT $3`, companyID, userID, limit)
	if err != nil {
		logger.Error("Repository: listing notifications", err)
		return nil, fmt.Errorf("listing notifications: %w", mapError(err))
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.UserID, &n.TaskID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			logger.Warn("Repository: scanning notification row", zap.Error(err))
			continue
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification rows: %w", err)
	}

	warnSlow("notification_list", start)
	return notifications, nil
}

// MarkRead is scoped to the owning user: one user can never flip another's
// notification.
func (r *NotificationRepo) MarkRead(ctx context.Context, companyID, userID, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE
			WHERE company_id = $1 AND user_id = $2 AND id = $3`, companyID, userID, id)
	if err != nil {
		logger.Error("Repository: marking notification read", err)
		return fmt.Errorf("marking notification read: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, companyID, userID uuid.UUID) (int, error) {
	var count int
	err := r.storage.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications
			WHERE company_id = $1 AND user_id = $2 AND NOT read`, companyID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", mapError(err))
	}
	return count, nil
}
