package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskcom/internal/models"
)

// Every method is scoped by company id; crossing that boundary is the one
// defect this layer must never allow.

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	SoftDelete(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error)
	DueBefore(ctx context.Context, deadline time.Time, limit int) ([]*models.Task, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Property, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Property, error)
}

type GroupRepository interface {
	Create(ctx context.Context, g *models.Group) error
	Update(ctx context.Context, g *models.Group) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Group, error)
}

type TaskTypeRepository interface {
	Create(ctx context.Context, t *models.TaskType) error
	Update(ctx context.Context, t *models.TaskType) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.TaskType, error)
}

type RoleRepository interface {
	Create(ctx context.Context, r *models.Role) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Role, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Role, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.User, error)
	CountActive(ctx context.Context, companyID uuid.UUID) (int, error)
	SetPropertyAssignments(ctx context.Context, userID uuid.UUID, propertyIDs []uuid.UUID) error
	SetGroupAssignments(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error
	PropertyAssignments(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, c *models.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, companyID, userID uuid.UUID, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, companyID, userID, id uuid.UUID) error
	UnreadCount(ctx context.Context, companyID, userID uuid.UUID) (int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

type RecoveryRepository interface {
	Create(ctx context.Context, t *models.RecoveryToken) error
	// Consume returns the token and invalidates it in the same step.
	Consume(ctx context.Context, token string) (*models.RecoveryToken, error)
}
