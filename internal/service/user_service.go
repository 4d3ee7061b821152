package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskcom/internal/models"
	"taskcom/internal/repository"
)

// UserService is the privileged user-management path: seat limits and the
// client-role property rule are enforced here, server-side.
type UserService struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	companies repository.CompanyRepository
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, companies repository.CompanyRepository) *UserService {
	return &UserService{
		users:     users,
		roles:     roles,
		companies: companies,
	}
}

func (s *UserService) CreateUser(ctx context.Context, companyID uuid.UUID, name, email, password string, roleID uuid.UUID, propertyIDs []uuid.UUID) (*models.User, error) {
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if email == "" {
		return nil, NewValidationError("email", "must not be empty")
	}
	if len(password) < 6 {
		return nil, NewValidationError("password", "must be at least 6 characters")
	}

	role, err := s.roles.GetByID(ctx, companyID, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("role", roleID.String())
		}
		return nil, fmt.Errorf("getting role: %w", err)
	}

	if role.IsClientRole && len(propertyIDs) == 0 {
		return nil, NewBusinessError("CLIENT_ROLE_NEEDS_PROPERTY",
			"a client-role user requires at least one property association")
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	if company.MaxUsers > 0 {
		active, err := s.users.CountActive(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("counting active users: %w", err)
		}
		if active >= company.MaxUsers {
			return nil, NewBusinessError("SEAT_LIMIT_REACHED",
				fmt.Sprintf("the %s plan allows at most %d active users", company.Plan, company.MaxUsers),
				ToDetail("max_users", company.MaxUsers))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       roleID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, NewDuplicateName("user", email)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if len(propertyIDs) > 0 {
		if err := s.users.SetPropertyAssignments(ctx, u.ID, propertyIDs); err != nil {
			return nil, fmt.Errorf("assigning properties: %w", err)
		}
	}

	return u, nil
}

// Deactivate flips the active flag; users are never deleted through the UI.
func (s *UserService) Deactivate(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("user", id.String())
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u.Active = false
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("deactivating user: %w", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) PropertyAssignments(ctx context.Context, companyID, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.users.GetByID(ctx, companyID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("user", userID.String())
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	ids, err := s.users.PropertyAssignments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing property assignments: %w", err)
	}
	return ids, nil
}
