package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskcom/internal/models"
	"taskcom/internal/repository"
)

// DirectoryService manages the reference collections the task pipeline
// resolves against: properties, groups, task types and roles.
type DirectoryService struct {
	properties repository.PropertyRepository
	groups     repository.GroupRepository
	types      repository.TaskTypeRepository
	roles      repository.RoleRepository
}

func NewDirectoryService(
	properties repository.PropertyRepository,
	groups repository.GroupRepository,
	types repository.TaskTypeRepository,
	roles repository.RoleRepository,
) *DirectoryService {
	return &DirectoryService{
		properties: properties,
		groups:     groups,
		types:      types,
		roles:      roles,
	}
}

func (s *DirectoryService) CreateProperty(ctx context.Context, companyID uuid.UUID, name, displayName, taxID string, groupID *uuid.UUID) (*models.Property, error) {
	if displayName == "" {
		return nil, NewValidationError("display_name", "must not be empty")
	}

	p := &models.Property{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Name:        name,
		DisplayName: displayName,
		TaxID:       taxID,
		GroupID:     groupID,
	}
	if err := s.properties.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, NewDuplicateName("property", displayName)
		}
		return nil, fmt.Errorf("creating property: %w", err)
	}
	return p, nil
}

func (s *DirectoryService) UpdateProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	if p.DisplayName == "" {
		return nil, NewValidationError("display_name", "must not be empty")
	}
	if err := s.properties.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("property", p.ID.String())
		}
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, NewDuplicateName("property", p.DisplayName)
		}
		return nil, fmt.Errorf("updating property: %w", err)
	}
	return p, nil
}

func (s *DirectoryService) DeleteProperty(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.properties.Delete(ctx, companyID, id); err != nil {
		if errors.Is(err, repository.ErrForeignKeyInUse) {
			return NewInUse("property", id.String())
		}
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("property", id.String())
		}
		return fmt.Errorf("deleting property: %w", err)
	}
	return nil
}

func (s *DirectoryService) ListProperties(ctx context.Context, companyID uuid.UUID) ([]*models.Property, error) {
	properties, err := s.properties.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return properties, nil
}

func (s *DirectoryService) CreateGroup(ctx context.Context, companyID uuid.UUID, name string) (*models.Group, error) {
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	g := &models.Group{ID: uuid.New(), CompanyID: companyID, Name: name}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, NewDuplicateName("group", name)
		}
		return nil, fmt.Errorf("creating group: %w", err)
	}
	return g, nil
}

func (s *DirectoryService) DeleteGroup(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.groups.Delete(ctx, companyID, id); err != nil {
		if errors.Is(err, repository.ErrForeignKeyInUse) {
			return NewInUse("group", id.String())
		}
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("group", id.String())
		}
		return fmt.Errorf("deleting group: %w", err)
	}
	return nil
}

func (s *DirectoryService) ListGroups(ctx context.Context, companyID uuid.UUID) ([]*models.Group, error) {
	groups, err := s.groups.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}

func (s *DirectoryService) CreateTaskType(ctx context.Context, companyID uuid.UUID, name, color string) (*models.TaskType, error) {
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	t := &models.TaskType{ID: uuid.New(), CompanyID: companyID, Name: name, Color: color}
	if err := s.types.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, NewDuplicateName("task type", name)
		}
		return nil, fmt.Errorf("creating task type: %w", err)
	}
	return t, nil
}

func (s *DirectoryService) DeleteTaskType(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.types.Delete(ctx, companyID, id); err != nil {
		if errors.Is(err, repository.ErrForeignKeyInUse) {
			return NewInUse("task type", id.String())
		}
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("task type", id.String())
		}
		return fmt.Errorf("deleting task type: %w", err)
	}
	return nil
}

func (s *DirectoryService) ListTaskTypes(ctx context.Context, companyID uuid.UUID) ([]*models.TaskType, error) {
	types, err := s.types.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing task types: %w", err)
	}
	return types, nil
}

func (s *DirectoryService) CreateRole(ctx context.Context, companyID uuid.UUID, name string, isAdmin, hasAdminPermissions, isClientRole bool) (*models.Role, error) {
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	r := &models.Role{
		ID:                  uuid.New(),
		CompanyID:           companyID,
		Name:                name,
		IsAdmin:             isAdmin,
		HasAdminPermissions: hasAdminPermissions,
		IsClientRole:        isClientRole,
	}
	if err := s.roles.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, NewDuplicateName("role", name)
		}
		return nil, fmt.Errorf("creating role: %w", err)
	}
	return r, nil
}

func (s *DirectoryService) DeleteRole(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.roles.Delete(ctx, companyID, id); err != nil {
		if errors.Is(err, repository.ErrForeignKeyInUse) {
			return NewInUse("role", id.String())
		}
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("role", id.String())
		}
		return fmt.Errorf("deleting role: %w", err)
	}
	return nil
}

func (s *DirectoryService) ListRoles(ctx context.Context, companyID uuid.UUID) ([]*models.Role, error) {
	roles, err := s.roles.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return roles, nil
}
