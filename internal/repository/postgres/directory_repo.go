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

// Reference-collection repositories: properties, groups, task types, roles.
// Deleting a row still referenced by tasks surfaces ErrForeignKeyInUse;
// creating a duplicate name within a company surfaces ErrUniqueViolation.

type PropertyRepo struct {
	storage *Storage
}

func NewPropertyRepo(storage *Storage) *PropertyRepo {
	return &PropertyRepo{storage: storage}
}

func (r *PropertyRepo) Create(ctx context.Context, p *models.Property) error {
	start := time.Now()

	query := `INSERT INTO properties (id, company_id, name, display_name, tax_id, group_id, created_at)
				VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NOW())
				RETURNING created_at`

	err := r.storage.pool.QueryRow(ctx, query,
		p.ID, p.CompanyID, p.Name, p.DisplayName, p.TaxID, p.GroupID,
	).Scan(&p.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating property", err)
		return fmt.Errorf("creating property: %w", mapError(err))
	}

	warnSlow("property_create", start)
	return nil
}

func (r *PropertyRepo) Update(ctx context.Context, p *models.Property) error {
	start := time.Now()

	query := `UPDATE properties
				SET name = $1, display_name = $2, tax_id = NULLIF($3, ''), group_id = $4
				WHERE company_id = $5 AND id = $6`

	tag, err := r.storage.pool.Exec(ctx, query,
		p.Name, p.DisplayName, p.TaxID, p.GroupID, p.CompanyID, p.ID)
	if err != nil {
		logger.Error("Repository: updating property", err)
		return fmt.Errorf("updating property: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	warnSlow("property_update", start)
	return nil
}

func (r *PropertyRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	start := time.Now()

	tag, err := r.storage.pool.Exec(ctx,
		`DELETE FROM properties WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		logger.Error("Repository: deleting property", err)
		return fmt.Errorf("deleting property: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	warnSlow("property_delete", start)
	return nil
}

func (r *PropertyRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Property, error) {
	p := &models.Property{}
	var taxID *string
	err := r.storage.pool.QueryRow(ctx,
		`SELECT id, company_id, name, display_name, tax_id, group_id, created_at
			FROM properties WHERE company_id = $1 AND id = $2`, companyID, id,
	).Scan(&p.ID, &p.CompanyID, &p.Name, &p.DisplayName, &taxID, &p.GroupID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting property: %w", mapError(err))
	}
	if taxID != nil {
		p.TaxID = *taxID
	}
	return p, nil
}

func (r *PropertyRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Property, error) {
	start := time.Now()

	rows, err := r.storage.pool.Query(ctx,
		`SELECT id, company_id, name, display_name, tax_id, group_id, created_at
			FROM properties WHERE company_id = $1 ORDER BY display_name`, companyID)
	if err != nil {
		logger.Error("Repository: listing properties", err)
		return nil, fmt.Errorf("listing properties: %w", mapError(err))
	}
	defer rows.Close()

	properties := []*models.Property{}
	for rows.Next() {
		p := &models.Property{}
		var taxID *string
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.DisplayName, &taxID, &p.GroupID, &p.CreatedAt); err != nil {
			logger.Warn("Repository: scanning property row", zap.Error(err))
			continue
		}
		if taxID != nil {
			p.TaxID = *taxID
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating property rows: %w", err)
	}

	warnSlow("property_list", start)
	return properties, nil
}

type GroupRepo struct {
	storage *Storage
}

func NewGroupRepo(storage *Storage) *GroupRepo {
	return &GroupRepo{storage: storage}
}

func (r *GroupRepo) Create(ctx context.Context, g *models.Group) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO groups (id, company_id, name, created_at)
			VALUES ($1, $2, $3, NOW()) RETURNING created_at`,
		g.ID, g.CompanyID, g.Name,
	).Scan(&g.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating group", err)
		return fmt.Errorf("creating group: %w", mapError(err))
	}
	return nil
}

func (r *GroupRepo) Update(ctx context.Context, g *models.Group) error {
	tag, err := r.storage.pool.Exec(ctx,
		`UPDATE groups SET name = $1 WHERE company_id = $2 AND id = $3`,
		g.Name, g.CompanyID, g.ID)
	if err != nil {
		logger.Error("Repository: updating group", err)
		return fmt.Errorf("updating group: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *GroupRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx,
		`DELETE FROM groups WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		logger.Error("Repository: deleting group", err)
		return fmt.Errorf("deleting group: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *GroupRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Group, error) {
	rows, err := r.storage.pool.Query(ctx,
		`SELECT id, company_id, name, created_at FROM groups
			WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		logger.Error("Repository: listing groups", err)
		return nil, fmt.Errorf("listing groups: %w", mapError(err))
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.Name, &g.CreatedAt); err != nil {
			logger.Warn("Repository: scanning group row", zap.Error(err))
			continue
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group rows: %w", err)
	}
	return groups, nil
}

type TaskTypeRepo struct {
	storage *Storage
}

func NewTaskTypeRepo(storage *Storage) *TaskTypeRepo {
	return &TaskTypeRepo{storage: storage}
}

func (r *TaskTypeRepo) Create(ctx context.Context, t *models.TaskType) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO task_types (id, company_id, name, color, created_at)
			VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		t.ID, t.CompanyID, t.Name, t.Color,
	).Scan(&t.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating task type", err)
		return fmt.Errorf("creating task type: %w", mapError(err))
	}
	return nil
}

func (r *TaskTypeRepo) Update(ctx context.Context, t *models.TaskType) error {
	tag, err := r.storage.pool.Exec(ctx,
		`UPDATE task_types SET name = $1, color = $2 WHERE company_id = $3 AND id = $4`,
		t.Name, t.Color, t.CompanyID, t.ID)
	if err != nil {
		logger.Error("Repository: updating task type", err)
		return fmt.Errorf("updating task type: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskTypeRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx,
		`DELETE FROM task_types WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		logger.Error("Repository: deleting task type", err)
		return fmt.Errorf("deleting task type: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskTypeRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.TaskType, error) {
	rows, err := r.storage.pool.Query(ctx,
		`SELECT id, company_id, name, color, created_at FROM task_types
			WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		logger.Error("Repository: listing task types", err)
		return nil, fmt.Errorf("listing task types: %w", mapError(err))
	}
	defer rows.Close()

	types := []*models.TaskType{}
	for rows.Next() {
		t := &models.TaskType{}
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			logger.Warn("Repository: scanning task type row", zap.Error(err))
			continue
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task type rows: %w", err)
	}
	return types, nil
}

type RoleRepo struct {
	storage *Storage
}

func NewRoleRepo(storage *Storage) *RoleRepo {
	return &RoleRepo{storage: storage}
}

func (r *RoleRepo) Create(ctx context.Context, role *models.Role) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO roles (id, company_id, name, is_admin, has_admin_permissions, is_client_role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_at`,
		role.ID, role.CompanyID, role.Name, role.IsAdmin, role.HasAdminPermissions, role.IsClientRole,
	).Scan(&role.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating role", err)
		return fmt.Errorf("creating role: %w", mapError(err))
	}
	return nil
}

func (r *RoleRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx,
		`DELETE FROM roles WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		logger.Error("Repository: deleting role", err)
		return fmt.Errorf("deleting role: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Role, error) {
	role := &models.Role{}
	err := r.storage.pool.QueryRow(ctx,
		`SELECT id, company_id, name, is_admin, has_admin_permissions, is_client_role, created_at
			FROM roles WHERE company_id = $1 AND id = $2`, companyID, id,
	).Scan(&role.ID, &role.CompanyID, &role.Name, &role.IsAdmin, &role.HasAdminPermissions, &role.IsClientRole, &role.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting role: %w", mapError(err))
	}
	return role, nil
}

func (r *RoleRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Role, error) {
	rows, err := r.storage.pool.Query(ctx,
		`SELECT id, company_id, name, is_admin, has_admin_permissions, is_client_role, created_at
			FROM roles WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		logger.Error("Repository: listing roles", err)
		return nil, fmt.Errorf("listing roles: %w", mapError(err))
	}
	defer rows.Close()

	roles := []*models.Role{}
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.CompanyID, &role.Name, &role.IsAdmin, &role.HasAdminPermissions, &role.IsClientRole, &role.CreatedAt); err != nil {
			logger.Warn("Repository: scanning role row", zap.Error(err))
			continue
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role rows: %w", err)
	}
	return roles, nil
}
