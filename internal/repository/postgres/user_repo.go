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

type UserRepo struct {
	storage *Storage
}

func NewUserRepo(storage *Storage) *UserRepo {
	return &UserRepo{storage: storage}
}

const userColumns = `id, company_id, name, email, password_hash, active, role_id, created_at`

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	start := time.Now()

	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO users (id, company_id, name, email, password_hash, active, role_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING created_at`,
		u.ID, u.CompanyID, u.Name, u.Email, u.PasswordHash, u.Active, u.RoleID,
	).Scan(&u.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating user", err)
		return fmt.Errorf("creating user: %w", mapError(err))
	}

	warnSlow("user_create", start)
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *models.User) error {
	tag, err := r.storage.pool.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, password_hash = $3, active = $4, role_id = $5
			WHERE company_id = $6 AND id = $7`,
		u.Name, u.Email, u.PasswordHash, u.Active, u.RoleID, u.CompanyID, u.ID)
	if err != nil {
		logger.Error("Repository: updating user", err)
		return fmt.Errorf("updating user: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete exists for signup compensation only; the UI path deactivates.
func (r *UserRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx,
		`DELETE FROM users WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		logger.Error("Repository: deleting user", err)
		return fmt.Errorf("deleting user: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	err := r.storage.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = $1 AND id = $2`, companyID, id,
	).Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash, &u.Active, &u.RoleID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", mapError(err))
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := r.storage.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash, &u.Active, &u.RoleID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", mapError(err))
	}
	return u, nil
}

func (r *UserRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	start := time.Now()

	rows, err := r.storage.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		logger.Error("Repository: listing users", err)
		return nil, fmt.Errorf("listing users: %w", mapError(err))
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash, &u.Active, &u.RoleID, &u.CreatedAt); err != nil {
			logger.Warn("Repository: scanning user row", zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	warnSlow("user_list", start)
	return users, nil
}

func (r *UserRepo) CountActive(ctx context.Context, companyID uuid.UUID) (int, error) {
	var count int
	err := r.storage.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE company_id = $1 AND active`, companyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting active users: %w", mapError(err))
	}
	return count, nil
}

func (r *UserRepo) SetPropertyAssignments(ctx context.Context, userID uuid.UUID, propertyIDs []uuid.UUID) error {
	tx, err := r.storage.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning assignment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM property_assignments WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clearing property assignments: %w", mapError(err))
	}
	for _, pid := range propertyIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO property_assignments (user_id, property_id) VALUES ($1, $2)`, userID, pid); err != nil {
			return fmt.Errorf("inserting property assignment: %w", mapError(err))
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepo) SetGroupAssignments(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error {
	tx, err := r.storage.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning assignment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM group_assignments WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clearing group assignments: %w", mapError(err))
	}
	for _, gid := range groupIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO group_assignments (user_id, group_id) VALUES ($1, $2)`, userID, gid); err != nil {
			return fmt.Errorf("inserting group assignment: %w", mapError(err))
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepo) PropertyAssignments(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.storage.pool.Query(ctx,
		`SELECT property_id FROM property_assignments WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing property assignments: %w", mapError(err))
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			logger.Warn("Repository: scanning assignment row", zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type CompanyRepo struct {
	storage *Storage
}

func NewCompanyRepo(storage *Storage) *CompanyRepo {
	return &CompanyRepo{storage: storage}
}

func (r *CompanyRepo) Create(ctx context.Context, c *models.Company) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO companies (id, name, plan, max_users, created_at)
			VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		c.ID, c.Name, c.Plan, c.MaxUsers,
	).Scan(&c.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating company", err)
		return fmt.Errorf("creating company: %w", mapError(err))
	}
	return nil
}

func (r *CompanyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.storage.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: deleting company", err)
		return fmt.Errorf("deleting company: %w", mapError(err))
	}
	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	c := &models.Company{}
	err := r.storage.pool.QueryRow(ctx,
		`SELECT id, name, plan, max_users, created_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Plan, &c.MaxUsers, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", mapError(err))
	}
	return c, nil
}
