package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
)

type TaskRepo struct {
	storage *Storage
}

func NewTaskRepo(storage *Storage) *TaskRepo {
	return &TaskRepo{storage: storage}
}

const taskColumns = `id, company_id, title, description, creator_id, assignee_id,
	property_id, type_id, state, due_date, created_at, updated_at, completed_at, version`

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.Title,
		&t.Description,
		&t.CreatorID,
		&t.AssigneeID,
		&t.PropertyID,
		&t.TypeID,
		&t.State,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, company_id, title, description, creator_id, assignee_id,
				 property_id, type_id, state, due_date, created_at, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), 1)
				RETURNING created_at, version`

	err := r.storage.pool.QueryRow(ctx, query,
		t.ID,
		t.CompanyID,
		t.Title,
		t.Description,
		t.CreatorID,
		t.AssigneeID,
		t.PropertyID,
		t.TypeID,
		t.State,
		t.DueDate,
	).Scan(&t.CreatedAt, &t.Version)

	if err != nil {
		logger.Error("Repository: creating task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("creating task: %w", mapError(err))
	}

	warnSlow("task_create", start)
	return nil
}

func (r *TaskRepo) Update(ctx context.Context, t *models.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				assignee_id = $3,
				property_id = $4,
				type_id = $5,
				state = $6,
				due_date = $7,
				completed_at = $8,
				version = version + 1,
				updated_at = NOW()
			WHERE company_id = $9 AND id = $10 AND version = $11
			RETURNING updated_at, version`

	err := r.storage.pool.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.AssigneeID,
		t.PropertyID,
		t.TypeID,
		t.State,
		t.DueDate,
		t.CompletedAt,
		t.CompanyID,
		t.ID,
		t.Version,
	).Scan(&t.UpdatedAt, &t.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: version conflict on task update",
				zap.String("task_id", t.ID.String()),
				zap.Int("expected_version", t.Version))
			return repository.ErrVersionConflict
		}
		logger.Error("Repository: updating task", err)
		return fmt.Errorf("updating task: %w", mapError(err))
	}

	warnSlow("task_update", start)
	return nil
}

// SoftDelete marks the row deleted; tasks are never physically removed.
func (r *TaskRepo) SoftDelete(ctx context.Context, t *models.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET state = $1,
				version = version + 1,
				updated_at = NOW()
			WHERE company_id = $2 AND id = $3 AND version = $4
			RETURNING updated_at, version`

	err := r.storage.pool.QueryRow(ctx, query,
		models.StateDeleted, t.CompanyID, t.ID, t.Version,
	).Scan(&t.UpdatedAt, &t.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: version conflict on soft delete",
				zap.String("task_id", t.ID.String()),
				zap.Int("expected_version", t.Version))
			return repository.ErrVersionConflict
		}
		logger.Error("Repository: soft-deleting task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("soft-deleting task: %w", mapError(err))
	}

	t.State = models.StateDeleted
	warnSlow("task_soft_delete", start)
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE company_id = $1 AND id = $2`

	t, err := scanTask(r.storage.pool.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.Error("Repository: getting task", err, zap.Duration("ms", time.Since(start)))
		}
		return nil, fmt.Errorf("getting task: %w", mapError(err))
	}

	warnSlow("task_get", start)
	return t, nil
}

func (r *TaskRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE company_id = $1 ORDER BY created_at`

	rows, err := r.storage.pool.Query(ctx, query, companyID)
	if err != nil {
		logger.Error("Repository: listing tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing tasks: %w", mapError(err))
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: scanning task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating task rows", err)
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	warnSlow("task_list", start)
	return tasks, nil
}

// DueBefore returns pending tasks across all companies whose due date has
// passed. Used only by the overdue worker.
func (r *TaskRepo) DueBefore(ctx context.Context, deadline time.Time, limit int) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + ` FROM tasks
				WHERE state = $1 AND due_date < $2
				ORDER BY due_date
				LIMIT $3`

	rows, err := r.storage.pool.Query(ctx, query, models.StatePending, deadline, limit)
	if err != nil {
		logger.Error("Repository: listing due tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing due tasks: %w", mapError(err))
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: scanning task row", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating task rows", err)
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	warnSlow("task_due_before", start)
	return tasks, nil
}
