package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
)

type SessionRepo struct {
	storage *Storage
}

func NewSessionRepo(storage *Storage) *SessionRepo {
	return &SessionRepo{storage: storage}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO sessions (token, user_id, company_id, expires_at, created_at)
			VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		s.Token, s.UserID, s.CompanyID, s.ExpiresAt,
	).Scan(&s.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating session", err)
		return fmt.Errorf("creating session: %w", mapError(err))
	}
	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	s := &models.Session{}
	err := r.storage.pool.QueryRow(ctx,
		`SELECT token, user_id, company_id, expires_at, created_at
			FROM sessions WHERE token = $1`, token,
	).Scan(&s.Token, &s.UserID, &s.CompanyID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", mapError(err))
	}
	return s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		logger.Error("Repository: deleting session", err)
		return fmt.Errorf("deleting session: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SessionRepo) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.storage.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		logger.Error("Repository: deleting user sessions", err)
		return fmt.Errorf("deleting user sessions: %w", mapError(err))
	}
	return nil
}

type RecoveryRepo struct {
	storage *Storage
}

func NewRecoveryRepo(storage *Storage) *RecoveryRepo {
	return &RecoveryRepo{storage: storage}
}

func (r *RecoveryRepo) Create(ctx context.Context, t *models.RecoveryToken) error {
	err := r.storage.pool.QueryRow(ctx,
		`INSERT INTO recovery_tokens (token, user_id, company_id, expires_at, created_at)
			VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`,
		t.Token, t.UserID, t.CompanyID, t.ExpiresAt,
	).Scan(&t.CreatedAt)
	if err != nil {
		logger.Error("Repository: creating recovery token", err)
		return fmt.Errorf("creating recovery token: %w", mapError(err))
	}
	return nil
}

// Consume deletes the token row while returning it; a second consume of the
// same token yields ErrNotFound.
func (r *RecoveryRepo) Consume(ctx context.Context, token string) (*models.RecoveryToken, error) {
	t := &models.RecoveryToken{}
	err := r.storage.pool.QueryRow(ctx,
		`DELETE FROM recovery_tokens WHERE token = $1
			RETURNING token, user_id, company_id, expires_at, created_at`, token,
	).Scan(&t.Token, &t.UserID, &t.CompanyID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("consuming recovery token: %w", mapError(err))
	}
	return t, nil
}
