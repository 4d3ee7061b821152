package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskcom/internal/logger"
	"taskcom/internal/mailer"
	"taskcom/internal/models"
	"taskcom/internal/repository"
)

type AuthService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	companies   repository.CompanyRepository
	sessions    repository.SessionRepository
	recovery    repository.RecoveryRepository
	mailer      mailer.Mailer
	sessionTTL  time.Duration
	recoveryTTL time.Duration
	recoveryURL string
}

func NewAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	companies repository.CompanyRepository,
	sessions repository.SessionRepository,
	recovery repository.RecoveryRepository,
	m mailer.Mailer,
	sessionTTL, recoveryTTL time.Duration,
	recoveryURL string,
) *AuthService {
	return &AuthService{
		users:       users,
		roles:       roles,
		companies:   companies,
		sessions:    sessions,
		recovery:    recovery,
		mailer:      m,
		sessionTTL:  sessionTTL,
		recoveryTTL: recoveryTTL,
		recoveryURL: recoveryURL,
	}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	if email == "" || password == "" {
		return nil, nil, NewValidationError("credentials", "email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, NewBusinessError("INVALID_CREDENTIALS", "wrong email or password")
		}
		return nil, nil, fmt.Errorf("getting user: %w", err)
	}

	if !u.Active {
		return nil, nil, NewBusinessError("INVALID_CREDENTIALS", "wrong email or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, NewBusinessError("INVALID_CREDENTIALS", "wrong email or password")
	}

	token, err := newToken()
	if err != nil {
		return nil, nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	return session, u, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SessionUser resolves a bearer token to its user, rejecting expired or
// unknown sessions.
func (s *AuthService) SessionUser(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewBusinessError("SESSION_EXPIRED", "session is missing or expired")
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Service: cleaning expired session", zap.Error(err))
		}
		return nil, NewBusinessError("SESSION_EXPIRED", "session is missing or expired")
	}

	u, err := s.users.GetByID(ctx, session.CompanyID, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("getting session user: %w", err)
	}
	if !u.Active {
		return nil, NewBusinessError("SESSION_EXPIRED", "session is missing or expired")
	}

	return u, nil
}

// RequestRecovery always reports success to the caller so the endpoint does
// not leak which emails exist; mail dispatch failures are only logged.
func (s *AuthService) RequestRecovery(ctx context.Context, email string) error {
	if email == "" {
		return NewValidationError("email", "must not be empty")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: recovery requested for unknown email")
			return nil
		}
		return fmt.Errorf("getting user: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return err
	}

	rt := &models.RecoveryToken{
		Token:     token,
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		ExpiresAt: time.Now().Add(s.recoveryTTL),
	}
	if err := s.recovery.Create(ctx, rt); err != nil {
		return fmt.Errorf("creating recovery token: %w", err)
	}

	link := s.recoveryURL + "?token=" + token
	if err := s.mailer.SendRecovery(ctx, u.Email, link); err != nil {
		logger.Error("Service: sending recovery mail", err)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return NewValidationError("password", "must be at least 6 characters")
	}

	rt, err := s.recovery.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewBusinessError("RECOVERY_INVALID", "recovery link is invalid or already used")
		}
		return fmt.Errorf("consuming recovery token: %w", err)
	}

	if time.Now().After(rt.ExpiresAt) {
		return NewBusinessError("RECOVERY_EXPIRED", "recovery link has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.users.GetByID(ctx, rt.CompanyID, rt.UserID)
	if err != nil {
		return fmt.Errorf("getting user for reset: %w", err)
	}

	u.PasswordHash = string(hash)
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	// Old sessions die with the old password.
	if err := s.sessions.DeleteForUser(ctx, rt.UserID); err != nil {
		logger.Warn("Service: clearing sessions after password reset", zap.Error(err))
	}

	return nil
}

// SignupCompany creates a company, its default admin role and the first
// user. The steps are not transactional; later failures compensate by
// deleting what was already created.
func (s *AuthService) SignupCompany(ctx context.Context, companyName, plan, adminName, adminEmail, adminPassword string) (*models.Company, *models.User, error) {
	if companyName == "" {
		return nil, nil, NewValidationError("company_name", "must not be empty")
	}
	if adminEmail == "" {
		return nil, nil, NewValidationError("email", "must not be empty")
	}
	if len(adminPassword) < 6 {
		return nil, nil, NewValidationError("password", "must be at least 6 characters")
	}

	company := &models.Company{
		ID:       uuid.New(),
		Name:     companyName,
		Plan:     plan,
		MaxUsers: models.SeatLimit(plan),
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, nil, fmt.Errorf("creating company: %w", err)
	}

	role := &models.Role{
		ID:                  uuid.New(),
		CompanyID:           company.ID,
		Name:                "Administrator",
		IsAdmin:             true,
		HasAdminPermissions: true,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		s.compensate(ctx, company.ID, uuid.Nil)
		return nil, nil, fmt.Errorf("creating admin role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		s.compensate(ctx, company.ID, role.ID)
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New(),
		CompanyID:    company.ID,
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       role.ID,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		s.compensate(ctx, company.ID, role.ID)
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, nil, NewDuplicateName("user", adminEmail)
		}
		return nil, nil, fmt.Errorf("creating admin user: %w", err)
	}

	return company, admin, nil
}

func (s *AuthService) compensate(ctx context.Context, companyID, roleID uuid.UUID) {
	if roleID != uuid.Nil {
		if err := s.roles.Delete(ctx, companyID, roleID); err != nil {
			logger.Warn("Service: signup compensation, deleting role", zap.Error(err))
		}
	}
	if err := s.companies.Delete(ctx, companyID); err != nil {
		logger.Warn("Service: signup compensation, deleting company", zap.Error(err))
	}
}
