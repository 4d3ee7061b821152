package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskcom/internal/models"
	"taskcom/internal/repository"
)

type NotificationStorage struct {
	mtx     sync.RWMutex
	storage map[uuid.UUID]*models.Notification
}

func NewNotificationStorage() *NotificationStorage {
	return &NotificationStorage{storage: make(map[uuid.UUID]*models.Notification)}
}

func (s *NotificationStorage) Create(ctx context.Context, n *models.Notification) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	s.storage[n.ID] = &cp
	return nil
}

func (s *NotificationStorage) ListForUser(ctx context.Context, companyID, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	notifications := []*models.Notification{}
	for _, n := range s.storage {
		if n.CompanyID != companyID || n.UserID != userID {
			continue
		}
		cp := *n
		notifications = append(notifications, &cp)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *NotificationStorage) MarkRead(ctx context.Context, companyID, userID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	n, ok := s.storage[id]
	if !ok || n.CompanyID != companyID || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	return nil
}

func (s *NotificationStorage) UnreadCount(ctx context.Context, companyID, userID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, n := range s.storage {
		if n.CompanyID == companyID && n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type SessionStorage struct {
	mtx     sync.RWMutex
	storage map[string]*models.Session
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{storage: make(map[string]*models.Session)}
}

func (s *SessionStorage) Create(ctx context.Context, session *models.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	session.CreatedAt = time.Now()
	cp := *session
	s.storage[session.Token] = &cp
	return nil
}

func (s *SessionStorage) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	session, ok := s.storage[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *SessionStorage) Delete(ctx context.Context, token string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[token]; !ok {
		return repository.ErrNotFound
	}
	delete(s.storage, token)
	return nil
}

func (s *SessionStorage) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for token, session := range s.storage {
		if session.UserID == userID {
			delete(s.storage, token)
		}
	}
	return nil
}

type RecoveryStorage struct {
	mtx     sync.RWMutex
	storage map[string]*models.RecoveryToken
}

func NewRecoveryStorage() *RecoveryStorage {
	return &RecoveryStorage{storage: make(map[string]*models.RecoveryToken)}
}

func (s *RecoveryStorage) Create(ctx context.Context, t *models.RecoveryToken) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t.CreatedAt = time.Now()
	cp := *t
	s.storage[t.Token] = &cp
	return nil
}

func (s *RecoveryStorage) Consume(ctx context.Context, token string) (*models.RecoveryToken, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.storage[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.storage, token)
	cp := *t
	return &cp, nil
}
