package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskcom/internal/models"
	"taskcom/internal/repository"
)

// TaskStorage keeps tasks in a map plus an insertion-order id slice so list
// results are stable.
type TaskStorage struct {
	mtx     sync.RWMutex
	storage map[uuid.UUID]*models.Task
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*models.Task),
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) Create(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.Version = 1

	cp := *t
	s.storage[t.ID] = &cp
	s.ids = append(s.ids, t.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[t.ID]
	if !ok || existing.CompanyID != t.CompanyID {
		return repository.ErrNotFound
	}
	if existing.Version != t.Version {
		return repository.ErrVersionConflict
	}

	now := time.Now()
	t.UpdatedAt = &now
	t.Version++

	cp := *t
	s.storage[t.ID] = &cp
	return nil
}

func (s *TaskStorage) SoftDelete(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[t.ID]
	if !ok || existing.CompanyID != t.CompanyID {
		return repository.ErrNotFound
	}
	if existing.Version != t.Version {
		return repository.ErrVersionConflict
	}

	now := time.Now()
	existing.State = models.StateDeleted
	existing.UpdatedAt = &now
	existing.Version++

	t.State = existing.State
	t.UpdatedAt = existing.UpdatedAt
	t.Version = existing.Version
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.storage[id]
	if !ok || t.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *TaskStorage) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*models.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.CompanyID != companyID {
			continue
		}
		cp := *t
		tasks = append(tasks, &cp)
	}
	return tasks, nil
}

func (s *TaskStorage) DueBefore(ctx context.Context, deadline time.Time, limit int) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*models.Task{}
	for _, id := range s.ids {
		if len(tasks) >= limit {
			break
		}
		t := s.storage[id]
		if t.State == models.StatePending && t.DueDate.Before(deadline) {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	return tasks, nil
}

// referencesProperty reports whether any task points at the property. Used to
// emulate the database's foreign-key protection.
func (s *TaskStorage) referencesProperty(id uuid.UUID) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, t := range s.storage {
		if t.PropertyID == id {
			return true
		}
	}
	return false
}

func (s *TaskStorage) referencesType(id uuid.UUID) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, t := range s.storage {
		if t.TypeID == id {
			return true
		}
	}
	return false
}
