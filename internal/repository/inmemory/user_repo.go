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

type UserStorage struct {
	mtx                 sync.RWMutex
	storage             map[uuid.UUID]*models.User
	propertyAssignments map[uuid.UUID][]uuid.UUID
	groupAssignments    map[uuid.UUID][]uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage:             make(map[uuid.UUID]*models.User),
		propertyAssignments: make(map[uuid.UUID][]uuid.UUID),
		groupAssignments:    make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *UserStorage) Create(ctx context.Context, u *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.Email == u.Email {
			return repository.ErrUniqueViolation
		}
	}

	u.CreatedAt = time.Now()
	cp := *u
	s.storage[u.ID] = &cp
	return nil
}

func (s *UserStorage) Update(ctx context.Context, u *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[u.ID]
	if !ok || existing.CompanyID != u.CompanyID {
		return repository.ErrNotFound
	}
	cp := *u
	cp.CreatedAt = existing.CreatedAt
	s.storage[u.ID] = &cp
	return nil
}

func (s *UserStorage) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(s.storage, id)
	delete(s.propertyAssignments, id)
	delete(s.groupAssignments, id)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.storage[id]
	if !ok || u.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.storage {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStorage) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	users := []*models.User{}
	for _, u := range s.storage {
		if u.CompanyID != companyID {
			continue
		}
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *UserStorage) CountActive(ctx context.Context, companyID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, u := range s.storage {
		if u.CompanyID == companyID && u.Active {
			count++
		}
	}
	return count, nil
}

func (s *UserStorage) SetPropertyAssignments(ctx context.Context, userID uuid.UUID, propertyIDs []uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.propertyAssignments[userID] = append([]uuid.UUID{}, propertyIDs...)
	return nil
}

func (s *UserStorage) SetGroupAssignments(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.groupAssignments[userID] = append([]uuid.UUID{}, groupIDs...)
	return nil
}

func (s *UserStorage) PropertyAssignments(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return append([]uuid.UUID{}, s.propertyAssignments[userID]...), nil
}

func (s *UserStorage) referencesRole(id uuid.UUID) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, u := range s.storage {
		if u.RoleID == id {
			return true
		}
	}
	return false
}

type CompanyStorage struct {
	mtx     sync.RWMutex
	storage map[uuid.UUID]*models.Company
}

func NewCompanyStorage() *CompanyStorage {
	return &CompanyStorage{storage: make(map[uuid.UUID]*models.Company)}
}

func (s *CompanyStorage) Create(ctx context.Context, c *models.Company) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	c.CreatedAt = time.Now()
	cp := *c
	s.storage[c.ID] = &cp
	return nil
}

func (s *CompanyStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.storage, id)
	return nil
}

func (s *CompanyStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.storage[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}
