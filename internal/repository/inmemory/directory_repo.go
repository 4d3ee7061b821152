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

// Reference-collection storages. Unique-name and foreign-key constraints are
// emulated so the service layer sees the same failures as with PostgreSQL.

type PropertyStorage struct {
	mtx     sync.RWMutex
	storage map[uuid.UUID]*models.Property
	tasks   *TaskStorage
}

func NewPropertyStorage(tasks *TaskStorage) *PropertyStorage {
	return &PropertyStorage{
		storage: make(map[uuid.UUID]*models.Property),
		tasks:   tasks,
	}
}

func (s *PropertyStorage) Create(ctx context.Context, p *models.Property) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.CompanyID == p.CompanyID && p.TaxID != "" && existing.TaxID == p.TaxID {
			return repository.ErrUniqueViolation
		}
	}

	p.CreatedAt = time.Now()
	cp := *p
	s.storage[p.ID] = &cp
	return nil
}

func (s *PropertyStorage) Update(ctx context.Context, p *models.Property) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[p.ID]
	if !ok || existing.CompanyID != p.CompanyID {
		return repository.ErrNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	s.storage[p.ID] = &cp
	return nil
}

func (s *PropertyStorage) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if s.tasks != nil && s.tasks.referencesProperty(id) {
		return repository.ErrForeignKeyInUse
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func (s *PropertyStorage) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Property, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.storage[id]
	if !ok || p.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PropertyStorage) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Property, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	properties := []*models.Property{}
	for _, p := range s.storage {
		if p.CompanyID != companyID {
			continue
		}
		cp := *p
		properties = append(properties, &cp)
	}
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].DisplayName < properties[j].DisplayName
	})
	return properties, nil
}

// referencesGroup reports whether any property points at the group.
func (s *PropertyStorage) referencesGroup(id uuid.UUID) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, p := range s.storage {
		if p.GroupID != nil && *p.GroupID == id {
			return true
		}
	}
	return false
}

type GroupStorage struct {
	mtx        sync.RWMutex
	storage    map[uuid.UUID]*models.Group
	properties *PropertyStorage
}

func NewGroupStorage(properties *PropertyStorage) *GroupStorage {
	return &GroupStorage{
		storage:    make(map[uuid.UUID]*models.Group),
		properties: properties,
	}
}

func (s *GroupStorage) Create(ctx context.Context, g *models.Group) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.CompanyID == g.CompanyID && existing.Name == g.Name {
			return repository.ErrUniqueViolation
		}
	}

	g.CreatedAt = time.Now()
	cp := *g
	s.storage[g.ID] = &cp
	return nil
}

func (s *GroupStorage) Update(ctx context.Context, g *models.Group) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[g.ID]
	if !ok || existing.CompanyID != g.CompanyID {
		return repository.ErrNotFound
	}
	existing.Name = g.Name
	return nil
}

func (s *GroupStorage) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if s.properties != nil && s.properties.referencesGroup(id) {
		return repository.ErrForeignKeyInUse
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func (s *GroupStorage) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Group, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	groups := []*models.Group{}
	for _, g := range s.storage {
		if g.CompanyID != companyID {
			continue
		}
		cp := *g
		groups = append(groups, &cp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

type TaskTypeStorage struct {
	mtx     sync.RWMutex
	storage map[uuid.UUID]*models.TaskType
	tasks   *TaskStorage
}

func NewTaskTypeStorage(tasks *TaskStorage) *TaskTypeStorage {
	return &TaskTypeStorage{
		storage: make(map[uuid.UUID]*models.TaskType),
		tasks:   tasks,
	}
}

func (s *TaskTypeStorage) Create(ctx context.Context, t *models.TaskType) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.CompanyID == t.CompanyID && existing.Name == t.Name {
			return repository.ErrUniqueViolation
		}
	}

	t.CreatedAt = time.Now()
	cp := *t
	s.storage[t.ID] = &cp
	return nil
}

func (s *TaskTypeStorage) Update(ctx context.Context, t *models.TaskType) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[t.ID]
	if !ok || existing.CompanyID != t.CompanyID {
		return repository.ErrNotFound
	}
	existing.Name = t.Name
	existing.Color = t.Color
	return nil
}

func (s *TaskTypeStorage) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if s.tasks != nil && s.tasks.referencesType(id) {
		return repository.ErrForeignKeyInUse
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func (s *TaskTypeStorage) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.TaskType, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	types := []*models.TaskType{}
	for _, t := range s.storage {
		if t.CompanyID != companyID {
			continue
		}
		cp := *t
		types = append(types, &cp)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

type RoleStorage struct {
	mtx     sync.RWMutex
	storage map[uuid.UUID]*models.Role
	users   *UserStorage
}

func NewRoleStorage(users *UserStorage) *RoleStorage {
	return &RoleStorage{
		storage: make(map[uuid.UUID]*models.Role),
		users:   users,
	}
}

func (s *RoleStorage) Create(ctx context.Context, r *models.Role) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.storage {
		if existing.CompanyID == r.CompanyID && existing.Name == r.Name {
			return repository.ErrUniqueViolation
		}
	}

	r.CreatedAt = time.Now()
	cp := *r
	s.storage[r.ID] = &cp
	return nil
}

func (s *RoleStorage) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if s.users != nil && s.users.referencesRole(id) {
		return repository.ErrForeignKeyInUse
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.CompanyID != companyID {
		return repository.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func (s *RoleStorage) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Role, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	r, ok := s.storage[id]
	if !ok || r.CompanyID != companyID {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *RoleStorage) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Role, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	roles := []*models.Role{}
	for _, r := range s.storage {
		if r.CompanyID != companyID {
			continue
		}
		cp := *r
		roles = append(roles, &cp)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}
