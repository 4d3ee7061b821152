package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"taskcom/internal/models"
	"taskcom/internal/pipeline"
)

// Store is the session-scoped working set: the fetched collections, the
// active filter selections, the display limit and the unread counter.
// Mutation goes through one entry point per field group; reads take a
// snapshot, so a running pipeline never observes a partial update.
type Store struct {
	mtx sync.RWMutex

	profile *models.User

	tasks      []*models.Task
	properties []*models.Property
	groups     []*models.Group
	types      []*models.TaskType
	roles      []*models.Role
	users      []*models.User

	filters pipeline.Filters
	limit   int

	unread int

	// loadGen discards bulk-load results that were overtaken by a newer
	// load before they arrived.
	loadGen uint64
}

func New() *Store {
	return &Store{limit: pipeline.DefaultLimit}
}

func (s *Store) SetProfile(u *models.User) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.profile = u
}

func (s *Store) Profile() *models.User {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.profile
}

// BeginLoad starts a bulk load and returns its generation token.
func (s *Store) BeginLoad() uint64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.loadGen++
	return s.loadGen
}

// CompleteLoad installs a bulk-load result. A stale generation (a newer load
// already began) is dropped and false is returned.
func (s *Store) CompleteLoad(gen uint64, tasks []*models.Task, properties []*models.Property, groups []*models.Group, types []*models.TaskType, roles []*models.Role, users []*models.User) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if gen != s.loadGen {
		return false
	}
	s.tasks = tasks
	s.properties = properties
	s.groups = groups
	s.types = types
	s.roles = roles
	s.users = users
	return true
}

// UpsertTask patches exactly one task in place from the authoritative row a
// mutation returned; an unseen id is appended.
func (s *Store) UpsertTask(t *models.Task) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	for i, existing := range s.tasks {
		if existing.ID == t.ID {
			s.tasks[i] = t
			return
		}
	}
	s.tasks = append(s.tasks, t)
}

func (s *Store) Task(id uuid.UUID) (*models.Task, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// SetFilters replaces the filter selections and resets the display limit.
func (s *Store) SetFilters(f pipeline.Filters) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if f == s.filters {
		return
	}
	s.filters = f
	s.limit = pipeline.DefaultLimit
}

func (s *Store) Filters() pipeline.Filters {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.filters
}

// RaiseLimit grows the display limit by one step and returns the new value.
func (s *Store) RaiseLimit() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.limit += pipeline.LimitStep
	return s.limit
}

func (s *Store) Limit() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.limit
}

// Visible runs the pipeline over the current collections with the current
// selections.
func (s *Store) Visible(today time.Time) pipeline.Result {
	s.mtx.RLock()
	tasks := s.tasks
	properties := s.properties
	filters := s.filters
	limit := s.limit
	s.mtx.RUnlock()
	return pipeline.Apply(tasks, properties, filters, limit, today)
}

func (s *Store) Properties() []*models.Property {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.properties
}

func (s *Store) Groups() []*models.Group {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.groups
}

func (s *Store) SetUnread(n int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.unread = n
}

func (s *Store) IncrementUnread() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.unread++
}

func (s *Store) Unread() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.unread
}

// Reset clears everything. Used on logout and session loss.
func (s *Store) Reset() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.profile = nil
	s.tasks = nil
	s.properties = nil
	s.groups = nil
	s.types = nil
	s.roles = nil
	s.users = nil
	s.filters = pipeline.Filters{}
	s.limit = pipeline.DefaultLimit
	s.unread = 0
}
