package inmemory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcom/internal/models"
	"taskcom/internal/repository"
	"taskcom/internal/repository/inmemory"
)

var ctx = context.Background()

func newTask(companyID uuid.UUID) *models.Task {
	return &models.Task{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Title:      "task",
		State:      models.StatePending,
		AssigneeID: uuid.New(),
		PropertyID: uuid.New(),
		TypeID:     uuid.New(),
		DueDate:    time.Now().AddDate(0, 0, 7),
	}
}

func TestTaskStorage_CreateAndGet(t *testing.T) {
	s := inmemory.NewTaskStorage()
	companyID := uuid.New()
	task := newTask(companyID)

	require.NoError(t, s.Create(ctx, task))
	assert.Equal(t, 1, task.Version)

	got, err := s.GetByID(ctx, companyID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)

	// Reads hand out copies.
	got.Title = "mutated"
	again, err := s.GetByID(ctx, companyID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "task", again.Title)
}

func TestTaskStorage_CompanyScoping(t *testing.T) {
	s := inmemory.NewTaskStorage()
	task := newTask(uuid.New())
	require.NoError(t, s.Create(ctx, task))

	_, err := s.GetByID(ctx, uuid.New(), task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	other, err := s.ListByCompany(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTaskStorage_Versioning(t *testing.T) {
	s := inmemory.NewTaskStorage()
	companyID := uuid.New()
	task := newTask(companyID)
	require.NoError(t, s.Create(ctx, task))

	first, err := s.GetByID(ctx, companyID, task.ID)
	require.NoError(t, err)
	second, err := s.GetByID(ctx, companyID, task.ID)
	require.NoError(t, err)

	first.Title = "first writer"
	require.NoError(t, s.Update(ctx, first))
	assert.Equal(t, 2, first.Version)
	assert.NotNil(t, first.UpdatedAt)

	// The second writer still holds version 1.
	second.Title = "second writer"
	assert.ErrorIs(t, s.Update(ctx, second), repository.ErrVersionConflict)
}

func TestTaskStorage_SoftDelete(t *testing.T) {
	s := inmemory.NewTaskStorage()
	companyID := uuid.New()
	task := newTask(companyID)
	require.NoError(t, s.Create(ctx, task))

	require.NoError(t, s.SoftDelete(ctx, task))
	assert.Equal(t, models.StateDeleted, task.State)
	assert.Equal(t, 2, task.Version)

	// The row survives; listing still returns it.
	all, err := s.ListByCompany(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StateDeleted, all[0].State)
}

func TestTaskStorage_DueBefore(t *testing.T) {
	s := inmemory.NewTaskStorage()
	companyID := uuid.New()

	due := newTask(companyID)
	due.DueDate = time.Now().AddDate(0, 0, -1)
	require.NoError(t, s.Create(ctx, due))

	future := newTask(companyID)
	require.NoError(t, s.Create(ctx, future))

	completed := newTask(companyID)
	completed.DueDate = time.Now().AddDate(0, 0, -1)
	completed.State = models.StateCompleted
	require.NoError(t, s.Create(ctx, completed))

	tasks, err := s.DueBefore(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, due.ID, tasks[0].ID)
}

func TestTaskStorage_ConcurrentAccess(t *testing.T) {
	s := inmemory.NewTaskStorage()
	companyID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, s.Create(ctx, newTask(companyID)))
		}()
	}
	wg.Wait()

	tasks, err := s.ListByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, tasks, 50)
}

func TestPropertyStorage_TaxIDUnique(t *testing.T) {
	s := inmemory.NewPropertyStorage(nil)
	companyID := uuid.New()

	require.NoError(t, s.Create(ctx, &models.Property{
		ID: uuid.New(), CompanyID: companyID, Name: "a", DisplayName: "A", TaxID: "12345",
	}))
	assert.ErrorIs(t, s.Create(ctx, &models.Property{
		ID: uuid.New(), CompanyID: companyID, Name: "b", DisplayName: "B", TaxID: "12345",
	}), repository.ErrUniqueViolation)

	// Another tenant may reuse the tax id.
	assert.NoError(t, s.Create(ctx, &models.Property{
		ID: uuid.New(), CompanyID: uuid.New(), Name: "c", DisplayName: "C", TaxID: "12345",
	}))

	// Empty tax ids never collide.
	assert.NoError(t, s.Create(ctx, &models.Property{
		ID: uuid.New(), CompanyID: companyID, Name: "d", DisplayName: "D",
	}))
	assert.NoError(t, s.Create(ctx, &models.Property{
		ID: uuid.New(), CompanyID: companyID, Name: "e", DisplayName: "E",
	}))
}

func TestPropertyStorage_DeleteBlockedByTask(t *testing.T) {
	tasks := inmemory.NewTaskStorage()
	properties := inmemory.NewPropertyStorage(tasks)
	companyID := uuid.New()

	p := &models.Property{ID: uuid.New(), CompanyID: companyID, Name: "a", DisplayName: "A"}
	require.NoError(t, properties.Create(ctx, p))

	task := newTask(companyID)
	task.PropertyID = p.ID
	require.NoError(t, tasks.Create(ctx, task))

	assert.ErrorIs(t, properties.Delete(ctx, companyID, p.ID), repository.ErrForeignKeyInUse)
}

func TestGroupStorage_DeleteBlockedByProperty(t *testing.T) {
	properties := inmemory.NewPropertyStorage(nil)
	groups := inmemory.NewGroupStorage(properties)
	companyID := uuid.New()

	g := &models.Group{ID: uuid.New(), CompanyID: companyID, Name: "North"}
	require.NoError(t, groups.Create(ctx, g))

	require.NoError(t, properties.Create(ctx, &models.Property{
		ID: uuid.New(), CompanyID: companyID, Name: "a", DisplayName: "A", GroupID: &g.ID,
	}))

	assert.ErrorIs(t, groups.Delete(ctx, companyID, g.ID), repository.ErrForeignKeyInUse)
}

func TestUserStorage_EmailUnique(t *testing.T) {
	s := inmemory.NewUserStorage()

	require.NoError(t, s.Create(ctx, &models.User{
		ID: uuid.New(), CompanyID: uuid.New(), Email: "jordan@example.com", Active: true,
	}))

	// Emails are globally unique across tenants, they are the login key.
	assert.ErrorIs(t, s.Create(ctx, &models.User{
		ID: uuid.New(), CompanyID: uuid.New(), Email: "jordan@example.com", Active: true,
	}), repository.ErrUniqueViolation)
}

func TestUserStorage_CountActive(t *testing.T) {
	s := inmemory.NewUserStorage()
	companyID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(ctx, &models.User{
			ID: uuid.New(), CompanyID: companyID, Email: uuid.NewString() + "@example.com", Active: true,
		}))
	}
	inactive := &models.User{
		ID: uuid.New(), CompanyID: companyID, Email: "off@example.com", Active: false,
	}
	require.NoError(t, s.Create(ctx, inactive))

	count, err := s.CountActive(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRoleStorage_DeleteBlockedByUser(t *testing.T) {
	users := inmemory.NewUserStorage()
	roles := inmemory.NewRoleStorage(users)
	companyID := uuid.New()

	role := &models.Role{ID: uuid.New(), CompanyID: companyID, Name: "staff"}
	require.NoError(t, roles.Create(ctx, role))

	require.NoError(t, users.Create(ctx, &models.User{
		ID: uuid.New(), CompanyID: companyID, Email: "jordan@example.com", RoleID: role.ID, Active: true,
	}))

	assert.ErrorIs(t, roles.Delete(ctx, companyID, role.ID), repository.ErrForeignKeyInUse)
}

func TestNotificationStorage_Flow(t *testing.T) {
	s := inmemory.NewNotificationStorage()
	companyID := uuid.New()
	userID := uuid.New()

	first := &models.Notification{
		ID: uuid.New(), CompanyID: companyID, UserID: userID, TaskID: uuid.New(), Message: "first",
	}
	second := &models.Notification{
		ID: uuid.New(), CompanyID: companyID, UserID: userID, TaskID: uuid.New(), Message: "second",
	}
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	count, err := s.UnreadCount(ctx, companyID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.MarkRead(ctx, companyID, userID, first.ID))
	count, err = s.UnreadCount(ctx, companyID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Another user cannot mark someone else's notification.
	assert.ErrorIs(t, s.MarkRead(ctx, companyID, uuid.New(), second.ID), repository.ErrNotFound)
}
