package state_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcom/internal/models"
	"taskcom/internal/pipeline"
	"taskcom/internal/state"
)

func pendingTask(due time.Time) *models.Task {
	return &models.Task{
		ID:        uuid.New(),
		Title:     "task",
		State:     models.StatePending,
		DueDate:   due,
		CreatedAt: time.Now(),
	}
}

func TestStore_LoadGenerations(t *testing.T) {
	s := state.New()

	first := s.BeginLoad()
	second := s.BeginLoad()

	fresh := []*models.Task{pendingTask(time.Now())}
	stale := []*models.Task{pendingTask(time.Now()), pendingTask(time.Now())}

	// The newer load wins even when its result arrives first.
	require.True(t, s.CompleteLoad(second, fresh, nil, nil, nil, nil, nil))
	assert.False(t, s.CompleteLoad(first, stale, nil, nil, nil, nil, nil))

	result := s.Visible(time.Now())
	assert.Equal(t, 1, result.Total)
}

func TestStore_SetFiltersResetsLimit(t *testing.T) {
	s := state.New()

	s.RaiseLimit()
	s.RaiseLimit()
	assert.Equal(t, pipeline.DefaultLimit+2*pipeline.LimitStep, s.Limit())

	s.SetFilters(pipeline.Filters{Status: "overdue"})
	assert.Equal(t, pipeline.DefaultLimit, s.Limit())

	// Re-applying identical filters keeps the raised limit.
	s.RaiseLimit()
	s.SetFilters(pipeline.Filters{Status: "overdue"})
	assert.Equal(t, pipeline.DefaultLimit+pipeline.LimitStep, s.Limit())
}

func TestStore_UpsertTask(t *testing.T) {
	s := state.New()

	existing := pendingTask(time.Now())
	gen := s.BeginLoad()
	require.True(t, s.CompleteLoad(gen, []*models.Task{existing}, nil, nil, nil, nil, nil))

	updated := *existing
	updated.Title = "renamed"
	s.UpsertTask(&updated)

	got, ok := s.Task(existing.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)

	result := s.Visible(time.Now())
	assert.Equal(t, 1, result.Total)

	// Unknown ids are appended.
	s.UpsertTask(pendingTask(time.Now()))
	assert.Equal(t, 2, s.Visible(time.Now()).Total)
}

func TestStore_Visible(t *testing.T) {
	s := state.New()

	today := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	overdue := pendingTask(today.AddDate(0, 0, -3))
	upcoming := pendingTask(today.AddDate(0, 0, 3))

	gen := s.BeginLoad()
	require.True(t, s.CompleteLoad(gen, []*models.Task{overdue, upcoming}, nil, nil, nil, nil, nil))

	s.SetFilters(pipeline.Filters{Status: "overdue"})
	result := s.Visible(today)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, overdue.ID, result.Tasks[0].ID)
}

func TestStore_Unread(t *testing.T) {
	s := state.New()

	s.SetUnread(3)
	s.IncrementUnread()
	assert.Equal(t, 4, s.Unread())
}

func TestStore_Reset(t *testing.T) {
	s := state.New()

	s.SetProfile(&models.User{ID: uuid.New()})
	gen := s.BeginLoad()
	require.True(t, s.CompleteLoad(gen, []*models.Task{pendingTask(time.Now())}, nil, nil, nil, nil, nil))
	s.SetFilters(pipeline.Filters{Status: "overdue"})
	s.RaiseLimit()
	s.SetUnread(7)

	s.Reset()

	assert.Nil(t, s.Profile())
	assert.Equal(t, 0, s.Visible(time.Now()).Total)
	assert.Equal(t, pipeline.Filters{}, s.Filters())
	assert.Equal(t, pipeline.DefaultLimit, s.Limit())
	assert.Equal(t, 0, s.Unread())
}
