package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskcom/internal/models"
)

// Display limits: how many filtered tasks are materialized for a page.
const DefaultLimit = 20
const LimitStep = 20

// Status filter keys. Besides these, any visual status key
// (in_progress, overdue, completed) selects on derived status.
const StatusAll = "all"
const StatusActive = "active"
const StatusDeleted = "deleted"

type Filters struct {
	Status     string
	PropertyID uuid.UUID
	AssigneeID uuid.UUID
	TypeID     uuid.UUID
	GroupID    uuid.UUID
	DueFrom    *time.Time
	DueTo      *time.Time
	Search     string
}

func (f Filters) Empty() bool {
	return f == Filters{}
}

type Result struct {
	Tasks   []*models.Task `json:"tasks"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
}

// Apply runs the filter chain over the in-memory task collection, sorts the
// survivors by due date ascending (newest-created first on ties) and slices
// the first limit entries. Total counts all matches so callers can offer
// "load more". Properties are needed to resolve group membership.
func Apply(tasks []*models.Task, properties []*models.Property, f Filters, limit int, today time.Time) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var groupSet map[uuid.UUID]bool
	if f.GroupID != uuid.Nil {
		groupSet = propertiesInGroup(properties, f.GroupID)
	}

	matched := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchStatus(t, f.Status, today) {
			continue
		}
		if f.PropertyID != uuid.Nil && t.PropertyID != f.PropertyID {
			continue
		}
		if f.AssigneeID != uuid.Nil && t.AssigneeID != f.AssigneeID {
			continue
		}
		if f.TypeID != uuid.Nil && t.TypeID != f.TypeID {
			continue
		}
		if groupSet != nil && !groupSet[t.PropertyID] {
			continue
		}
		if !matchDueRange(t.DueDate, f.DueFrom, f.DueTo) {
			continue
		}
		if !matchSearch(t, f.Search) {
			continue
		}
		matched = append(matched, t)
	}

	sortTasks(matched)

	total := len(matched)
	page := matched
	if total > limit {
		page = matched[:limit]
	}

	return Result{
		Tasks:   page,
		Total:   total,
		HasMore: total > limit,
	}
}

// matchStatus implements the status filter chain. "deleted" short-circuits
// every other status rule; "active" means stored-pending regardless of due
// date; empty or "all" hides only stored-deleted rows; a visual key selects
// on derived status, which excludes deleted and underivable tasks on its own.
func matchStatus(t *models.Task, status string, today time.Time) bool {
	switch status {
	case StatusDeleted:
		return t.State == models.StateDeleted
	case StatusActive:
		return t.State == models.StatePending
	case "", StatusAll:
		return t.State != models.StateDeleted
	default:
		visual, _ := models.DeriveTaskStatus(t, today)
		if visual == models.VisualUnknown {
			return false
		}
		return string(visual) == status
	}
}

func matchDueRange(due time.Time, from, to *time.Time) bool {
	day := calendarDay(due)
	if from != nil && day.Before(calendarDay(*from)) {
		return false
	}
	if to != nil && day.After(calendarDay(*to)) {
		return false
	}
	return true
}

func matchSearch(t *models.Task, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// propertiesInGroup resolves the id set of properties belonging to the group.
// A null group reference is not a member of any group's set.
func propertiesInGroup(properties []*models.Property, groupID uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool)
	for _, p := range properties {
		if p.GroupID != nil && *p.GroupID == groupID {
			set[p.ID] = true
		}
	}
	return set
}

func sortTasks(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
