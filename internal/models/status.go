package models

import "time"

// VisualStatus is the date-aware presentation state of a task, derived from
// the stored State and the due date. It is never persisted.
type VisualStatus string

const VisualInProgress VisualStatus = "in_progress"
const VisualOverdue VisualStatus = "overdue"
const VisualCompleted VisualStatus = "completed"
const VisualDeleted VisualStatus = "deleted"

// VisualUnknown marks a task whose stored state is unrecognized. Such tasks
// must be excluded from every status-scoped view.
const VisualUnknown VisualStatus = ""

// DeriveStatus computes the visual status of a task evaluated at "today".
// Dates are compared as calendar days in today's location; completed and
// deleted states win regardless of due date. The int result is the number of
// whole days past due, zero unless the status is overdue.
func DeriveStatus(state State, due time.Time, today time.Time) (VisualStatus, int) {
	switch state {
	case StateCompleted:
		return VisualCompleted, 0
	case StateDeleted:
		return VisualDeleted, 0
	case StatePending:
		d := truncateToDay(due, today.Location())
		t := truncateToDay(today, today.Location())
		if d.Before(t) {
			days := int(t.Sub(d).Round(24*time.Hour) / (24 * time.Hour))
			return VisualOverdue, days
		}
		return VisualInProgress, 0
	default:
		return VisualUnknown, 0
	}
}

// DeriveTaskStatus is DeriveStatus applied to a task row.
func DeriveTaskStatus(t *Task, today time.Time) (VisualStatus, int) {
	return DeriveStatus(t.State, t.DueDate, today)
}

func truncateToDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
