package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CompanyID   uuid.UUID  `json:"company_id" db:"company_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	CreatorID   uuid.UUID  `json:"creator_id" db:"creator_id"`
	AssigneeID  uuid.UUID  `json:"assignee_id" db:"assignee_id"`
	PropertyID  uuid.UUID  `json:"property_id" db:"property_id"`
	TypeID      uuid.UUID  `json:"type_id" db:"type_id"`
	State       State      `json:"state" db:"state"`
	DueDate     time.Time  `json:"due_date" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Version     int        `json:"version" db:"version"`
}

type State string

const StatePending State = "pending"
const StateCompleted State = "completed"
const StateDeleted State = "deleted"

func (s State) Valid() bool {
	return s == StatePending || s == StateCompleted || s == StateDeleted
}

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(t *Task) {
		t.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(t *Task) {
		t.Description = description
	}
}

func WithDueDate(due time.Time) TaskOption {
	if due.IsZero() {
		return nil
	}
	return func(t *Task) {
		t.DueDate = due
	}
}

func WithAssignee(id uuid.UUID) TaskOption {
	if id == uuid.Nil {
		return nil
	}
	return func(t *Task) {
		t.AssigneeID = id
	}
}

func WithProperty(id uuid.UUID) TaskOption {
	if id == uuid.Nil {
		return nil
	}
	return func(t *Task) {
		t.PropertyID = id
	}
}

func WithType(id uuid.UUID) TaskOption {
	if id == uuid.Nil {
		return nil
	}
	return func(t *Task) {
		t.TypeID = id
	}
}
