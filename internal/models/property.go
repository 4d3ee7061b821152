package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is the physical site a task is performed at. What tenants call it
// ("condominium", store, unit) is up to them; the entity is the same.
type Property struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CompanyID   uuid.UUID  `json:"company_id" db:"company_id"`
	Name        string     `json:"name" db:"name"`
	DisplayName string     `json:"display_name" db:"display_name"`
	TaxID       string     `json:"tax_id,omitempty" db:"tax_id"`
	GroupID     *uuid.UUID `json:"group_id,omitempty" db:"group_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Group buckets properties for filtering. A property's group is optional;
// null means ungrouped.
type Group struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskType categorizes tasks; name is unique per company.
type TaskType struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
