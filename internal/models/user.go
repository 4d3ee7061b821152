package models

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	CompanyID           uuid.UUID `json:"company_id" db:"company_id"`
	Name                string    `json:"name" db:"name"`
	IsAdmin             bool      `json:"is_admin" db:"is_admin"`
	HasAdminPermissions bool      `json:"has_admin_permissions" db:"has_admin_permissions"`
	IsClientRole        bool      `json:"is_client_role" db:"is_client_role"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CompanyID    uuid.UUID `json:"company_id" db:"company_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Active       bool      `json:"active" db:"active"`
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PropertyAssignment and GroupAssignment are join rows restricting client-role
// users to explicit sites. They have no identity beyond the pair.
type PropertyAssignment struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
}

type GroupAssignment struct {
	UserID  uuid.UUID `json:"user_id" db:"user_id"`
	GroupID uuid.UUID `json:"group_id" db:"group_id"`
}
