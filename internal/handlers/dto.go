package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskcom/internal/models"
)

var validate = validator.New()

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// A false return means the response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		responseWithError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	AssigneeID  uuid.UUID `json:"assignee_id" validate:"required"`
	PropertyID  uuid.UUID `json:"property_id" validate:"required"`
	TypeID      uuid.UUID `json:"type_id" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	PropertyID  *uuid.UUID `json:"property_id,omitempty"`
	TypeID      *uuid.UUID `json:"type_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	PropertyID  uuid.UUID  `json:"property_id"`
	TypeID      uuid.UUID  `json:"type_id"`
	State       string     `json:"state"`
	Status      string     `json:"status"`
	DaysOverdue int        `json:"days_overdue,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Version     int        `json:"version"`
}

func FromTask(t *models.Task, today time.Time) TaskResponse {
	visual, days := models.DeriveTaskStatus(t, today)
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		PropertyID:  t.PropertyID,
		TypeID:      t.TypeID,
		State:       string(t.State),
		Status:      string(visual),
		DaysOverdue: days,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
		Version:     t.Version,
	}
}

func FromTaskList(tasks []*models.Task, today time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}

type CreatePropertyRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	DisplayName string     `json:"display_name" validate:"required,max=200"`
	TaxID       string     `json:"tax_id" validate:"max=32"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
}

type UpdatePropertyRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	DisplayName string     `json:"display_name" validate:"required,max=200"`
	TaxID       string     `json:"tax_id" validate:"max=32"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type CreateTaskTypeRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type CreateRoleRequest struct {
	Name                string `json:"name" validate:"required,max=200"`
	IsAdmin             bool   `json:"is_admin"`
	HasAdminPermissions bool   `json:"has_admin_permissions"`
	IsClientRole        bool   `json:"is_client_role"`
}

type CreateUserRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	RoleID      uuid.UUID   `json:"role_id" validate:"required"`
	PropertyIDs []uuid.UUID `json:"property_ids,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignupRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=200"`
	Plan        string `json:"plan" validate:"required,oneof=basic standard unlimited"`
	AdminName   string `json:"admin_name" validate:"required,max=200"`
	AdminEmail  string `json:"admin_email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}
