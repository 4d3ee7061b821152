package models

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Plan      string    `json:"plan" db:"plan"`
	MaxUsers  int       `json:"max_users" db:"max_users"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Seat limits per plan, enforced on privileged user creation.
const PlanBasic = "basic"
const PlanStandard = "standard"
const PlanUnlimited = "unlimited"

func SeatLimit(plan string) int {
	switch plan {
	case PlanBasic:
		return 5
	case PlanStandard:
		return 25
	default:
		return 0 // no limit
	}
}
