package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent = "student"
	RoleAlumni  = "alumni"
	RoleAdmin   = "admin"
)

// User is owned by the profile subsystem; this core only reads it
// (plus the minimal register/login path that seeds accounts).
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
}
