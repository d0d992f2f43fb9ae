package models

import "github.com/google/uuid"

type Role string

const (
	RoleClient       Role = "client"
	RolePsychologist Role = "psychologist"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleClient:
		return RoleClient, true
	case RolePsychologist:
		return RolePsychologist, true
	default:
		return "", false
	}
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
