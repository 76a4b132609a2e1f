package model

import "time"

// Role determines what a user is allowed to do beyond owning their own uploads.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// User is an account that can upload documents. The password hash is opaque to
// every layer except the auth service and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Requester is the resolved identity attempting an operation. A nil *Requester
// means the request is anonymous.
type Requester struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the requester carries the administrator role.
// Safe to call on a nil receiver.
func (r *Requester) IsAdmin() bool {
	return r != nil && r.Role == RoleAdmin
}
