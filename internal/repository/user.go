package repository

import (
	"context"

	"notesapi/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user row and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID. Returns sql.ErrNoRows when unknown.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email. Returns sql.ErrNoRows when unknown.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
