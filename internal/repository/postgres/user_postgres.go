package postgres

import (
	"context"
	"database/sql"

	"notesapi/internal/model"
	"notesapi/internal/repository"
)

const userColumns = "id, email, name, password_hash, role, created_at"

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record. A duplicate
// email surfaces as the driver's unique-violation error.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, name, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}
