package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"notesapi/internal/auth"
	"notesapi/internal/model"
	"notesapi/internal/repository"
)

const bcryptCost = 10

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

// AuthService handles account registration and credential checks. Token
// parsing lives in the HTTP middleware; this service only issues tokens.
type AuthService interface {
	// Register creates a student account. Fails with ErrEmailTaken when the
	// email is already registered.
	Register(ctx context.Context, email, name, password string) (*model.User, error)

	// Login verifies credentials and returns a signed access token plus the
	// account. Fails with ErrInvalidCredentials on any mismatch.
	Login(ctx context.Context, email, password string) (string, *model.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.JWTService
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.JWTService) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		Role:         model.RoleStudent,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.users.Create(ctx, user)
	if err != nil {
		// A concurrent registration can win the race past the FindByEmail
		// check; the unique index is the source of truth.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return stored, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}
