// Package auth issues and verifies the bearer tokens used by the HTTP layer
// to resolve a requester identity. The document services never see a token,
// only the resolved model.Requester.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"notesapi/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// GenerateToken signs a new HS256 access token for the user. The user ID goes
// into the subject claim.
func (s *JWTService) GenerateToken(u *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token string and resolves it to a requester identity.
func (s *JWTService) Verify(tokenString string) (*model.Requester, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &model.Requester{
		ID:   claims.Subject,
		Role: model.Role(claims.Role),
	}, nil
}
