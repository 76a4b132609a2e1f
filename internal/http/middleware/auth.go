package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/model"
)

// RequesterLocalKey is the key used to store the resolved requester identity
// in Fiber's context locals.
const RequesterLocalKey = "requester"

// TokenVerifier resolves a bearer token to a requester identity.
type TokenVerifier interface {
	Verify(token string) (*model.Requester, error)
}

// RequesterFromCtx extracts the requester previously stored by RequireAuth or
// OptionalAuth. Returns nil for anonymous requests.
func RequesterFromCtx(c *fiber.Ctx) *model.Requester {
	if v := c.Locals(RequesterLocalKey); v != nil {
		if r, ok := v.(*model.Requester); ok {
			return r
		}
	}
	return nil
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved requester in context locals.
func RequireAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		r, err := v.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(RequesterLocalKey, r)
		return c.Next()
	}
}

// OptionalAuth resolves a requester when a valid bearer token is present and
// continues anonymously otherwise. An invalid token on an optional route does
// not fail the request; the route simply sees an anonymous requester.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if r, err := v.Verify(token); err == nil {
				c.Locals(RequesterLocalKey, r)
			}
		}
		return c.Next()
	}
}

// RequireAdmin rejects requesters without the administrator role. Must run
// after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !RequesterFromCtx(c).IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admins only")
		}
		return c.Next()
	}
}
