package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	User        any    `json:"user"`
}

// Register creates a new student account.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EMAIL", "a valid email is required")
		}
		if req.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}
		if len(req.Password) < 8 {
			return writeError(c, fiber.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 8 characters")
		}

		user, err := svc.Register(c.UserContext(), req.Email, req.Name, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Login verifies credentials and returns a bearer token.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "CREDENTIALS_REQUIRED", "email and password are required")
		}

		token, user, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loginResponse{AccessToken: token, User: user})
	}
}
