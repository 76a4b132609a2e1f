package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/http/middleware"
	"notesapi/internal/service"
)

// errorPayload is the error body every endpoint returns: a machine-readable
// code plus the correlation id the client can quote back.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError emits the error envelope. The message must be safe for clients;
// internal error text never goes through here verbatim.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeServiceError maps the service sentinel errors onto the response
// envelope. Unknown errors become opaque 500s.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "not allowed")
	case errors.Is(err, service.ErrFileMissing):
		return writeError(c, fiber.StatusBadRequest, "FILE_MISSING", "file missing on server")
	case errors.Is(err, service.ErrEmailTaken):
		return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler is the Fiber-level catch-all; it shapes errors raised by the
// framework itself (404s, body-limit rejections) into the same envelope the
// handlers use.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "not allowed")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusConflict:
			return writeError(c, status, "CONFLICT", "conflict")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "file exceeds the upload size limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
