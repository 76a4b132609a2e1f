package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id between client and server.
const RequestIDHeader = "X-Request-ID"

// RequestIDLocalKey is where the id is stored in Fiber's locals; the logger
// and the error envelope both read it from there.
const RequestIDLocalKey = "request_id"

// RequestID tags every request with a correlation id. An id supplied by the
// caller in X-Request-ID is kept; otherwise a fresh UUID is minted. The id is
// echoed back on the response so clients can quote it when reporting issues.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}
