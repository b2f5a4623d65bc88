package middleware

import (
	"github.com/go-arcade/ideaflow/pkg/id"
	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDHeader = "X-Request-Id"
	RequestIDKey    = "request_id"
)

// RequestMiddleware echoes the caller's X-Request-Id or assigns one.
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if !id.ValidRequestID(requestID) {
			requestID = id.RequestID()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals(RequestIDKey, requestID)
		return c.Next()
	}
}
