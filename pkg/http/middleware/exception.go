package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ExceptionMiddleware turns a handler panic into an error; ErrorHandler
// then answers 500 without leaking the stack to the client.
func ExceptionMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, r any) {
			log.Errorw("panic recovered", "path", c.Path(), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		},
	})
}
