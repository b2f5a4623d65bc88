package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// 调用方通过 X-User-Id / X-User-Name 传递身份
var identityHeaders = []string{UserIDHeader, UserNameHeader, RequestIDHeader}

// CorsMiddleware allows browsers from origins to call the api with the
// identity headers. Credentials are never allowed with a wildcard origin.
func CorsMiddleware(origins string) fiber.Handler {
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodOptions}, ","),
		AllowHeaders:     strings.Join(append([]string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept}, identityHeaders...), ","),
		ExposeHeaders:    RequestIDHeader,
		AllowCredentials: origins != "*",
	})
}
