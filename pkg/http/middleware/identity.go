package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/gofiber/fiber/v2"
)

const (
	UserIDHeader   = "X-User-Id"
	UserNameHeader = "X-User-Name"
)

// Requester is the caller identity forwarded by the gateway.
type Requester struct {
	UserID uint64
	Name   string
}

const requesterKey = "requester"

var errBadUserID = errors.New("X-User-Id must be a positive integer")

// IdentityMiddleware reads the gateway identity headers. Requests without
// them pass through; handlers that need an identity call MustRequester.
func IdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(UserIDHeader))
		if raw == "" {
			return c.Next()
		}
		uid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || uid == 0 {
			return http.NewError(fiber.StatusBadRequest, http.InvalidArgument, errBadUserID)
		}
		c.Locals(requesterKey, Requester{UserID: uid, Name: strings.TrimSpace(c.Get(UserNameHeader))})
		return c.Next()
	}
}

// GetRequester returns the identity set by IdentityMiddleware.
func GetRequester(c *fiber.Ctx) (Requester, bool) {
	r, ok := c.Locals(requesterKey).(Requester)
	return r, ok
}

// MustRequester fails with 401 when the request carries no identity.
func MustRequester(c *fiber.Ctx) (Requester, error) {
	r, ok := GetRequester(c)
	if !ok {
		return Requester{}, http.NewError(fiber.StatusUnauthorized, http.RequesterRequired, nil)
	}
	return r, nil
}
