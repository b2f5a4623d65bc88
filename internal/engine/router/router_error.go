package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-arcade/ideaflow/internal/engine/service"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

type errMapping struct {
	target error
	status int
	rep    *http.Response
}

// order matters: ErrBudgetNotAllowed wraps ErrInvalidTransition
var errMappings = []errMapping{
	{service.ErrNotFound, fiber.StatusNotFound, http.NotFound},
	{service.ErrBudgetNotAllowed, fiber.StatusUnprocessableEntity, http.BudgetNotAllowed},
	{service.ErrInvalidTransition, fiber.StatusUnprocessableEntity, http.InvalidTransition},
	{service.ErrNotSubmittable, fiber.StatusUnprocessableEntity, http.NotSubmittable},
	{service.ErrNotEditable, fiber.StatusUnprocessableEntity, http.NotEditable},
	{service.ErrUserNotFound, fiber.StatusUnprocessableEntity, http.UserNotExist},
	{service.ErrAlreadyMember, fiber.StatusConflict, http.AlreadyMember},
	{service.ErrNotMember, fiber.StatusConflict, http.NotMember},
	{service.ErrDuplicateVote, fiber.StatusConflict, http.DuplicateVote},
	{service.ErrDuplicateBookmark, fiber.StatusConflict, http.DuplicateBookmark},
	{service.ErrForbidden, fiber.StatusForbidden, http.Forbidden},
	{service.ErrInvalidVoteType, fiber.StatusBadRequest, http.InvalidVoteType},
	{service.ErrInvalidArgument, fiber.StatusBadRequest, http.InvalidArgument},
	{service.ErrDirectoryUnavailable, fiber.StatusServiceUnavailable, http.DirectoryUnavailable},
	{actor.ErrStopped, fiber.StatusServiceUnavailable, http.ShuttingDown},
}

// httpError turns a service error into the response envelope error.
// Unknown errors pass through and become a 500.
func httpError(err error) error {
	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			return http.NewError(m.status, m.rep, err)
		}
	}
	return err
}

func badRequest(rep *http.Response, err error) error {
	return http.NewError(fiber.StatusBadRequest, rep, err)
}

func parseID(raw, name string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, badRequest(http.InvalidArgument, fmt.Errorf("%s must be a positive integer", name))
	}
	return v, nil
}

func paramID(c *fiber.Ctx, key string) (uint64, error) {
	return parseID(c.Params(key), key)
}

func queryID(c *fiber.Ctx, key string) (uint64, error) {
	return parseID(c.Query(key), key)
}

// userOrRequester reads the user id from the query, falling back to the caller.
func userOrRequester(c *fiber.Ctx, key string) (uint64, error) {
	if c.Query(key) != "" {
		return queryID(c, key)
	}
	r, err := middleware.MustRequester(c)
	if err != nil {
		return 0, err
	}
	return r.UserID, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest(http.MalformedBody, err)
	}
	return nil
}
