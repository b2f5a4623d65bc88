package http

import (
	"errors"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// Error is returned by handlers; ErrorHandler renders it into the envelope.
type Error struct {
	Status int
	Rep    *Response
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Rep.Msg + ": " + e.Cause.Error()
	}
	return e.Rep.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError pairs an HTTP status with a business response.
func NewError(status int, rep *Response, cause error) *Error {
	return &Error{Status: status, Rep: rep, Cause: cause}
}

// ErrorHandler is the fiber error handler. Business errors keep their
// message in detail; anything unrecognised becomes a 500 without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var he *Error
	if errors.As(err, &he) {
		var detail any
		if he.Cause != nil && he.Status < fiber.StatusInternalServerError {
			detail = he.Cause.Error()
		}
		return Write(c, he.Status, he.Rep, detail)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		rep := BadRequest
		if fe.Code == fiber.StatusNotFound {
			rep = NotFound
		}
		return Write(c, fe.Code, rep, fe.Message)
	}

	log.Errorw("unhandled request error", "path", c.Path(), "error", err)
	return Write(c, fiber.StatusInternalServerError, InternalError, nil)
}
