package http

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope of every api reply. Detail is omitted for
// operations that return nothing.
type Response struct {
	Code   int    `json:"code"`
	Detail any    `json:"detail,omitempty"`
	Msg    string `json:"msg"`
}

// OK writes the success envelope and keeps the status the handler set,
// so a 201 from a create stays a 201.
func OK(c *fiber.Ctx, detail any) error {
	return c.JSON(Response{Code: Success.Code, Msg: Success.Msg, Detail: detail})
}

// Write sends rep under an explicit http status.
func Write(c *fiber.Ctx, status int, rep *Response, detail any) error {
	return c.Status(status).JSON(Response{Code: rep.Code, Msg: rep.Msg, Detail: detail})
}
