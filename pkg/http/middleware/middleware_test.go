package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	cfg := &http.Http{}
	cfg.SetDefaults()
	app := fiber.New(cfg.FiberConfig())
	app.Use(ExceptionMiddleware())
	app.Use(RequestMiddleware())
	app.Use(IdentityMiddleware())
	app.Use(AccessLogMiddleware(cfg))
	app.Use(UnifiedResponseMiddleware())
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (int, http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var rep http.Response
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &rep), string(body))
	}
	return resp.StatusCode, rep, resp.Header.Get(RequestIDHeader)
}

func TestUnifiedResponse(t *testing.T) {
	app := newTestApp()
	app.Get("/detail", func(c *fiber.Ctx) error {
		c.Locals(DETAIL, map[string]int{"id": 1})
		return nil
	})
	app.Get("/op", func(c *fiber.Ctx) error {
		c.Locals(OPERATION, "")
		return nil
	})

	status, rep, reqID := do(t, app, "GET", "/detail", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, http.Success.Code, rep.Code)
	assert.Equal(t, map[string]any{"id": float64(1)}, rep.Detail)
	assert.NotEmpty(t, reqID)

	status, rep, _ = do(t, app, "GET", "/op", nil)
	assert.Equal(t, 200, status)
	assert.Nil(t, rep.Detail)
	assert.Equal(t, http.Success.Msg, rep.Msg)
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp()
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return http.NewError(fiber.StatusConflict, http.DuplicateVote, errors.New("user 1 idea 2"))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("sql: connection refused")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("nil map")
	})

	tests := []struct {
		path   string
		status int
		code   int
		detail any
	}{
		{"/conflict", 409, http.DuplicateVote.Code, "user 1 idea 2"},
		{"/boom", 500, http.InternalError.Code, nil},
		{"/panic", 500, http.InternalError.Code, nil},
		{"/missing", 404, http.NotFound.Code, "Cannot GET /missing"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, rep, _ := do(t, app, "GET", tt.path, nil)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, rep.Code)
			assert.Equal(t, tt.detail, rep.Detail)
		})
	}
}

func TestIdentityMiddleware(t *testing.T) {
	app := newTestApp()
	app.Get("/me", func(c *fiber.Ctx) error {
		r, err := MustRequester(c)
		if err != nil {
			return err
		}
		c.Locals(DETAIL, r)
		return nil
	})

	status, rep, _ := do(t, app, "GET", "/me", map[string]string{UserIDHeader: "42", UserNameHeader: "Alice"})
	assert.Equal(t, 200, status)
	assert.Equal(t, map[string]any{"UserID": float64(42), "Name": "Alice"}, rep.Detail)

	status, rep, _ = do(t, app, "GET", "/me", nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, http.RequesterRequired.Code, rep.Code)

	status, rep, _ = do(t, app, "GET", "/me", map[string]string{UserIDHeader: "abc"})
	assert.Equal(t, 400, status)
	assert.Equal(t, http.InvalidArgument.Code, rep.Code)
}

func TestRequestMiddleware_KeepsIncomingID(t *testing.T) {
	app := newTestApp()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals(OPERATION, "")
		return nil
	})
	_, _, reqID := do(t, app, "GET", "/x", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", reqID)
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	app := fiber.New()
	app.Use(CorsMiddleware("https://ideas.example.com"))
	app.Post("/ideas", func(c *fiber.Ctx) error { return nil })

	req := httptest.NewRequest("OPTIONS", "/ideas", nil)
	req.Header.Set("Origin", "https://ideas.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", UserIDHeader)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, "https://ideas.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), UserIDHeader)
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
