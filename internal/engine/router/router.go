package router

import (
	"github.com/go-arcade/ideaflow/internal/engine/service"
	httpx "github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/shutdown"
	"github.com/go-arcade/ideaflow/pkg/version"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/8 15:48
 * @file: router.go
 * @description: setup router
 */

type Router struct {
	Http     *httpx.Http
	Services *service.Services
	Metrics  *metrics.Server
	Shutdown *shutdown.Manager
}

func NewRouter(httpConf *httpx.Http, services *service.Services, metricsServer *metrics.Server, lifecycle *shutdown.Manager) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Metrics:  metricsServer,
		Shutdown: lifecycle,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(rt.Http.FiberConfig())

	// panic recover
	app.Use(middleware.ExceptionMiddleware())

	app.Use(middleware.CorsMiddleware(rt.Http.AllowOrigins))

	// request id
	app.Use(middleware.RequestMiddleware())

	app.Use(middleware.TraceMiddleware())

	// X-User-Id / X-User-Name
	app.Use(middleware.IdentityMiddleware())

	app.Use(middleware.AccessLogMiddleware(rt.Http))

	// 停机期间拒绝新请求
	app.Use(func(c *fiber.Ctx) error {
		if rt.Shutdown != nil && rt.Shutdown.IsShuttingDown() {
			return httpx.NewError(fiber.StatusServiceUnavailable, httpx.ShuttingDown, nil)
		}
		return c.Next()
	})

	// unified response
	app.Use(middleware.UnifiedResponseMiddleware())

	if rt.Http.PProf {
		rt.debugRouter(app.Group("/debug/pprof"))
	}

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		c.Locals(middleware.DETAIL, version.GetVersion())
		return nil
	})

	api := app.Group(rt.Http.ContextPath)
	rt.routerGroup(api)

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	rt.ideaRouter(r)
	rt.voteRouter(r)
	rt.teamAssignmentRouter(r)
	rt.notificationRouter(r)
	rt.bookmarkRouter(r)
	rt.adminRouter(r)
}
