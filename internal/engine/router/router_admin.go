package router

import (
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) adminRouter(r fiber.Router) {
	adminGroup := r.Group("/admin")
	{
		adminGroup.Get("/vote-drift", rt.inspectVoteDrift)
		adminGroup.Post("/vote-drift/reconcile", rt.reconcileVoteDrift)
	}
}

func (rt *Router) inspectVoteDrift(c *fiber.Ctx) error {
	drift, err := rt.Services.Reconcile.Inspect(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, drift)
	return nil
}

func (rt *Router) reconcileVoteDrift(c *fiber.Ctx) error {
	result, err := rt.Services.Reconcile.Reconcile(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}
