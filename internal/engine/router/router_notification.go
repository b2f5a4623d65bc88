package router

import (
	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) notificationRouter(r fiber.Router) {
	notificationGroup := r.Group("/notifications")
	{
		notificationGroup.Get("/", rt.listNotifications)
		notificationGroup.Get("/unread-count", rt.unreadNotificationCount)
		notificationGroup.Put("/read-all", rt.markAllNotificationsRead)
		notificationGroup.Put("/:id/read", rt.markNotificationRead)
		notificationGroup.Delete("/:id", rt.deleteNotification)
	}
}

// listNotifications ?userId=&page=&size=, newest first
func (rt *Router) listNotifications(c *fiber.Ctx) error {
	userID, err := userOrRequester(c, "userId")
	if err != nil {
		return err
	}
	var page model.PageQuery
	if err := c.QueryParser(&page); err != nil {
		return badRequest(http.MalformedBody, err)
	}
	result, err := rt.Services.Notification.ListByUser(c.UserContext(), userID, page)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) unreadNotificationCount(c *fiber.Ctx) error {
	userID, err := userOrRequester(c, "userId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Notification.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) markNotificationRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Notification.MarkRead(c.UserContext(), id); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) markAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := userOrRequester(c, "userId")
	if err != nil {
		return err
	}
	n, err := rt.Services.Notification.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"userId": userID, "updated": n})
	return nil
}

func (rt *Router) deleteNotification(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Notification.Delete(c.UserContext(), id); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}
