package router

import (
	"github.com/go-arcade/ideaflow/internal/engine/model/bookmark"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) bookmarkRouter(r fiber.Router) {
	bookmarkGroup := r.Group("/bookmarks")
	{
		bookmarkGroup.Post("/", rt.createBookmark)
		bookmarkGroup.Delete("/:id", rt.deleteBookmark)
		bookmarkGroup.Get("/user/:userId", rt.listBookmarksByUser)
	}
}

func (rt *Router) createBookmark(c *fiber.Ctx) error {
	var req bookmark.CreateBookmarkReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.UserID == 0 {
		requester, err := middleware.MustRequester(c)
		if err != nil {
			return err
		}
		req.UserID = requester.UserID
	}
	result, err := rt.Services.Bookmark.Create(c.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) deleteBookmark(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	requester, err := middleware.MustRequester(c)
	if err != nil {
		return err
	}
	if err := rt.Services.Bookmark.Delete(c.UserContext(), id, requester.UserID); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) listBookmarksByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Bookmark.ListByUser(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}
