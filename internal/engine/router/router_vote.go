package router

import (
	"github.com/go-arcade/ideaflow/internal/engine/model/vote"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) voteRouter(r fiber.Router) {
	voteGroup := r.Group("/votes")
	{
		voteGroup.Post("/", rt.addVote)
		voteGroup.Get("/has-voted", rt.hasVoted)
		voteGroup.Get("/idea/:ideaId", rt.listVotesByIdea)
		voteGroup.Get("/idea/:ideaId/count", rt.countVotesByIdea)
		voteGroup.Get("/user/:userId", rt.listVotesByUser)
		voteGroup.Get("/user/:userId/count", rt.countVotesByUser)
		voteGroup.Get("/:id", rt.getVote)
		voteGroup.Put("/:id", rt.updateVote)
		voteGroup.Delete("/:id", rt.removeVote)
	}
}

// addVote 投票; userId and actorName default to the caller
func (rt *Router) addVote(c *fiber.Ctx) error {
	var req vote.CreateVoteReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if requester, ok := middleware.GetRequester(c); ok {
		if req.UserID == 0 {
			req.UserID = requester.UserID
		}
		if req.ActorName == "" && req.UserID == requester.UserID {
			req.ActorName = requester.Name
		}
	}
	result, err := rt.Services.Vote.AddVote(c.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) getVote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := rt.Services.Vote.GetVote(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) updateVote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	requester, err := middleware.MustRequester(c)
	if err != nil {
		return err
	}
	var req vote.UpdateVoteReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Vote.UpdateVote(c.UserContext(), id, req.VoteType, requester.UserID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) removeVote(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	requester, err := middleware.MustRequester(c)
	if err != nil {
		return err
	}
	if err := rt.Services.Vote.RemoveVote(c.UserContext(), id, requester.UserID); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) listVotesByIdea(c *fiber.Ctx) error {
	ideaID, err := paramID(c, "ideaId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Vote.ListByIdea(c.UserContext(), ideaID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) listVotesByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Vote.ListByUser(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

// countVotesByIdea 统计票数，?type= 按类型过滤
func (rt *Router) countVotesByIdea(c *fiber.Ctx) error {
	ideaID, err := paramID(c, "ideaId")
	if err != nil {
		return err
	}
	n, err := rt.Services.Vote.CountByIdea(c.UserContext(), ideaID, c.Query("type"))
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"ideaId": ideaID, "count": n})
	return nil
}

func (rt *Router) countVotesByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	n, err := rt.Services.Vote.CountByUser(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"userId": userID, "count": n})
	return nil
}

func (rt *Router) hasVoted(c *fiber.Ctx) error {
	userID, err := userOrRequester(c, "userId")
	if err != nil {
		return err
	}
	ideaID, err := queryID(c, "ideaId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Vote.HasVoted(c.UserContext(), userID, ideaID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}
