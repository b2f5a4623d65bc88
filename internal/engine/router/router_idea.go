package router

import (
	"strconv"
	"strings"

	"github.com/go-arcade/ideaflow/internal/engine/model/idea"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) ideaRouter(r fiber.Router) {
	ideaGroup := r.Group("/ideas")
	{
		ideaGroup.Post("/", rt.createIdea)
		ideaGroup.Get("/", rt.listIdeas)
		ideaGroup.Get("/:id", rt.getIdea)
		ideaGroup.Put("/:id", rt.updateIdea)
		ideaGroup.Delete("/:id", rt.deleteIdea)

		// 生命周期
		ideaGroup.Post("/:id/submit", rt.submitIdea)
		ideaGroup.Put("/:id/status", rt.changeIdeaStatus)
		ideaGroup.Post("/:id/budget/approve", rt.approveBudget)
		ideaGroup.Post("/:id/budget/reject", rt.rejectBudget)
		ideaGroup.Get("/:id/workflow", rt.getIdeaWorkflow)

		// 团队
		ideaGroup.Get("/:id/team", rt.listTeamMembers)
		ideaGroup.Post("/:id/team/:userId", rt.addTeamMember)
		ideaGroup.Delete("/:id/team/:userId", rt.removeTeamMember)

		// idea store, used by vote propagation
		ideaGroup.Get("/:id/owner", rt.getIdeaOwner)
		ideaGroup.Put("/:id/voteCount", rt.setVoteCount)
	}
}

func (rt *Router) createIdea(c *fiber.Ctx) error {
	requester, err := middleware.MustRequester(c)
	if err != nil {
		return err
	}
	var req idea.CreateIdeaReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Idea.CreateIdea(c.UserContext(), requester.UserID, &req)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) listIdeas(c *fiber.Ctx) error {
	var q idea.IdeaQueryReq
	if err := c.QueryParser(&q); err != nil {
		return badRequest(http.MalformedBody, err)
	}
	result, err := rt.Services.Idea.ListIdeas(c.UserContext(), &q)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) getIdea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.GetIdea(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) updateIdea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req idea.UpdateIdeaReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Idea.UpdateIdea(c.UserContext(), id, &req)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) deleteIdea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := rt.Services.Idea.DeleteIdea(c.UserContext(), id); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) submitIdea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	requester, err := middleware.MustRequester(c)
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.Submit(c.UserContext(), id, requester.UserID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) changeIdeaStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	requester, err := middleware.MustRequester(c)
	if err != nil {
		return err
	}
	var req idea.ChangeStatusReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	to, err := statemachine.ParseIdeaStatus(req.Status)
	if err != nil {
		return badRequest(http.InvalidArgument, err)
	}
	result, err := rt.Services.Idea.ChangeStatus(c.UserContext(), id, to, requester.UserID, req.Comments)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) approveBudget(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.ApproveBudget(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) rejectBudget(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.RejectBudget(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) getIdeaWorkflow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.Workflow(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) listTeamMembers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.ListTeamMembers(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) addTeamMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	var req idea.AddTeamMemberReq
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if req.Role == "" {
		req.Role = c.Query("role")
	}
	var assignedBy uint64
	if requester, ok := middleware.GetRequester(c); ok {
		assignedBy = requester.UserID
	}
	result, err := rt.Services.Idea.AddTeamMember(c.UserContext(), id, userID, req.Role, assignedBy)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) removeTeamMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	if err := rt.Services.Idea.RemoveTeamMember(c.UserContext(), id, userID); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) getIdeaOwner(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	owner, err := rt.Services.Idea.GetOwner(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, owner)
	return nil
}

// setVoteCount takes the absolute count as a bare JSON number
func (rt *Router) setVoteCount(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	raw := strings.Trim(strings.TrimSpace(string(c.Body())), `"`)
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return badRequest(http.MalformedBody, err)
	}
	if err := rt.Services.Idea.SetVoteCount(c.UserContext(), id, count); err != nil {
		return httpError(err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}
