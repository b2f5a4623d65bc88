package router

import (
	"errors"

	"github.com/go-arcade/ideaflow/internal/engine/model/team"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

var errIdeaIDRequired = errors.New("ideaId is required")

func (rt *Router) teamAssignmentRouter(r fiber.Router) {
	assignmentGroup := r.Group("/team-assignments")
	{
		assignmentGroup.Post("/", rt.createTeamAssignment)
		assignmentGroup.Get("/idea/:ideaId", rt.listAssignmentsByIdea)
		assignmentGroup.Get("/user/:userId", rt.listAssignmentsByUser)
	}
}

// createTeamAssignment is addTeamMember addressed by body instead of path
func (rt *Router) createTeamAssignment(c *fiber.Ctx) error {
	var req team.CreateTeamAssignmentReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.AssignedByID == 0 {
		if requester, ok := middleware.GetRequester(c); ok {
			req.AssignedByID = requester.UserID
		}
	}
	if req.IdeaID == 0 {
		return badRequest(http.InvalidArgument, errIdeaIDRequired)
	}
	result, err := rt.Services.Idea.AddTeamMember(c.UserContext(), req.IdeaID, req.UserID, req.Role, req.AssignedByID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) listAssignmentsByIdea(c *fiber.Ctx) error {
	ideaID, err := paramID(c, "ideaId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.AssignmentsByIdea(c.UserContext(), ideaID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) listAssignmentsByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	result, err := rt.Services.Idea.AssignmentsByUser(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	c.Locals(middleware.DETAIL, result)
	return nil
}
