package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/go-arcade/ideaflow/internal/engine/model/idea"
	"github.com/go-arcade/ideaflow/internal/engine/model/team"
	"github.com/go-arcade/ideaflow/internal/engine/model/workflow"
	idearepo "github.com/go-arcade/ideaflow/internal/engine/repo/idea"
	teamrepo "github.com/go-arcade/ideaflow/internal/engine/repo/team"
	workflowrepo "github.com/go-arcade/ideaflow/internal/engine/repo/workflow"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"gorm.io/gorm"
)

// IdeaService is the lifecycle orchestrator. Every mutation of one idea
// runs on that idea's actor and inside one transaction, so the status,
// team list, budget flag and ledger rows change together or not at all.
type IdeaService struct {
	db          database.DB
	ideas       idearepo.IIdeaRepository
	assignments teamrepo.ITeamAssignmentRepository
	workflows   workflowrepo.IWorkflowRepository
	actors      *actor.System
	directory   directory.Directory
	publisher   notify.Publisher
	lifecycle   *statemachine.StateMachine[statemachine.IdeaStatus]
	now         func() time.Time
}

func NewIdeaService(
	db database.DB,
	ideas idearepo.IIdeaRepository,
	assignments teamrepo.ITeamAssignmentRepository,
	workflows workflowrepo.IWorkflowRepository,
	actors *actor.System,
	dir directory.Directory,
	publisher notify.Publisher,
) *IdeaService {
	return &IdeaService{
		db:          db,
		ideas:       ideas,
		assignments: assignments,
		workflows:   workflows,
		actors:      actors,
		directory:   dir,
		publisher:   publisher,
		lifecycle:   statemachine.IdeaLifecycle(),
		now:         time.Now,
	}
}

// mutate loads the idea under a row lock on its actor and persists it when
// fn succeeds. fn returns the workflow steps to record with the change.
func (s *IdeaService) mutate(ctx context.Context, ideaID uint64, fn func(i *idea.Idea) ([]*workflow.WorkflowStep, error)) (*idea.Idea, error) {
	var result *idea.Idea
	err := s.actors.Do(ctx, ideaID, func(ctx context.Context) error {
		return database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
			ideas := s.ideas.WithTx(tx)
			i, err := ideas.GetForUpdate(ctx, ideaID)
			if err != nil {
				return wrapRepoErr(err, "idea", ideaID)
			}
			steps, err := fn(i)
			if err != nil {
				return err
			}
			if err := ideas.Save(ctx, i); err != nil {
				return fmt.Errorf("save idea: %w", err)
			}
			for _, step := range steps {
				if err := s.workflows.WithTx(tx).Create(ctx, step); err != nil {
					return fmt.Errorf("record workflow step: %w", err)
				}
			}
			result = i
			return nil
		})
	})
	return result, err
}

func (s *IdeaService) step(i *idea.Idea, actorID uint64, t workflow.StepType, from statemachine.IdeaStatus, comments string) *workflow.WorkflowStep {
	return &workflow.WorkflowStep{
		IdeaID:     i.ID,
		UserID:     actorID,
		StepType:   t,
		FromStatus: from,
		ToStatus:   i.Status,
		ActionDate: s.now(),
		Comments:   comments,
	}
}

// CreateIdea 创建 idea，初始状态 DRAFT
func (s *IdeaService) CreateIdea(ctx context.Context, creatorID uint64, req *idea.CreateIdeaReq) (*idea.Idea, error) {
	if creatorID == 0 {
		return nil, fmt.Errorf("%w: creator is required", ErrInvalidArgument)
	}
	orgID := req.OrganizationID
	if orgID == 0 {
		orgID = idea.DefaultOrganizationID
	}

	i := &idea.Idea{
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		CreatorID:      creatorID,
		OrganizationID: orgID,
		Status:         s.lifecycle.Initial(),
		TotalScore:     req.TotalScore,
	}
	if err := s.ideas.Create(ctx, i); err != nil {
		log.Errorw("create idea failed", "creatorId", creatorID, "error", err)
		return nil, fmt.Errorf("create idea failed: %w", err)
	}

	s.publisher.Notify(ctx, notify.TypeIdeaCreated, creatorID, i.ID, map[string]any{
		"title":  i.Title,
		"ideaId": i.ID,
	})
	log.Infow("idea created", "ideaId", i.ID, "creatorId", creatorID)
	return i, nil
}

// GetIdea 获取 idea
func (s *IdeaService) GetIdea(ctx context.Context, ideaID uint64) (*idea.Idea, error) {
	i, err := s.ideas.Get(ctx, ideaID)
	if err != nil {
		return nil, wrapRepoErr(err, "idea", ideaID)
	}
	return i, nil
}

// ListIdeas 分页查询
func (s *IdeaService) ListIdeas(ctx context.Context, q *idea.IdeaQueryReq) (*model.PageResult[idea.Idea], error) {
	if q.Status != "" {
		status, err := statemachine.ParseIdeaStatus(q.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		q.Status = status.String()
	}
	page := q.PageQuery.Normalize()
	ideas, total, err := s.ideas.List(ctx, q)
	if err != nil {
		log.Errorw("list ideas failed", "error", err)
		return nil, fmt.Errorf("list ideas failed: %w", err)
	}
	return &model.PageResult[idea.Idea]{List: ideas, Total: total, Page: page.Page, Size: page.Size}, nil
}

// UpdateIdea changes title, description and score while DRAFT or SUBMITTED.
func (s *IdeaService) UpdateIdea(ctx context.Context, ideaID uint64, req *idea.UpdateIdeaReq) (*idea.Idea, error) {
	return s.mutate(ctx, ideaID, func(i *idea.Idea) ([]*workflow.WorkflowStep, error) {
		if !i.Status.IsEditable() {
			return nil, fmt.Errorf("%w: idea %d is %s", ErrNotEditable, ideaID, i.Status)
		}
		if req.Title != nil {
			i.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			i.Description = strings.TrimSpace(*req.Description)
		}
		if req.TotalScore != nil {
			i.TotalScore = *req.TotalScore
		}
		return nil, nil
	})
}

// DeleteIdea 删除 idea
func (s *IdeaService) DeleteIdea(ctx context.Context, ideaID uint64) error {
	return s.actors.Do(ctx, ideaID, func(ctx context.Context) error {
		if err := s.ideas.Delete(ctx, ideaID); err != nil {
			return wrapRepoErr(err, "idea", ideaID)
		}
		log.Infow("idea deleted", "ideaId", ideaID)
		return nil
	})
}

// Submit moves a complete DRAFT to SUBMITTED.
func (s *IdeaService) Submit(ctx context.Context, ideaID, actorID uint64) (*idea.Idea, error) {
	var from statemachine.IdeaStatus
	i, err := s.mutate(ctx, ideaID, func(i *idea.Idea) ([]*workflow.WorkflowStep, error) {
		if i.Status != statemachine.IdeaDraft {
			return nil, fmt.Errorf("%w: idea %d is %s", ErrNotSubmittable, ideaID, i.Status)
		}
		if strings.TrimSpace(i.Title) == "" || strings.TrimSpace(i.Description) == "" {
			return nil, fmt.Errorf("%w: idea %d needs a title and a description", ErrNotSubmittable, ideaID)
		}
		from = i.Status
		if err := s.lifecycle.Transition(from, statemachine.IdeaSubmitted, statemachine.EventSubmit); err != nil {
			return nil, err
		}
		i.Status = statemachine.IdeaSubmitted
		return []*workflow.WorkflowStep{s.step(i, actorID, workflow.StepSubmit, from, "")}, nil
	})
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, i, from)
	return i, nil
}

// ChangeStatus applies a move from the lifecycle table.
func (s *IdeaService) ChangeStatus(ctx context.Context, ideaID uint64, to statemachine.IdeaStatus, actorID uint64, comments string) (*idea.Idea, error) {
	var from statemachine.IdeaStatus
	i, err := s.mutate(ctx, ideaID, func(i *idea.Idea) ([]*workflow.WorkflowStep, error) {
		from = i.Status
		if err := s.lifecycle.Transition(from, to, statemachine.EventChangeStatus); err != nil {
			return nil, fmt.Errorf("idea %d: %w", ideaID, err)
		}
		i.Status = to
		return []*workflow.WorkflowStep{s.step(i, actorID, workflow.StepStatusChange, from, comments)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, i, from)
	return i, nil
}

func (s *IdeaService) statusChanged(ctx context.Context, i *idea.Idea, from statemachine.IdeaStatus) {
	metrics.IdeaTransitionsTotal.WithLabelValues(i.Status.String()).Inc()
	log.Infow("idea status changed", "ideaId", i.ID, "from", from, "to", i.Status)
	s.publisher.Notify(ctx, notify.TypeIdeaStatusChanged, i.CreatorID, i.ID, map[string]any{
		"title": i.Title,
		"from":  from.String(),
		"to":    i.Status.String(),
	})
}

// ApproveBudget requires APPROVED or UNDER_REVIEW.
func (s *IdeaService) ApproveBudget(ctx context.Context, ideaID uint64) (*idea.Idea, error) {
	return s.mutate(ctx, ideaID, func(i *idea.Idea) ([]*workflow.WorkflowStep, error) {
		if !i.Status.AllowsBudgetApproval() {
			return nil, fmt.Errorf("idea %d is %s: %w", ideaID, i.Status, ErrBudgetNotAllowed)
		}
		i.BudgetApproved = true
		return nil, nil
	})
}

// RejectBudget clears the budget flag in any status.
func (s *IdeaService) RejectBudget(ctx context.Context, ideaID uint64) (*idea.Idea, error) {
	return s.mutate(ctx, ideaID, func(i *idea.Idea) ([]*workflow.WorkflowStep, error) {
		i.BudgetApproved = false
		return nil, nil
	})
}

func (s *IdeaService) checkCanAdd(i *idea.Idea, userID uint64) error {
	if !i.Status.AllowsTeamChanges() {
		return fmt.Errorf("%w: idea %d is %s, team changes need APPROVED or ASSIGNING_TEAM", ErrInvalidTransition, i.ID, i.Status)
	}
	if i.HasMember(userID) {
		return fmt.Errorf("%w: user %d on idea %d", ErrAlreadyMember, userID, i.ID)
	}
	return nil
}

// AddTeamMember verifies the user with the directory, then in one
// transaction appends the member, writes the ledger row and, for the first
// member of an APPROVED idea, advances it to ASSIGNING_TEAM.
func (s *IdeaService) AddTeamMember(ctx context.Context, ideaID, userID uint64, role string, assignedByID uint64) (*team.TeamAssignment, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidArgument)
	}
	role = team.NormalizeRole(role)

	var assignment *team.TeamAssignment
	err := s.actors.Do(ctx, ideaID, func(ctx context.Context) error {
		current, err := s.ideas.Get(ctx, ideaID)
		if err != nil {
			return wrapRepoErr(err, "idea", ideaID)
		}
		if err := s.checkCanAdd(current, userID); err != nil {
			return err
		}
		if _, err := s.directory.GetByID(ctx, userID); err != nil {
			log.Warnw("team member lookup failed", "ideaId", ideaID, "userId", userID, "error", err)
			if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrDirectoryUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}

		return database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
			ideas := s.ideas.WithTx(tx)
			i, err := ideas.GetForUpdate(ctx, ideaID)
			if err != nil {
				return wrapRepoErr(err, "idea", ideaID)
			}
			if err := s.checkCanAdd(i, userID); err != nil {
				return err
			}

			from := i.Status
			i.AddMember(userID)
			advanced := false
			if from == statemachine.IdeaApproved {
				if err := s.lifecycle.Transition(from, statemachine.IdeaAssigningTeam, statemachine.EventTeamAutoAdvance); err != nil {
					return err
				}
				i.Status = statemachine.IdeaAssigningTeam
				advanced = true
			}
			if err := ideas.Save(ctx, i); err != nil {
				return fmt.Errorf("save idea: %w", err)
			}

			now := s.now()
			assignment = &team.TeamAssignment{
				IdeaID:         ideaID,
				UserID:         userID,
				Role:           role,
				AssignedByID:   assignedByID,
				AssignmentDate: now,
			}
			if err := s.assignments.WithTx(tx).Create(ctx, assignment); err != nil {
				return fmt.Errorf("record team assignment: %w", err)
			}
			if advanced {
				step := s.step(i, assignedByID, workflow.StepTeamAutoAdvance, from, "first team member added")
				if err := s.workflows.WithTx(tx).Create(ctx, step); err != nil {
					return fmt.Errorf("record workflow step: %w", err)
				}
				metrics.IdeaTransitionsTotal.WithLabelValues(i.Status.String()).Inc()
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Infow("team member added", "ideaId", ideaID, "userId", userID, "role", role)
	s.publisher.Notify(ctx, notify.TypeTeamAssigned, userID, ideaID, map[string]any{
		"role":   role,
		"ideaId": ideaID,
	})
	return assignment, nil
}

// RemoveTeamMember drops the member from the team list and closes the
// current ledger row in one transaction. The status is not touched.
func (s *IdeaService) RemoveTeamMember(ctx context.Context, ideaID, userID uint64) error {
	err := s.actors.Do(ctx, ideaID, func(ctx context.Context) error {
		return database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
			ideas := s.ideas.WithTx(tx)
			i, err := ideas.GetForUpdate(ctx, ideaID)
			if err != nil {
				return wrapRepoErr(err, "idea", ideaID)
			}
			if !i.RemoveMember(userID) {
				return fmt.Errorf("%w: user %d on idea %d", ErrNotMember, userID, ideaID)
			}
			if err := ideas.Save(ctx, i); err != nil {
				return fmt.Errorf("save idea: %w", err)
			}
			if _, err := s.assignments.WithTx(tx).CloseCurrent(ctx, ideaID, userID, s.now()); err != nil {
				return fmt.Errorf("close team assignment: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	log.Infow("team member removed", "ideaId", ideaID, "userId", userID)
	return nil
}

// ListTeamMembers 返回当前成员，按加入顺序
func (s *IdeaService) ListTeamMembers(ctx context.Context, ideaID uint64) ([]uint64, error) {
	i, err := s.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	return i.Members(), nil
}

// SetVoteCount stores an absolute count. It implements ideastore.IdeaStore.
func (s *IdeaService) SetVoteCount(ctx context.Context, ideaID uint64, count int64) error {
	if count < 0 {
		return fmt.Errorf("%w: negative vote count %d", ErrInvalidArgument, count)
	}
	return s.actors.Do(ctx, ideaID, func(ctx context.Context) error {
		if err := s.ideas.SetVoteCount(ctx, ideaID, count); err != nil {
			return wrapRepoErr(err, "idea", ideaID)
		}
		return nil
	})
}

// GetOwner returns the creator. It implements ideastore.IdeaStore.
func (s *IdeaService) GetOwner(ctx context.Context, ideaID uint64) (uint64, error) {
	owner, err := s.ideas.GetOwner(ctx, ideaID)
	if err != nil {
		return 0, wrapRepoErr(err, "idea", ideaID)
	}
	return owner, nil
}

// Workflow 返回状态变更历史
func (s *IdeaService) Workflow(ctx context.Context, ideaID uint64) ([]workflow.WorkflowStep, error) {
	if _, err := s.GetIdea(ctx, ideaID); err != nil {
		return nil, err
	}
	steps, err := s.workflows.ListByIdea(ctx, ideaID)
	if err != nil {
		log.Errorw("list workflow steps failed", "ideaId", ideaID, "error", err)
		return nil, fmt.Errorf("list workflow steps failed: %w", err)
	}
	return steps, nil
}

// AssignmentsByIdea returns the ledger, history included.
func (s *IdeaService) AssignmentsByIdea(ctx context.Context, ideaID uint64) ([]team.TeamAssignment, error) {
	rows, err := s.assignments.ListByIdea(ctx, ideaID, false)
	if err != nil {
		log.Errorw("list team assignments failed", "ideaId", ideaID, "error", err)
		return nil, fmt.Errorf("list team assignments failed: %w", err)
	}
	return rows, nil
}

// AssignmentsByUser returns the current assignments of userID.
func (s *IdeaService) AssignmentsByUser(ctx context.Context, userID uint64) ([]team.TeamAssignment, error) {
	rows, err := s.assignments.ListByUser(ctx, userID, true)
	if err != nil {
		log.Errorw("list team assignments failed", "userId", userID, "error", err)
		return nil, fmt.Errorf("list team assignments failed: %w", err)
	}
	return rows, nil
}
