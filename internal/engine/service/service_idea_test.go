package service

import (
	"context"
	"sync"
	"testing"

	"github.com/go-arcade/ideaflow/internal/engine/model/idea"
	"github.com/go-arcade/ideaflow/internal/engine/model/team"
	"github.com/go-arcade/ideaflow/internal/engine/model/workflow"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	i, err := f.ideas.CreateIdea(ctx, 1, &idea.CreateIdeaReq{Title: "  Solar roofs ", Description: "cheap power"})
	require.NoError(t, err)
	assert.Equal(t, statemachine.IdeaDraft, i.Status)
	assert.Equal(t, "Solar roofs", i.Title)
	assert.Equal(t, uint64(idea.DefaultOrganizationID), i.OrganizationID)

	created := f.pub.ofType(notify.TypeIdeaCreated)
	require.Len(t, created, 1)
	assert.Equal(t, uint64(1), created[0].UserID)
	assert.Equal(t, "Solar roofs", created[0].Data["title"])

	_, err = f.ideas.CreateIdea(ctx, 0, &idea.CreateIdeaReq{Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestChangeStatus_FollowsLifecycleTable(t *testing.T) {
	allowed := map[statemachine.IdeaStatus][]statemachine.IdeaStatus{
		statemachine.IdeaDraft:         {statemachine.IdeaSubmitted},
		statemachine.IdeaSubmitted:     {statemachine.IdeaUnderReview, statemachine.IdeaRejected},
		statemachine.IdeaUnderReview:   {statemachine.IdeaApproved, statemachine.IdeaRejected},
		statemachine.IdeaApproved:      {statemachine.IdeaAssigningTeam},
		statemachine.IdeaAssigningTeam: {statemachine.IdeaInProgress},
		statemachine.IdeaInProgress:    {statemachine.IdeaCompleted},
	}
	f := newFixture(t)
	ctx := context.Background()

	for _, from := range statemachine.AllIdeaStatuses {
		for _, to := range statemachine.AllIdeaStatuses {
			i := f.newIdea(t, from)
			_, err := f.ideas.ChangeStatus(ctx, i.ID, to, 1, "")
			want := false
			for _, s := range allowed[from] {
				want = want || s == to
			}
			if want {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, f.reload(t, i.ID).Status)
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			assert.Equal(t, from, f.reload(t, i.ID).Status, "%s -> %s must not change status", from, to)
		}
	}
}

func TestChangeStatus_UnderReviewScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	i := f.newIdea(t, statemachine.IdeaUnderReview)
	_, err := f.ideas.ChangeStatus(ctx, i.ID, statemachine.IdeaInProgress, 2, "")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "UNDER_REVIEW → IN_PROGRESS")
	assert.Empty(t, f.pub.ofType(notify.TypeIdeaStatusChanged))

	updated, err := f.ideas.ChangeStatus(ctx, i.ID, statemachine.IdeaApproved, 2, "looks good")
	require.NoError(t, err)
	assert.Equal(t, statemachine.IdeaApproved, updated.Status)

	steps, err := f.ideas.Workflow(ctx, i.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, workflow.StepStatusChange, steps[0].StepType)
	assert.Equal(t, statemachine.IdeaUnderReview, steps[0].FromStatus)
	assert.Equal(t, statemachine.IdeaApproved, steps[0].ToStatus)
	assert.Equal(t, "looks good", steps[0].Comments)

	changed := f.pub.ofType(notify.TypeIdeaStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, uint64(1), changed[0].UserID)
	assert.Equal(t, "APPROVED", changed[0].Data["to"])
}

func TestChangeStatus_UnknownIdea(t *testing.T) {
	f := newFixture(t)
	_, err := f.ideas.ChangeStatus(context.Background(), 404, statemachine.IdeaSubmitted, 1, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name        string
		status      statemachine.IdeaStatus
		title, desc string
		wantErr     error
	}{
		{name: "complete draft", status: statemachine.IdeaDraft, title: "A", desc: "B"},
		{name: "empty description", status: statemachine.IdeaDraft, title: "A", desc: "", wantErr: ErrNotSubmittable},
		{name: "blank title", status: statemachine.IdeaDraft, title: "   ", desc: "B", wantErr: ErrNotSubmittable},
		{name: "already submitted", status: statemachine.IdeaSubmitted, title: "A", desc: "B", wantErr: ErrNotSubmittable},
		{name: "approved", status: statemachine.IdeaApproved, title: "A", desc: "B", wantErr: ErrNotSubmittable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			i := f.newIdea(t, tt.status)
			i.Title, i.Description = tt.title, tt.desc
			require.NoError(t, f.repos.Idea.Save(ctx, i))

			_, err := f.ideas.Submit(ctx, i.ID, 1)
			got := f.reload(t, i.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, got.Status)
				assert.Equal(t, tt.desc, got.Description)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, statemachine.IdeaSubmitted, got.Status)

			steps, err := f.ideas.Workflow(ctx, i.ID)
			require.NoError(t, err)
			require.Len(t, steps, 1)
			assert.Equal(t, workflow.StepSubmit, steps[0].StepType)
		})
	}
}

func TestUpdateIdea_OnlyWhileEditable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := "Better title"

	draft := f.newIdea(t, statemachine.IdeaDraft)
	updated, err := f.ideas.UpdateIdea(ctx, draft.ID, &idea.UpdateIdeaReq{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Better title", updated.Title)
	assert.Equal(t, "B", updated.Description)

	approved := f.newIdea(t, statemachine.IdeaApproved)
	_, err = f.ideas.UpdateIdea(ctx, approved.ID, &idea.UpdateIdeaReq{Title: &title})
	assert.ErrorIs(t, err, ErrNotEditable)
	assert.Equal(t, "A", f.reload(t, approved.ID).Title)
}

func TestDeleteIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.newIdea(t, statemachine.IdeaDraft)

	require.NoError(t, f.ideas.DeleteIdea(ctx, i.ID))
	_, err := f.ideas.GetIdea(ctx, i.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.ideas.DeleteIdea(ctx, i.ID), ErrNotFound)
}

func TestListIdeas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.newIdea(t, statemachine.IdeaDraft)
	f.newIdea(t, statemachine.IdeaApproved)
	f.newIdea(t, statemachine.IdeaApproved)

	page, err := f.ideas.ListIdeas(ctx, &idea.IdeaQueryReq{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.List, 2)
	assert.Equal(t, 1, page.Page)

	_, err = f.ideas.ListIdeas(ctx, &idea.IdeaQueryReq{Status: "SHELVED"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBudget(t *testing.T) {
	tests := []struct {
		status     statemachine.IdeaStatus
		canApprove bool
	}{
		{statemachine.IdeaDraft, false},
		{statemachine.IdeaSubmitted, false},
		{statemachine.IdeaUnderReview, true},
		{statemachine.IdeaApproved, true},
		{statemachine.IdeaRejected, false},
		{statemachine.IdeaAssigningTeam, false},
		{statemachine.IdeaInProgress, false},
		{statemachine.IdeaCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			i := f.newIdea(t, tt.status)

			_, err := f.ideas.ApproveBudget(ctx, i.ID)
			if tt.canApprove {
				require.NoError(t, err)
				assert.True(t, f.reload(t, i.ID).BudgetApproved)
			} else {
				assert.ErrorIs(t, err, ErrBudgetNotAllowed)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.False(t, f.reload(t, i.ID).BudgetApproved)
			}

			// rejectBudget has no status precondition; revoking is allowed from every status.
			_, err = f.ideas.RejectBudget(ctx, i.ID)
			require.NoError(t, err)
			assert.False(t, f.reload(t, i.ID).BudgetApproved)
			assert.Equal(t, tt.status, f.reload(t, i.ID).Status)
		})
	}
}

func TestAddTeamMember_FirstMemberAdvancesApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.newIdea(t, statemachine.IdeaApproved)

	a, err := f.ideas.AddTeamMember(ctx, i.ID, 7, "", 2)
	require.NoError(t, err)
	assert.Equal(t, team.RoleMember, a.Role)

	got := f.reload(t, i.ID)
	assert.Equal(t, statemachine.IdeaAssigningTeam, got.Status)
	assert.Equal(t, []uint64{7}, got.Members())

	_, err = f.ideas.AddTeamMember(ctx, i.ID, 8, "lead", 2)
	require.NoError(t, err)
	got = f.reload(t, i.ID)
	assert.Equal(t, statemachine.IdeaAssigningTeam, got.Status)
	assert.Equal(t, []uint64{7, 8}, got.Members())

	steps, err := f.ideas.Workflow(ctx, i.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, workflow.StepTeamAutoAdvance, steps[0].StepType)

	ledger, err := f.ideas.AssignmentsByIdea(ctx, i.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, team.RoleLead, ledger[1].Role)

	assigned := f.pub.ofType(notify.TypeTeamAssigned)
	require.Len(t, assigned, 2)
	assert.Equal(t, uint64(7), assigned[0].UserID)
}

func TestAddTeamMember_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.newIdea(t, statemachine.IdeaDraft)
	_, err := f.ideas.AddTeamMember(ctx, draft.ID, 7, "", 2)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	approved := f.newIdea(t, statemachine.IdeaApproved)
	_, err = f.ideas.AddTeamMember(ctx, approved.ID, 404, "", 2)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, statemachine.IdeaApproved, f.reload(t, approved.ID).Status)

	f.dir.err = directory.ErrDirectoryUnavailable
	_, err = f.ideas.AddTeamMember(ctx, approved.ID, 7, "", 2)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.Empty(t, f.reload(t, approved.ID).Members())
	f.dir.err = nil

	_, err = f.ideas.AddTeamMember(ctx, approved.ID, 7, "", 2)
	require.NoError(t, err)
	_, err = f.ideas.AddTeamMember(ctx, approved.ID, 7, "", 2)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Len(t, f.reload(t, approved.ID).Members(), 1)

	ledger, err := f.ideas.AssignmentsByIdea(ctx, approved.ID)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestAddTeamMember_AtomicUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.newIdea(t, statemachine.IdeaApproved)

	stop := make(chan struct{})
	var inconsistent []string
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got, err := f.ideas.GetIdea(ctx, i.ID)
			if err != nil {
				continue
			}
			hasMembers := len(got.Members()) > 0
			advanced := got.Status == statemachine.IdeaAssigningTeam
			if hasMembers != advanced {
				inconsistent = append(inconsistent, got.Status.String())
			}
		}
	}()

	var writers sync.WaitGroup
	errs := make([]error, 3)
	for n, userID := range []uint64{7, 8, 9} {
		writers.Add(1)
		go func(n int, userID uint64) {
			defer writers.Done()
			_, errs[n] = f.ideas.AddTeamMember(ctx, i.ID, userID, "", 2)
		}(n, userID)
	}
	writers.Wait()
	close(stop)
	readers.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Empty(t, inconsistent)
	got := f.reload(t, i.ID)
	assert.Equal(t, statemachine.IdeaAssigningTeam, got.Status)
	assert.ElementsMatch(t, []uint64{7, 8, 9}, got.Members())

	steps, err := f.ideas.Workflow(ctx, i.ID)
	require.NoError(t, err)
	assert.Len(t, steps, 1)
}

func TestRemoveTeamMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.newIdea(t, statemachine.IdeaAssigningTeam)

	_, err := f.ideas.AddTeamMember(ctx, i.ID, 7, "", 2)
	require.NoError(t, err)

	assert.ErrorIs(t, f.ideas.RemoveTeamMember(ctx, i.ID, 8), ErrNotMember)

	require.NoError(t, f.ideas.RemoveTeamMember(ctx, i.ID, 7))
	got := f.reload(t, i.ID)
	assert.Empty(t, got.Members())
	assert.Equal(t, statemachine.IdeaAssigningTeam, got.Status)

	ledger, err := f.ideas.AssignmentsByIdea(ctx, i.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.False(t, ledger[0].IsCurrent())

	current, err := f.ideas.AssignmentsByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, current)

	members, err := f.ideas.ListTeamMembers(ctx, i.ID)
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestSetVoteCountAndOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.newIdea(t, statemachine.IdeaSubmitted)

	require.NoError(t, f.ideas.SetVoteCount(ctx, i.ID, 5))
	require.NoError(t, f.ideas.SetVoteCount(ctx, i.ID, 5))
	assert.Equal(t, int64(5), f.reload(t, i.ID).VoteCount)

	assert.ErrorIs(t, f.ideas.SetVoteCount(ctx, i.ID, -1), ErrInvalidArgument)
	assert.ErrorIs(t, f.ideas.SetVoteCount(ctx, 404, 1), ErrNotFound)

	owner, err := f.ideas.GetOwner(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), owner)

	_, err = f.ideas.GetOwner(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
