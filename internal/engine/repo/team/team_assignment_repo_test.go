package team

import (
	"context"
	"testing"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/model/team"
	"github.com/go-arcade/ideaflow/pkg/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamAssignmentRepo_History(t *testing.T) {
	r := NewTeamAssignmentRepo(dbtest.Open(t, &team.TeamAssignment{}))
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Create(ctx, &team.TeamAssignment{IdeaID: 1, UserID: 5, Role: team.RoleMember, AssignmentDate: t0}))
	require.NoError(t, r.Create(ctx, &team.TeamAssignment{IdeaID: 1, UserID: 6, Role: team.RoleLead, AssignmentDate: t0.Add(time.Minute)}))

	n, err := r.CloseCurrent(ctx, 1, 5, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// closing again touches nothing
	n, err = r.CloseCurrent(ctx, 1, 5, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	// re-adding keeps the old row as history
	require.NoError(t, r.Create(ctx, &team.TeamAssignment{IdeaID: 1, UserID: 5, Role: team.RoleMember, AssignmentDate: t0.Add(3 * time.Hour)}))

	all, err := r.ListByIdea(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].IsCurrent())
	assert.Equal(t, uint64(6), all[1].UserID)

	current, err := r.ListByIdea(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, current, 2)
	for _, a := range current {
		assert.True(t, a.IsCurrent())
	}

	byUser, err := r.ListByUser(ctx, 5, false)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
	byUser, err = r.ListByUser(ctx, 5, true)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, team.RoleMember, team.NormalizeRole(""))
	assert.Equal(t, team.RoleLead, team.NormalizeRole(" lead "))
}
