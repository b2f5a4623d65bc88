package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/model/vote"

	"github.com/go-arcade/ideaflow/pkg/cron"
	"github.com/go-arcade/ideaflow/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clean := f.newIdea(t, statemachine.IdeaSubmitted)
	stale := f.newIdea(t, statemachine.IdeaSubmitted)
	inflated := f.newIdea(t, statemachine.IdeaSubmitted)

	castVote(t, f, 7, clean.ID, "")
	castVote(t, f, 7, stale.ID, "")
	f.store.failNext(3)
	castVote(t, f, 8, stale.ID, "")
	require.NoError(t, f.repos.Idea.SetVoteCount(ctx, inflated.ID, 9))

	drift, err := f.reconcile.Inspect(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []VoteDrift{
		{IdeaID: stale.ID, Cached: 1, Actual: 2},
		{IdeaID: inflated.ID, Cached: 9, Actual: 0},
	}, drift)

	result, err := f.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Drifted)
	assert.Equal(t, 2, result.Repaired)
	assert.Equal(t, int64(2), f.reload(t, stale.ID).VoteCount)
	assert.Equal(t, int64(0), f.reload(t, inflated.ID).VoteCount)

	drift, err = f.reconcile.Inspect(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestRecountIdea_WaitsForPendingPush(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.newIdea(t, statemachine.IdeaSubmitted)
	held, release := holdFirstWrite(f)

	voted := make(chan struct{})
	go func() {
		defer close(voted)
		_, err := f.votes.AddVote(ctx, &vote.CreateVoteReq{UserID: 7, IdeaID: i.ID, VoteType: "UPVOTE"})
		assert.NoError(t, err)
	}()
	<-held

	// a vote that reached the ledger while the push above is parked
	require.NoError(t, f.repos.Vote.Create(ctx, &vote.Vote{UserID: 8, IdeaID: i.ID, VoteType: vote.VoteTypeUp}))

	recounted := make(chan error, 1)
	go func() { recounted <- f.reconcile.RecountIdea(ctx, i.ID) }()
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, f.store.writes())

	close(release)
	<-voted
	require.NoError(t, <-recounted)

	assert.Equal(t, []int64{1, 2}, f.store.writes())
	assert.Equal(t, int64(2), f.reload(t, i.ID).VoteCount)
}

func TestRecountIdea_DropsDeletedIdea(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.reconcile.RecountIdea(context.Background(), 404))
}

func TestReconcile_ScheduledJob(t *testing.T) {
	f := newFixture(t)
	i := f.newIdea(t, statemachine.IdeaSubmitted)
	f.store.failNext(3)
	castVote(t, f, 7, i.ID, "")

	c := cron.New()
	require.NoError(t, f.reconcile.Schedule(c, "@every 1h", 0))
	require.NoError(t, c.Run(ReconcileJobName))
	assert.Equal(t, int64(1), f.reload(t, i.ID).VoteCount)

	assert.Error(t, f.reconcile.Schedule(c, "not a spec", 0))
}
