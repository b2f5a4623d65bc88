package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-arcade/ideaflow/internal/engine/model/vote"
	voterepo "github.com/go-arcade/ideaflow/internal/engine/repo/vote"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/internal/pkg/queue"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
)

const anonymousActor = "Someone"

// errLedgerUnread marks a sync that never got a ledger count.
var errLedgerUnread = errors.New("vote ledger not counted")

// VoteCounter copies the ledger count of an idea into the idea store. Syncs
// of one idea run one at a time in arrival order, so the count written last
// is always the newest ledger count.
type VoteCounter struct {
	lanes *actor.System
	votes voterepo.IVoteRepository
}

func NewVoteCounter(lanes *actor.System, votes voterepo.IVoteRepository) *VoteCounter {
	return &VoteCounter{lanes: lanes, votes: votes}
}

// Sync counts the idea's votes and hands the total to write, both on the
// idea's lane. The total is returned whenever the ledger was counted, even
// if write failed.
func (c *VoteCounter) Sync(ctx context.Context, ideaID uint64, write func(ctx context.Context, ideaID uint64, total int64) error) (int64, error) {
	counted := make(chan int64, 1)
	err := c.lanes.Do(ctx, ideaID, func(ctx context.Context) error {
		total, err := c.votes.CountByIdea(ctx, ideaID)
		if err != nil {
			return err
		}
		counted <- total
		return write(ctx, ideaID, total)
	})
	select {
	case total := <-counted:
		return total, err
	default:
		return 0, fmt.Errorf("%w: %w", errLedgerUnread, err)
	}
}

// VoteService owns the vote ledger. After every insert or delete the idea's
// cached count is set to the ledger count. A push that keeps failing leaves
// a deferred recount behind and never fails the vote itself.
type VoteService struct {
	votes     voterepo.IVoteRepository
	counter   *VoteCounter
	pusher    *ideastore.Pusher
	store     ideastore.IdeaStore
	recounts  queue.Enqueuer
	publisher notify.Publisher
	names     *directory.NameResolver
}

func NewVoteService(
	votes voterepo.IVoteRepository,
	counter *VoteCounter,
	pusher *ideastore.Pusher,
	store ideastore.IdeaStore,
	recounts queue.Enqueuer,
	publisher notify.Publisher,
	names *directory.NameResolver,
) *VoteService {
	return &VoteService{
		votes:     votes,
		counter:   counter,
		pusher:    pusher,
		store:     store,
		recounts:  recounts,
		publisher: publisher,
		names:     names,
	}
}

// AddVote 投票，同一用户对同一 idea 只能投一次
func (s *VoteService) AddVote(ctx context.Context, req *vote.CreateVoteReq) (*vote.Vote, error) {
	if req.UserID == 0 || req.IdeaID == 0 {
		return nil, fmt.Errorf("%w: userId and ideaId are required", ErrInvalidArgument)
	}
	voteType, err := vote.ParseVoteType(req.VoteType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoteType, err)
	}

	v := &vote.Vote{UserID: req.UserID, IdeaID: req.IdeaID, VoteType: voteType}
	if err := s.votes.Create(ctx, v); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: user %d on idea %d", ErrDuplicateVote, req.UserID, req.IdeaID)
		}
		log.Errorw("create vote failed", "userId", req.UserID, "ideaId", req.IdeaID, "error", err)
		return nil, fmt.Errorf("create vote failed: %w", err)
	}

	total, ok := s.propagate(ctx, v.IdeaID, "vote_added")
	if ok {
		s.notifyOwner(ctx, v, req.ActorName, total)
	}
	return v, nil
}

// RemoveVote deletes a vote of the requester and propagates the new count.
func (s *VoteService) RemoveVote(ctx context.Context, voteID, requesterID uint64) error {
	v, err := s.owned(ctx, voteID, requesterID)
	if err != nil {
		return err
	}
	if err := s.votes.Delete(ctx, voteID); err != nil {
		return wrapRepoErr(err, "vote", voteID)
	}
	s.propagate(ctx, v.IdeaID, "vote_removed")
	return nil
}

// UpdateVote only changes the type; the count is unaffected.
func (s *VoteService) UpdateVote(ctx context.Context, voteID uint64, voteType string, requesterID uint64) (*vote.Vote, error) {
	t, err := vote.ParseVoteType(voteType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoteType, err)
	}
	v, err := s.owned(ctx, voteID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.votes.UpdateType(ctx, voteID, t); err != nil {
		return nil, wrapRepoErr(err, "vote", voteID)
	}
	v.VoteType = t
	return v, nil
}

func (s *VoteService) owned(ctx context.Context, voteID, requesterID uint64) (*vote.Vote, error) {
	v, err := s.GetVote(ctx, voteID)
	if err != nil {
		return nil, err
	}
	if v.UserID != requesterID {
		return nil, fmt.Errorf("%w: vote %d belongs to another user", ErrForbidden, voteID)
	}
	return v, nil
}

// propagate recounts the ledger and pushes the total to the idea store.
// The second result is false when the ledger could not be counted.
func (s *VoteService) propagate(ctx context.Context, ideaID uint64, reason string) (int64, bool) {
	// the vote is committed, finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	total, err := s.counter.Sync(ctx, ideaID, s.pusher.Push)
	if errors.Is(err, errLedgerUnread) {
		log.Errorw("count votes failed", "ideaId", ideaID, "error", err)
		s.deferRecount(ctx, ideaID, reason)
		return 0, false
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warnw("vote count push skipped, idea not found", "ideaId", ideaID)
			return total, true
		}
		log.Errorw("vote count push failed", "ideaId", ideaID, "count", total, "error", err)
		s.deferRecount(ctx, ideaID, reason)
	}
	return total, true
}

func (s *VoteService) deferRecount(ctx context.Context, ideaID uint64, reason string) {
	if err := s.recounts.EnqueueRecount(ctx, ideaID, reason); err != nil {
		metrics.DeferredRecountTotal.WithLabelValues("enqueue_failed").Inc()
		log.Errorw("enqueue recount failed", "ideaId", ideaID, "error", err)
		return
	}
	metrics.DeferredRecountTotal.WithLabelValues("enqueued").Inc()
}

func (s *VoteService) notifyOwner(ctx context.Context, v *vote.Vote, actorName string, total int64) {
	owner, err := s.store.GetOwner(ctx, v.IdeaID)
	if err != nil {
		log.Warnw("vote notification skipped, owner unknown", "ideaId", v.IdeaID, "error", err)
		return
	}
	others := total - 1
	if others < 0 {
		others = 0
	}
	s.publisher.Notify(ctx, notify.TypeVoteActivity, owner, v.IdeaID, map[string]any{
		"actor":  resolveName(ctx, s.names, v.UserID, actorName),
		"others": others,
	})
}

// resolveName prefers the supplied name, then the directory, then "Someone".
func resolveName(ctx context.Context, names *directory.NameResolver, userID uint64, supplied string) string {
	if name := strings.TrimSpace(supplied); name != "" {
		return name
	}
	if names != nil {
		name, err := names.DisplayName(ctx, userID)
		if err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
		if err != nil {
			log.Debugw("display name lookup failed", "userId", userID, "error", err)
		}
	}
	return anonymousActor
}

// GetVote 获取投票
func (s *VoteService) GetVote(ctx context.Context, voteID uint64) (*vote.Vote, error) {
	v, err := s.votes.Get(ctx, voteID)
	if err != nil {
		return nil, wrapRepoErr(err, "vote", voteID)
	}
	return v, nil
}

func (s *VoteService) ListByIdea(ctx context.Context, ideaID uint64) ([]vote.Vote, error) {
	votes, err := s.votes.ListByIdea(ctx, ideaID)
	if err != nil {
		log.Errorw("list votes failed", "ideaId", ideaID, "error", err)
		return nil, fmt.Errorf("list votes failed: %w", err)
	}
	return votes, nil
}

func (s *VoteService) ListByUser(ctx context.Context, userID uint64) ([]vote.Vote, error) {
	votes, err := s.votes.ListByUser(ctx, userID)
	if err != nil {
		log.Errorw("list votes failed", "userId", userID, "error", err)
		return nil, fmt.Errorf("list votes failed: %w", err)
	}
	return votes, nil
}

// CountByIdea counts all votes of the idea, or only those of voteType when set.
func (s *VoteService) CountByIdea(ctx context.Context, ideaID uint64, voteType string) (int64, error) {
	if voteType == "" {
		return s.votes.CountByIdea(ctx, ideaID)
	}
	t, err := vote.ParseVoteType(voteType)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidVoteType, err)
	}
	return s.votes.CountByIdeaAndType(ctx, ideaID, t)
}

func (s *VoteService) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	return s.votes.CountByUser(ctx, userID)
}

func (s *VoteService) HasVoted(ctx context.Context, userID, ideaID uint64) (*vote.HasVotedResp, error) {
	voted, err := s.votes.Exists(ctx, userID, ideaID)
	if err != nil {
		log.Errorw("check vote failed", "userId", userID, "ideaId", ideaID, "error", err)
		return nil, fmt.Errorf("check vote failed: %w", err)
	}
	return &vote.HasVotedResp{UserID: userID, IdeaID: ideaID, Voted: voted}, nil
}
