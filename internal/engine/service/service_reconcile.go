package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	idearepo "github.com/go-arcade/ideaflow/internal/engine/repo/idea"
	voterepo "github.com/go-arcade/ideaflow/internal/engine/repo/vote"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/pkg/cron"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
)

// ReconcileJobName is the cron entry name of the periodic repair.
const ReconcileJobName = "vote-drift-reconcile"

// VoteDrift is an idea whose cached count differs from the ledger.
type VoteDrift struct {
	IdeaID uint64 `json:"ideaId"`
	Cached int64  `json:"cached"`
	Actual int64  `json:"actual"`
}

// ReconcileResult 修复结果
type ReconcileResult struct {
	Drifted  int         `json:"drifted"`
	Repaired int         `json:"repaired"`
	Drift    []VoteDrift `json:"drift"`
}

// ReconcileService repairs cached vote counts from the vote ledger. It also
// handles deferred recount tasks. Repairs go through the same VoteCounter as
// vote propagation and recount inside it, so a repair never writes a count
// older than one already pushed.
type ReconcileService struct {
	ideas   idearepo.IIdeaRepository
	votes   voterepo.IVoteRepository
	store   ideastore.IdeaStore
	counter *VoteCounter
}

func NewReconcileService(ideas idearepo.IIdeaRepository, votes voterepo.IVoteRepository, store ideastore.IdeaStore, counter *VoteCounter) *ReconcileService {
	return &ReconcileService{ideas: ideas, votes: votes, store: store, counter: counter}
}

// Inspect compares every idea's cached count with the ledger.
func (s *ReconcileService) Inspect(ctx context.Context) ([]VoteDrift, error) {
	cached, err := s.ideas.ListVoteCounts(ctx)
	if err != nil {
		log.Errorw("list cached vote counts failed", "error", err)
		return nil, fmt.Errorf("list cached vote counts failed: %w", err)
	}
	actual, err := s.votes.CountAllByIdea(ctx)
	if err != nil {
		log.Errorw("count votes by idea failed", "error", err)
		return nil, fmt.Errorf("count votes by idea failed: %w", err)
	}

	drift := make([]VoteDrift, 0)
	for _, row := range cached {
		if n := actual[row.ID]; n != row.VoteCount {
			drift = append(drift, VoteDrift{IdeaID: row.ID, Cached: row.VoteCount, Actual: n})
		}
	}
	metrics.VoteDriftIdeas.Set(float64(len(drift)))
	return drift, nil
}

// Reconcile sets the ledger count on every drifting idea. A failed repair is
// logged and left for the next run.
func (s *ReconcileService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	drift, err := s.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	result := &ReconcileResult{Drifted: len(drift), Drift: drift}
	for i, d := range drift {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		total, err := s.counter.Sync(ctx, d.IdeaID, s.store.SetVoteCount)
		if err != nil {
			log.Warnw("repair vote count failed", "ideaId", d.IdeaID, "cached", d.Cached, "actual", d.Actual, "error", err)
			continue
		}
		result.Drift[i].Actual = total
		result.Repaired++
		metrics.VoteDriftRepairedTotal.Inc()
	}
	if result.Drifted > 0 {
		log.Infow("vote drift reconciled", "drifted", result.Drifted, "repaired", result.Repaired)
	}
	return result, nil
}

// RecountIdea repairs one idea. A deleted idea is not an error, the task is dropped.
func (s *ReconcileService) RecountIdea(ctx context.Context, ideaID uint64) error {
	total, err := s.counter.Sync(ctx, ideaID, s.store.SetVoteCount)
	if errors.Is(err, errLedgerUnread) {
		return fmt.Errorf("count votes of idea %d: %w", ideaID, err)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warnw("recount dropped, idea not found", "ideaId", ideaID)
			return nil
		}
		return fmt.Errorf("set vote count of idea %d: %w", ideaID, err)
	}
	log.Infow("idea vote count recounted", "ideaId", ideaID, "count", total)
	return nil
}

// Schedule registers the periodic reconcile job. Each run is bounded by timeout.
func (s *ReconcileService) Schedule(c *cron.Cron, spec string, timeout time.Duration) error {
	return c.AddFunc(ReconcileJobName, spec, func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		_, err := s.Reconcile(ctx)
		return err
	})
}
