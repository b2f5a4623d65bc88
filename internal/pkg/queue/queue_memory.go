package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/safe"
)

// ErrQueueFull is returned when the in-process buffer is exhausted.
var ErrQueueFull = errors.New("recount queue is full")

var errRecountPanicked = errors.New("recount handler panicked")

// MemoryQueue is the in-process queue used when redis is not configured.
// Tasks do not survive a restart; the reconcile job covers that gap.
type MemoryQueue struct {
	conf    Conf
	tasks   chan RecountPayload
	mu      sync.Mutex
	pending map[uint64]struct{}
	closed  bool
}

func NewMemoryQueue(conf Conf) *MemoryQueue {
	conf.SetDefaults()
	return &MemoryQueue{
		conf:    conf,
		tasks:   make(chan RecountPayload, conf.Buffer),
		pending: make(map[uint64]struct{}),
	}
}

func (q *MemoryQueue) EnqueueRecount(ctx context.Context, ideaID uint64, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("recount queue is closed")
	}
	if _, ok := q.pending[ideaID]; ok {
		return nil
	}
	select {
	case q.tasks <- RecountPayload{IdeaID: ideaID, Reason: reason, EnqueuedAt: time.Now()}:
		q.pending[ideaID] = struct{}{}
		log.Infow("task enqueued", "task_type", TaskTypeVoteRecount, "ideaId", ideaID, "reason", reason)
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes tasks on Concurrency workers until ctx is done.
func (q *MemoryQueue) Run(ctx context.Context, h RecountHandler) error {
	var wg sync.WaitGroup
	for i := 0; i < q.conf.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case p := <-q.tasks:
					q.process(ctx, h, p)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

func (q *MemoryQueue) process(ctx context.Context, h RecountHandler, p RecountPayload) {
	defer q.done(p.IdeaID)

	delay := q.conf.RecountDelay
	for attempt := 0; attempt <= q.conf.MaxRetry; attempt++ {
		if !sleepCtx(ctx, delay) {
			return
		}
		err := safe.DoErr(func() error { return h.RecountIdea(ctx, p.IdeaID) }, errRecountPanicked)
		if err == nil {
			log.Infow("task execution completed", "task_type", TaskTypeVoteRecount, "ideaId", p.IdeaID)
			return
		}
		log.Errorw("task execution failed", "task_type", TaskTypeVoteRecount, "ideaId", p.IdeaID, "attempt", attempt, "error", err)
		delay *= 2
	}
	log.Errorw("recount task dropped after max retries", "ideaId", p.IdeaID)
}

func (q *MemoryQueue) done(ideaID uint64) {
	q.mu.Lock()
	delete(q.pending, ideaID)
	q.mu.Unlock()
}

// Close rejects further tasks.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
