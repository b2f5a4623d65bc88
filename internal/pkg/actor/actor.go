package actor

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/safe"
)

var errPanicked = errors.New("actor task panicked")

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// ideaActor serialises every mutation of one idea on its own goroutine.
// pending is guarded by System.mu.
type ideaActor struct {
	key     uint64
	mailbox chan job
	quit    chan struct{}
	pending int
}

func (s *System) loop(a *ideaActor) {
	defer s.wg.Done()
	defer metrics.IdeaActorsActive.Dec()

	idle := time.NewTimer(s.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case j := <-a.mailbox:
			s.run(a, j)
			resetTimer(idle, s.idleTimeout)

		case <-idle.C:
			if s.reap(a) {
				log.Debugw("idea actor reaped", "ideaId", a.key)
				return
			}
			idle.Reset(s.idleTimeout)

		case <-a.quit:
			s.drain(a)
			return
		}
	}
}

func (s *System) run(a *ideaActor, j job) {
	err := safe.DoErr(func() error { return j.fn(j.ctx) }, errPanicked)
	j.done <- err

	s.mu.Lock()
	a.pending--
	s.mu.Unlock()
}

// reap removes the actor when nobody is waiting on it.
func (s *System) reap(a *ideaActor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.pending > 0 || len(a.mailbox) > 0 {
		return false
	}
	delete(s.actors, a.key)
	return true
}

// drain finishes the jobs already accepted before Stop.
func (s *System) drain(a *ideaActor) {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		s.mu.Lock()
		remaining := a.pending
		s.mu.Unlock()
		if remaining == 0 {
			return
		}
		select {
		case j := <-a.mailbox:
			s.run(a, j)
		case <-tick.C:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
