// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package actor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/google/wire"
)

// ErrStopped is returned by Do after Stop.
var ErrStopped = errors.New("actor system stopped")

const (
	defaultIdleTimeout = time.Minute
	defaultMailbox     = 64
)

// Conf 配置 per-idea actor
type Conf struct {
	IdleTimeout time.Duration `mapstructure:"idleTimeout"`
	Mailbox     int           `mapstructure:"mailbox"`
}

// System owns one mailbox goroutine per idea id. Work submitted for the
// same idea runs one at a time in submission order; different ideas run
// in parallel.
type System struct {
	mu          sync.Mutex
	actors      map[uint64]*ideaActor
	stopped     bool
	wg          sync.WaitGroup
	idleTimeout time.Duration
	mailbox     int
}

// ProviderSet 提供 actor system
var ProviderSet = wire.NewSet(ProvideSystem)

// ProvideSystem 提供 actor system，cleanup 时等待所有已接收的任务完成
func ProvideSystem(conf Conf) (*System, func()) {
	s := NewSystem(conf)
	return s, s.Stop
}

func NewSystem(conf Conf) *System {
	if conf.IdleTimeout <= 0 {
		conf.IdleTimeout = defaultIdleTimeout
	}
	if conf.Mailbox <= 0 {
		conf.Mailbox = defaultMailbox
	}
	return &System{
		actors:      make(map[uint64]*ideaActor),
		idleTimeout: conf.IdleTimeout,
		mailbox:     conf.Mailbox,
	}
}

// Do runs fn on the actor for key and waits for its result. If ctx ends
// before fn is accepted, fn never runs. Once accepted, fn runs to
// completion with ctx even if the caller stops waiting.
func (s *System) Do(ctx context.Context, key uint64, fn func(ctx context.Context) error) error {
	a, err := s.acquire(key)
	if err != nil {
		return err
	}

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case a.mailbox <- j:
	case <-ctx.Done():
		s.mu.Lock()
		a.pending--
		s.mu.Unlock()
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of live actors.
func (s *System) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actors)
}

// Stop rejects new work and waits for accepted work to finish.
func (s *System) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, a := range s.actors {
		close(a.quit)
		delete(s.actors, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *System) acquire(key uint64) (*ideaActor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}
	a, ok := s.actors[key]
	if !ok {
		a = &ideaActor{
			key:     key,
			mailbox: make(chan job, s.mailbox),
			quit:    make(chan struct{}),
		}
		s.actors[key] = a
		s.wg.Add(1)
		metrics.IdeaActorsActive.Inc()
		go s.loop(a)
	}
	a.pending++
	return a, nil
}
