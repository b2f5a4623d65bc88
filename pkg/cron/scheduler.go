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

package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/safe"
	"github.com/robfig/cron"
)

var (
	ErrDuplicateName = errors.New("cron job name already registered")
	errJobPanicked   = errors.New("cron job panicked")
)

// JobFunc runs one tick. ctx is cancelled when the scheduler stops.
type JobFunc func(ctx context.Context) error

// Entry is a snapshot of a scheduled job
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

type OpOption func(*Cron)

// WithLocation sets the time zone specs are evaluated in
func WithLocation(loc *time.Location) OpOption {
	return func(c *Cron) {
		c.location = loc
	}
}

// Cron wraps robfig/cron with named jobs, cancellation and metrics.
// A job never overlaps itself: a tick that fires while the previous run
// of the same job is still busy is skipped.
type Cron struct {
	mu       sync.Mutex
	location *time.Location
	inner    *cron.Cron
	jobs     map[string]*namedJob
	running  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts ...OpOption) *Cron {
	c := &Cron{
		location: time.Local,
		jobs:     make(map[string]*namedJob),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.inner = cron.NewWithLocation(c.location)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

type namedJob struct {
	owner *Cron
	name  string
	spec  string
	fn    JobFunc
	busy  sync.Mutex
}

func (j *namedJob) Run() {
	if !j.busy.TryLock() {
		log.Warnw("cron job still running, tick skipped", "job", j.name)
		return
	}
	defer j.busy.Unlock()

	j.owner.wg.Add(1)
	defer j.owner.wg.Done()

	start := time.Now()
	err := safe.DoErr(func() error { return j.fn(j.owner.ctx) }, errJobPanicked)
	duration := time.Since(start)
	metrics.ObserveJobRun(j.name, duration, err)
	if err != nil {
		log.Errorw("cron job failed", "job", j.name, "duration", duration, "error", err)
	} else {
		log.Debugw("cron job finished", "job", j.name, "duration", duration)
	}
	j.owner.refreshNextRun()
}

// AddFunc schedules fn under a unique name. spec accepts the robfig/cron
// syntax, including descriptors such as "@every 5m" and "@hourly".
func (c *Cron) AddFunc(name, spec string, fn JobFunc) error {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	job := &namedJob{owner: c, name: name, spec: spec, fn: fn}
	c.jobs[name] = job
	c.inner.Schedule(schedule, job)

	metrics.JobsRegistered.Set(float64(len(c.jobs)))
	log.Infow("cron job registered", "job", name, "spec", spec)
	return nil
}

// Start runs the scheduler in its own goroutine
func (c *Cron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.inner.Start()
	c.refreshNextRunLocked()
}

// Stop halts scheduling, cancels running jobs and waits for them.
func (c *Cron) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.inner.Stop()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Run triggers a job immediately, outside its schedule.
func (c *Cron) Run(name string) error {
	c.mu.Lock()
	job, ok := c.jobs[name]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("cron job %s not found", name)
	}
	job.Run()
	return nil
}

// Entries returns the jobs ordered by next run time
func (c *Cron) Entries() []Entry {
	var out []Entry
	for _, e := range c.inner.Entries() {
		job, ok := e.Job.(*namedJob)
		if !ok {
			continue
		}
		out = append(out, Entry{Name: job.name, Spec: job.spec, Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].Name < out[j].Name
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

func (c *Cron) refreshNextRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshNextRunLocked()
}

func (c *Cron) refreshNextRunLocked() {
	if !c.running {
		return
	}
	for _, e := range c.inner.Entries() {
		if job, ok := e.Job.(*namedJob); ok && !e.Next.IsZero() {
			metrics.SetJobNextRun(job.name, e.Next)
		}
	}
}
