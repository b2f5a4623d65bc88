package ideastore

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/retry"
)

// PushConf tunes the vote count push retry.
type PushConf struct {
	MaxAttempts int           `mapstructure:"maxAttempts"`
	BaseBackoff time.Duration `mapstructure:"baseBackoff"`
	MaxBackoff  time.Duration `mapstructure:"maxBackoff"`
}

func (c *PushConf) SetDefaults() *PushConf {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	return c
}

// Pusher sets vote counts on the idea store with bounded retries. A missing
// idea is never retried.
type Pusher struct {
	store IdeaStore
	conf  PushConf
}

func NewPusher(store IdeaStore, conf PushConf) *Pusher {
	conf.SetDefaults()
	return &Pusher{store: store, conf: conf}
}

// Push returns the last error once retries are exhausted.
func (p *Pusher) Push(ctx context.Context, ideaID uint64, count int64) error {
	retried := false
	policy := retry.Policy{
		MaxAttempts: p.conf.MaxAttempts,
		Base:        p.conf.BaseBackoff,
		Max:         p.conf.MaxBackoff,
		FullJitter:  true,
		RetryIf: func(err error) bool {
			return !errors.Is(err, ErrNotFound) && retry.IsRetryableError(err)
		},
		Notify: func(attempt int, err error, wait time.Duration) {
			retried = true
			log.Warnw("retry vote count push", "ideaId", ideaID, "attempt", attempt, "wait", wait, "error", err)
		},
	}
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		return p.store.SetVoteCount(ctx, ideaID, count)
	})

	switch {
	case err == nil && retried:
		metrics.VoteCountPushTotal.WithLabelValues("retried").Inc()
	case err == nil:
		metrics.VoteCountPushTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.VoteCountPushTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.VoteCountPushTotal.WithLabelValues("exhausted").Inc()
	}
	return err
}
