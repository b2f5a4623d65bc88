// Package retry runs idempotent calls again after transient failures. It is
// a thin policy layer over cenkalti/backoff.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes one retry loop. Zero fields take the defaults of
// Do: three attempts, 100ms doubling up to 2s, no jitter.
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Max         time.Duration
	// FullJitter sleeps a random duration in [0, backoff) instead of backoff.
	FullJitter bool
	// RetryIf decides whether err is worth another attempt; nil retries
	// everything except context errors.
	RetryIf func(err error) bool
	// Notify runs before each sleep. attempt is the 1-based attempt that failed.
	Notify func(attempt int, err error, wait time.Duration)
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Base <= 0 {
		p.Base = 100 * time.Millisecond
	}
	if p.Max < p.Base {
		p.Max = max(p.Base, 2*time.Second)
	}
	if p.RetryIf == nil {
		p.RetryIf = IsRetryableError
	}
	return p
}

func (p Policy) backOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Base
	exp.MaxInterval = p.Max
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	if p.FullJitter {
		return &fullJitter{BackOff: exp}
	}
	return exp
}

// Permanent stops the loop at err. Do returns err itself, unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a non retryable error, runs out of
// attempts, or ctx ends. The error of the last attempt is returned; a
// context error only when fn never ran.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	p = p.withDefaults()
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		attempt int
		lastErr error
	)
	op := func() (struct{}, error) {
		attempt++
		err := fn(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		lastErr = err
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			lastErr = perm.Err
			return struct{}{}, err
		}
		if !p.RetryIf(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if p.Notify != nil {
				p.Notify(attempt, err, wait)
			}
		}),
	)
	if err != nil && lastErr != nil {
		return lastErr
	}
	return err
}

// IsRetryableError retries everything except cancellation and deadlines.
func IsRetryableError(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

type fullJitter struct {
	backoff.BackOff
}

func (j *fullJitter) NextBackOff() time.Duration {
	d := j.BackOff.NextBackOff()
	if d <= 0 {
		return d
	}
	return time.Duration(rand.Int64N(int64(d)))
}
