package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFunc(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"every", "@every 5m", false},
		{"hourly", "@hourly", false},
		{"six fields", "0 */5 * * * *", false},
		{"garbage", "not a spec", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithLocation(time.UTC))
			err := c.AddFunc(tt.name, tt.spec, func(context.Context) error { return nil })
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAddFunc_DuplicateName(t *testing.T) {
	c := New()
	noop := func(context.Context) error { return nil }
	require.NoError(t, c.AddFunc("reconcile", "@every 1m", noop))
	assert.ErrorIs(t, c.AddFunc("reconcile", "@every 2m", noop), ErrDuplicateName)
}

func TestStartRunsJobs(t *testing.T) {
	c := New()
	var runs atomic.Int32
	require.NoError(t, c.AddFunc("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	c.Start()
	c.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	c.Stop()
	c.Stop()

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "tick", entries[0].Name)
	assert.Equal(t, "@every 1s", entries[0].Spec)
}

func TestRun_ErrorsAndPanicsAreContained(t *testing.T) {
	c := New()
	require.NoError(t, c.AddFunc("fails", "@hourly", func(context.Context) error { return errors.New("db down") }))
	require.NoError(t, c.AddFunc("panics", "@hourly", func(context.Context) error { panic("boom") }))

	assert.NoError(t, c.Run("fails"))
	assert.NotPanics(t, func() { _ = c.Run("panics") })
	assert.Error(t, c.Run("absent"))
}

func TestStopCancelsRunningJob(t *testing.T) {
	c := New()
	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, c.AddFunc("long", "@every 1s", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}))

	c.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}
	c.Stop()
	assert.True(t, cancelled.Load())
}

func TestRun_SkipsOverlap(t *testing.T) {
	c := New()
	release := make(chan struct{})
	var runs atomic.Int32
	require.NoError(t, c.AddFunc("slow", "@hourly", func(context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}))

	done := make(chan struct{})
	go func() {
		_ = c.Run("slow")
		close(done)
	}()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// second trigger while the first is busy is dropped
	require.NoError(t, c.Run("slow"))
	close(release)
	<-done
	assert.Equal(t, int32(1), runs.Load())
}
