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

package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConf() Conf {
	return Conf{Concurrency: 2, MaxRetry: 3, RecountDelay: time.Millisecond, Buffer: 4}
}

func TestConf_SetDefaults(t *testing.T) {
	var c Conf
	c.SetDefaults()

	assert.Equal(t, 4, c.Concurrency)
	assert.Equal(t, map[string]int{Critical: 6, Default: 3, Low: 1}, c.Priority)
	assert.Equal(t, 5*time.Second, c.RecountDelay)
	assert.Equal(t, 10, c.MaxRetry)
}

func TestMemoryQueue_ProcessesTask(t *testing.T) {
	q := NewMemoryQueue(testConf())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan uint64, 1)
	go q.Run(ctx, RecountHandlerFunc(func(ctx context.Context, ideaID uint64) error {
		done <- ideaID
		return nil
	}))

	require.NoError(t, q.EnqueueRecount(ctx, 7, "push exhausted"))

	select {
	case id := <-done:
		assert.Equal(t, uint64(7), id)
	case <-time.After(2 * time.Second):
		t.Fatal("recount not processed")
	}
}

func TestMemoryQueue_RetriesUntilSuccess(t *testing.T) {
	q := NewMemoryQueue(testConf())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan struct{})
	go q.Run(ctx, RecountHandlerFunc(func(ctx context.Context, ideaID uint64) error {
		if calls.Add(1) < 3 {
			return errors.New("idea store down")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.EnqueueRecount(ctx, 1, "test"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recount did not succeed")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestMemoryQueue_DeduplicatesPendingIdea(t *testing.T) {
	q := NewMemoryQueue(testConf())
	ctx := context.Background()

	require.NoError(t, q.EnqueueRecount(ctx, 1, "a"))
	require.NoError(t, q.EnqueueRecount(ctx, 1, "b"))
	assert.Len(t, q.tasks, 1)

	require.NoError(t, q.EnqueueRecount(ctx, 2, "c"))
	require.NoError(t, q.EnqueueRecount(ctx, 3, "d"))
	require.NoError(t, q.EnqueueRecount(ctx, 4, "e"))
	assert.ErrorIs(t, q.EnqueueRecount(ctx, 5, "f"), ErrQueueFull)
}

func TestMemoryQueue_PanicIsRetried(t *testing.T) {
	q := NewMemoryQueue(testConf())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	done := make(chan struct{})
	var calls atomic.Int32
	go q.Run(ctx, RecountHandlerFunc(func(ctx context.Context, ideaID uint64) error {
		if calls.Add(1) == 1 {
			panic("nil repo")
		}
		once.Do(func() { close(done) })
		return nil
	}))

	require.NoError(t, q.EnqueueRecount(ctx, 9, "test"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recount not retried after panic")
	}
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(testConf())
	require.NoError(t, q.Close())
	assert.Error(t, q.EnqueueRecount(context.Background(), 1, "late"))
}

func TestRecountTaskHandler(t *testing.T) {
	var got uint64
	h := recountTaskHandler(RecountHandlerFunc(func(ctx context.Context, ideaID uint64) error {
		got = ideaID
		if ideaID == 13 {
			return errors.New("still down")
		}
		return nil
	}))

	encode := func(p RecountPayload) []byte {
		b, err := sonic.Marshal(&p)
		require.NoError(t, err)
		return b
	}

	ctx := context.Background()
	require.NoError(t, h(ctx, asynq.NewTask(TaskTypeVoteRecount, encode(RecountPayload{IdeaID: 42}))))
	assert.Equal(t, uint64(42), got)

	err := h(ctx, asynq.NewTask(TaskTypeVoteRecount, encode(RecountPayload{IdeaID: 13})))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))

	err = h(ctx, asynq.NewTask(TaskTypeVoteRecount, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h(ctx, asynq.NewTask(TaskTypeVoteRecount, encode(RecountPayload{})))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRecountTaskID(t *testing.T) {
	assert.Equal(t, "vote:recount:5", recountTaskID(5))
}
