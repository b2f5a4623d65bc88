package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache stands in for redis in tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	gets atomic.Int32
	fail error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.gets.Add(1)
	cmd := redis.NewStringCmd(ctx, "get", key)
	if m.fail != nil {
		cmd.SetErr(m.fail)
		return cmd
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mapCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	b, err := toBytes(value)
	if err != nil {
		cmd.SetErr(err)
		return cmd
	}
	m.mu.Lock()
	m.data[key] = string(b)
	m.ttls[key] = expiration
	m.mu.Unlock()
	cmd.SetVal("OK")
	return cmd
}

func (m *mapCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestHybridCache_LocalHitSkipsRemote(t *testing.T) {
	remote := newMapCache()
	hc := NewHybridCache(newTestFastCache(nil), remote, HybridCacheConfig{})
	ctx := context.Background()

	require.NoError(t, hc.Set(ctx, "k", "v", time.Minute).Err())
	assert.Equal(t, time.Minute, remote.ttls["k"])

	v, err := hc.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, int32(0), remote.gets.Load())
}

func TestHybridCache_RemoteHitRefillsLocal(t *testing.T) {
	remote := newMapCache()
	remote.data["k"] = "from-remote"
	local := newTestFastCache(nil)
	hc := NewHybridCache(local, remote, HybridCacheConfig{LocalFillTTL: time.Minute})
	ctx := context.Background()

	v, err := hc.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "from-remote", v)

	v, err = local.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "from-remote", v)
}

func TestHybridCache_RemoteErrorIsReturned(t *testing.T) {
	remote := newMapCache()
	remote.fail = errors.New("connection refused")
	hc := NewHybridCache(newTestFastCache(nil), remote, HybridCacheConfig{})

	err := hc.Get(context.Background(), "k").Err()
	assert.EqualError(t, err, "connection refused")
}

func TestHybridCache_Del(t *testing.T) {
	remote := newMapCache()
	local := newTestFastCache(nil)
	hc := NewHybridCache(local, remote, HybridCacheConfig{})
	ctx := context.Background()

	hc.Set(ctx, "k", "v", time.Minute)
	assert.Equal(t, int64(1), hc.Del(ctx, "k").Val())
	assert.ErrorIs(t, local.Get(ctx, "k").Err(), ErrCacheMiss)
	assert.ErrorIs(t, hc.Get(ctx, "k").Err(), ErrCacheMiss)
}

type profile struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func TestCachedQuery_LoadsOnceThenHits(t *testing.T) {
	var loads atomic.Int32
	cq := NewCachedQuery(newTestFastCache(nil), func(ctx context.Context, key string) (profile, error) {
		loads.Add(1)
		return profile{ID: 7, Name: "Alice"}, nil
	}, WithKeyPrefix[profile]("user:"), WithTTL[profile](time.Minute))

	for i := 0; i < 3; i++ {
		p, err := cq.Get(context.Background(), "7")
		require.NoError(t, err)
		assert.Equal(t, "Alice", p.Name)
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestCachedQuery_ErrorsAreNotCached(t *testing.T) {
	var loads atomic.Int32
	boom := errors.New("directory down")
	cq := NewCachedQuery(newTestFastCache(nil), func(ctx context.Context, key string) (profile, error) {
		if loads.Add(1) == 1 {
			return profile{}, boom
		}
		return profile{ID: 1, Name: "Bob"}, nil
	})

	_, err := cq.Get(context.Background(), "1")
	assert.ErrorIs(t, err, boom)

	p, err := cq.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Name)
}

func TestCachedQuery_Invalidate(t *testing.T) {
	var loads atomic.Int32
	cq := NewCachedQuery(newTestFastCache(nil), func(ctx context.Context, key string) (string, error) {
		loads.Add(1)
		return "name", nil
	})
	ctx := context.Background()

	_, _ = cq.Get(ctx, "1")
	require.NoError(t, cq.Invalidate(ctx, "1"))
	_, _ = cq.Get(ctx, "1")
	assert.Equal(t, int32(2), loads.Load())
}

func TestCachedQuery_ConcurrentMissesShareLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	cq := NewCachedQuery(nil, func(ctx context.Context, key string) (int, error) {
		loads.Add(1)
		<-release
		return 42, nil
	})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cq.Get(context.Background(), "k")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 42, r)
	}
	assert.LessOrEqual(t, loads.Load(), int32(2))
}
