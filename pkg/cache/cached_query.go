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

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ideaflow/pkg/log"
	"golang.org/x/sync/singleflight"
)

// LoadFunc loads the value for key from the source of truth.
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// CachedQuery is a cache-aside loader. Concurrent misses for the same key
// share one load.
type CachedQuery[T any] struct {
	cache  ICache
	load   LoadFunc[T]
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

// CachedQueryOption configures CachedQuery behavior
type CachedQueryOption[T any] func(*CachedQuery[T])

// WithTTL sets the cache expiration time
func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

// WithKeyPrefix namespaces cache keys
func WithKeyPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.prefix = prefix
	}
}

// NewCachedQuery creates a new CachedQuery instance
func NewCachedQuery[T any](cache ICache, load LoadFunc[T], opts ...CachedQueryOption[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache: cache,
		load:  load,
		ttl:   5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cq)
	}

	return cq
}

// Get returns the cached value or loads and caches it. Load errors are
// returned unchanged and never cached.
func (cq *CachedQuery[T]) Get(ctx context.Context, key string) (T, error) {
	cacheKey := cq.prefix + key

	if cq.cache != nil {
		data, err := cq.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var result T
			if err := sonic.UnmarshalString(data, &result); err == nil {
				return result, nil
			}
			log.Warnw("failed to unmarshal cached data", "key", cacheKey, "error", err)
		} else if !errors.Is(err, ErrCacheMiss) {
			log.Warnw("cache get failed", "key", cacheKey, "error", err)
		}
	}

	v, err, _ := cq.group.Do(cacheKey, func() (any, error) {
		result, err := cq.load(ctx, key)
		if err != nil {
			return result, err
		}
		cq.store(ctx, cacheKey, result)
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (cq *CachedQuery[T]) store(ctx context.Context, cacheKey string, result T) {
	if cq.cache == nil {
		return
	}
	data, err := sonic.MarshalString(result)
	if err != nil {
		log.Warnw("failed to marshal result for caching", "key", cacheKey, "error", err)
		return
	}
	if err := cq.cache.Set(ctx, cacheKey, data, cq.ttl).Err(); err != nil {
		log.Warnw("failed to cache result", "key", cacheKey, "error", err)
	}
}

// Invalidate removes the cached data
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, key string) error {
	if cq.cache == nil {
		return nil
	}
	return cq.cache.Del(ctx, cq.prefix+key).Err()
}
