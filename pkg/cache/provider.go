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
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get for absent or expired keys in every tier.
var ErrCacheMiss = redis.Nil

// ICache is the subset of the redis command set the tiers share, so the
// local cache, redis and the hybrid of both are interchangeable.
type ICache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	// zero expiration keeps the key until evicted
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// defaultLocalMaxBytes is the default cache size (32MB)
const defaultLocalMaxBytes = 32 * 1024 * 1024

// Conf configures the local tier and the optional redis tier.
type Conf struct {
	LocalMaxBytes int    `mapstructure:"localMaxBytes"`
	KeyPrefix     string `mapstructure:"keyPrefix"`
	Redis         Redis  `mapstructure:"redis"`
}

// ProviderSet 提供缓存依赖（本地 FastCache + 可选 Redis）
var ProviderSet = wire.NewSet(ProvideRedisClient, ProvideCache)

// ProvideRedisClient opens the shared redis client, or returns nil when
// redis is not configured. The client also backs the task queue.
func ProvideRedisClient(conf Conf) (*redis.Client, func(), error) {
	if !conf.Redis.Enabled() {
		return nil, func() {}, nil
	}
	client, err := NewRedis(conf.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warnw("close redis failed", "error", err)
		}
	}
	return client, cleanup, nil
}

// ProvideCache returns a local cache, or a hybrid one when a redis client exists.
func ProvideCache(conf Conf, client *redis.Client) (ICache, func()) {
	maxBytes := conf.LocalMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	local := NewFastCache(FastCacheConfig{MaxBytes: maxBytes})
	cleanup := func() { local.Clear() }

	if client == nil {
		return local, cleanup
	}
	return NewHybridCache(local, NewRedisCache(client, conf.KeyPrefix), HybridCacheConfig{}), cleanup
}
