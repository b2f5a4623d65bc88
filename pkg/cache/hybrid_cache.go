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

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/redis/go-redis/v9"
)

// HybridCacheConfig holds hybrid cache configuration
type HybridCacheConfig struct {
	LocalTTLRatio float64       // Ratio of remote TTL for local cache (0.0-1.0)
	LocalFillTTL  time.Duration // local TTL for values pulled from the remote tier
}

// HybridCache combines local cache (fastcache) and remote cache (Redis).
// Reads try local first, then remote; a remote hit refills local.
type HybridCache struct {
	local  *FastCache
	remote ICache
	config HybridCacheConfig
}

// NewHybridCache creates a new HybridCache instance
func NewHybridCache(local *FastCache, remote ICache, config HybridCacheConfig) *HybridCache {
	if config.LocalTTLRatio <= 0 || config.LocalTTLRatio > 1 {
		config.LocalTTLRatio = 0.8
	}
	if config.LocalFillTTL <= 0 {
		config.LocalFillTTL = 30 * time.Second
	}
	return &HybridCache{
		local:  local,
		remote: remote,
		config: config,
	}
}

func (hc *HybridCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if cmd := hc.local.Get(ctx, key); cmd.Err() == nil {
		return cmd
	}
	if hc.remote == nil {
		return hc.local.Get(ctx, key)
	}

	cmd := hc.remote.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Warnw("remote cache get failed", "key", key, "error", err)
		}
		return cmd
	}

	hc.local.Set(ctx, key, cmd.Val(), hc.config.LocalFillTTL)
	return cmd
}

func (hc *HybridCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	localTTL := time.Duration(float64(expiration) * hc.config.LocalTTLRatio)
	cmd := hc.local.Set(ctx, key, value, localTTL)
	if cmd.Err() != nil || hc.remote == nil {
		return cmd
	}

	remoteCmd := hc.remote.Set(ctx, key, value, expiration)
	if err := remoteCmd.Err(); err != nil {
		log.Warnw("remote cache set failed", "key", key, "error", err)
	}
	return remoteCmd
}

func (hc *HybridCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := hc.local.Del(ctx, keys...)
	if hc.remote == nil {
		return cmd
	}
	return hc.remote.Del(ctx, keys...)
}
