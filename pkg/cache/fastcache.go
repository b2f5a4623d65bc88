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
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// expiry header prepended to every stored value
const expiryHeaderLen = 8

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	MaxBytes int // Maximum bytes for fastcache, default 16MB
}

// FastCache is a bounded local cache on top of VictoriaMetrics fastcache.
// The expiry deadline is stored in front of each value, so memory stays
// within MaxBytes no matter how many keys are written; expired entries are
// dropped lazily on read and overwritten by the ring buffer eventually.
type FastCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

// NewFastCache creates a new FastCache instance
func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024 // default 16MB
	}

	return &FastCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

// Get returns the value for the given key
func (fc *FastCache) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)

	raw, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok || len(raw) < expiryHeaderLen {
		cmd.SetErr(ErrCacheMiss)
		return cmd
	}

	deadline := int64(binary.BigEndian.Uint64(raw[:expiryHeaderLen]))
	if deadline != 0 && fc.now().UnixNano() >= deadline {
		fc.cache.Del([]byte(key))
		cmd.SetErr(ErrCacheMiss)
		return cmd
	}

	cmd.SetVal(string(raw[expiryHeaderLen:]))
	return cmd
}

// Set sets the value for the given key with expiration
func (fc *FastCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)

	valueBytes, err := toBytes(value)
	if err != nil {
		cmd.SetErr(err)
		return cmd
	}

	var deadline int64
	if expiration > 0 {
		deadline = fc.now().Add(expiration).UnixNano()
	}

	buf := make([]byte, expiryHeaderLen+len(valueBytes))
	binary.BigEndian.PutUint64(buf[:expiryHeaderLen], uint64(deadline))
	copy(buf[expiryHeaderLen:], valueBytes)
	fc.cache.Set([]byte(key), buf)

	cmd.SetVal("OK")
	return cmd
}

// Del deletes the given keys
func (fc *FastCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")

	var count int64
	for _, key := range keys {
		if fc.cache.Has([]byte(key)) {
			fc.cache.Del([]byte(key))
			count++
		}
	}

	cmd.SetVal(count)
	return cmd
}

// Clear removes all items from the cache
func (fc *FastCache) Clear() {
	fc.cache.Reset()
}

// Stats returns cache statistics
func (fc *FastCache) Stats() fastcache.Stats {
	var stats fastcache.Stats
	fc.cache.UpdateStats(&stats)
	return stats
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return sonic.Marshal(v)
	}
}
