package directory

import (
	"context"
	"strconv"
	"time"

	"github.com/go-arcade/ideaflow/pkg/cache"
	"github.com/go-arcade/ideaflow/pkg/metrics"
)

const defaultNameCacheTTL = 10 * time.Minute

// NameResolver returns display names, consulting a bounded TTL cache before
// the directory.
type NameResolver struct {
	query *cache.CachedQuery[string]
}

func NewNameResolver(dir Directory, c cache.ICache, ttl time.Duration) *NameResolver {
	if ttl <= 0 {
		ttl = defaultNameCacheTTL
	}
	load := func(ctx context.Context, key string) (string, error) {
		userID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return "", err
		}
		user, err := dir.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return user.DisplayName, nil
	}
	return &NameResolver{
		query: cache.NewCachedQuery(c, load,
			cache.WithKeyPrefix[string]("ideaflow:user:name:"),
			cache.WithTTL[string](ttl),
		),
	}
}

// DisplayName returns the cached or freshly loaded name of userID.
func (r *NameResolver) DisplayName(ctx context.Context, userID uint64) (string, error) {
	name, err := r.query.Get(ctx, strconv.FormatUint(userID, 10))
	if err == nil {
		metrics.DirectoryLookupTotal.WithLabelValues("resolved").Inc()
	}
	return name, err
}

// Forget drops a cached name, e.g. after a profile change.
func (r *NameResolver) Forget(ctx context.Context, userID uint64) error {
	return r.query.Invalidate(ctx, strconv.FormatUint(userID, 10))
}
