package queue

import (
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供 queue 相关的依赖
var ProviderSet = wire.NewSet(
	ProvideQueue,
	wire.Bind(new(Enqueuer), new(Queue)),
)

// ProvideQueue returns an asynq queue when redis is available, otherwise an
// in-process queue.
func ProvideQueue(conf Conf, redisClient *redis.Client) (Queue, func(), error) {
	var q Queue
	if redisClient != nil {
		aq, err := NewAsynqQueue(conf, redisClient)
		if err != nil {
			return nil, nil, err
		}
		q = aq
	} else {
		log.Warn("redis is not configured, deferred recounts run in-process")
		q = NewMemoryQueue(conf)
	}
	cleanup := func() {
		if err := q.Close(); err != nil {
			log.Warnw("failed to close queue client", "error", err)
		}
	}
	return q, cleanup, nil
}
