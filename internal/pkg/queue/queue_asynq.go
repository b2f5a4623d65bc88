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
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// AsynqQueue 基于 asynq 的分布式任务队列
type AsynqQueue struct {
	client   *asynq.Client
	conf     Conf
	redisOpt asynq.RedisConnOpt // 保存 Redis 连接选项，用于创建 Server 和 Inspector
}

// NewAsynqQueue 创建任务队列，复用已有的 Redis 客户端
func NewAsynqQueue(conf Conf, redisClient redis.UniversalClient) (*AsynqQueue, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	conf.SetDefaults()

	redisOpt := &redisConnOptWrapper{client: redisClient}
	q := &AsynqQueue{
		client:   asynq.NewClient(redisOpt),
		conf:     conf,
		redisOpt: redisOpt,
	}

	log.Infow("asynq task queue created",
		"concurrency", conf.Concurrency,
		"queues", conf.Priority,
	)
	return q, nil
}

// EnqueueRecount 入队 recount 任务；同一 idea 的任务以 task id 去重
func (q *AsynqQueue) EnqueueRecount(ctx context.Context, ideaID uint64, reason string) error {
	data, err := sonic.Marshal(&RecountPayload{IdeaID: ideaID, Reason: reason, EnqueuedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeVoteRecount, data)
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(Critical),
		asynq.TaskID(recountTaskID(ideaID)),
		asynq.MaxRetry(q.conf.MaxRetry),
		asynq.ProcessIn(q.conf.RecountDelay),
		asynq.Timeout(30*time.Second),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		log.Debugw("recount already pending", "ideaId", ideaID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	log.Infow("task enqueued",
		"task_type", TaskTypeVoteRecount,
		"ideaId", ideaID,
		"reason", reason,
		"task_id", info.ID,
	)
	return nil
}

// Run 启动 asynq worker，ctx 结束后优雅关闭
func (q *AsynqQueue) Run(ctx context.Context, h RecountHandler) error {
	var logLevel asynq.LogLevel
	if err := logLevel.Set(q.conf.LogLevel); err != nil {
		log.Warnw("invalid log level, using default info", "logLevel", q.conf.LogLevel, "error", err)
		logLevel = asynq.InfoLevel
	}

	server := asynq.NewServer(q.redisOpt, asynq.Config{
		Concurrency:     q.conf.Concurrency,
		StrictPriority:  q.conf.StrictPriority,
		Queues:          q.conf.Priority,
		Logger:          newAsynqLogger(),
		LogLevel:        logLevel,
		RetryDelayFunc:  asynq.DefaultRetryDelayFunc,
		ShutdownTimeout: time.Duration(q.conf.ShutdownTimeout) * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeVoteRecount, recountTaskHandler(h))

	if err := server.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	log.Info("asynq worker started")

	<-ctx.Done()
	log.Info("shutting down asynq worker")
	server.Shutdown()
	return nil
}

// Inspector 获取 asynq Inspector（用于队列指标）
func (q *AsynqQueue) Inspector() *asynq.Inspector {
	return asynq.NewInspector(q.redisOpt)
}

// Close 关闭队列客户端
func (q *AsynqQueue) Close() error {
	return q.client.Close()
}

// recountTaskHandler decodes the payload and runs h. A payload that can not
// be decoded will never succeed, so it skips retries.
func recountTaskHandler(h RecountHandler) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RecountPayload
		if err := sonic.Unmarshal(t.Payload(), &payload); err != nil {
			log.Errorw("bad recount payload", "error", err)
			return fmt.Errorf("unmarshal task payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.IdeaID == 0 {
			return fmt.Errorf("recount payload without idea id: %w", asynq.SkipRetry)
		}

		if err := h.RecountIdea(ctx, payload.IdeaID); err != nil {
			log.Errorw("task execution failed",
				"task_type", TaskTypeVoteRecount,
				"ideaId", payload.IdeaID,
				"error", err,
			)
			return err
		}

		log.Infow("task execution completed",
			"task_type", TaskTypeVoteRecount,
			"ideaId", payload.IdeaID,
			"waited", time.Since(payload.EnqueuedAt).String(),
		)
		return nil
	}
}

func recountTaskID(ideaID uint64) string {
	return fmt.Sprintf("%s:%d", TaskTypeVoteRecount, ideaID)
}

// redisConnOptWrapper 包装已有的 Redis 客户端实现 RedisConnOpt 接口
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

// MakeRedisClient 实现 RedisConnOpt 接口
func (r *redisConnOptWrapper) MakeRedisClient() interface{} {
	return r.client
}
