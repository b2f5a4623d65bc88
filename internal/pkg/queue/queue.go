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
	"time"
)

// 任务类型常量
const (
	TaskTypeVoteRecount = "vote:recount"
)

// 队列名称常量
const (
	Critical = "critical" // 关键队列（优先级最高）
	Default  = "default"  // 默认队列
	Low      = "low"      // 低优先级队列
)

// Conf 任务队列配置
type Conf struct {
	Concurrency     int            `mapstructure:"concurrency"`     // 并发处理数
	StrictPriority  bool           `mapstructure:"strictPriority"`  // 是否严格优先级
	Priority        map[string]int `mapstructure:"priority"`        // 队列名 -> 优先级权重
	LogLevel        string         `mapstructure:"logLevel"`        // debug, info, warn, error
	ShutdownTimeout int            `mapstructure:"shutdownTimeout"` // 关闭超时时间（秒）
	MaxRetry        int            `mapstructure:"maxRetry"`        // recount 最大重试次数
	// RecountDelay 给 idea store 一点恢复时间再重算, e.g. "5s"
	RecountDelay time.Duration `mapstructure:"recountDelay"`
	// Buffer 仅 memory 队列使用
	Buffer int `mapstructure:"buffer"`
}

// SetDefaults fills zero values
func (c *Conf) SetDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if len(c.Priority) == 0 {
		c.Priority = map[string]int{
			Critical: 6,
			Default:  3,
			Low:      1,
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 10
	}
	if c.RecountDelay <= 0 {
		c.RecountDelay = 5 * time.Second
	}
	if c.Buffer <= 0 {
		c.Buffer = 1024
	}
}

// RecountPayload 重算任务负载
type RecountPayload struct {
	IdeaID     uint64    `json:"idea_id"`
	Reason     string    `json:"reason"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// RecountHandler repairs the cached vote count of one idea.
type RecountHandler interface {
	RecountIdea(ctx context.Context, ideaID uint64) error
}

// RecountHandlerFunc 任务处理器函数类型
type RecountHandlerFunc func(ctx context.Context, ideaID uint64) error

func (f RecountHandlerFunc) RecountIdea(ctx context.Context, ideaID uint64) error {
	return f(ctx, ideaID)
}

// Enqueuer schedules a deferred recount. At most one recount per idea is
// pending at a time; enqueueing a pending idea again is a no-op.
type Enqueuer interface {
	EnqueueRecount(ctx context.Context, ideaID uint64, reason string) error
}

// Queue is an Enqueuer that can also process its tasks.
type Queue interface {
	Enqueuer
	// Run processes tasks with h until ctx is done.
	Run(ctx context.Context, h RecountHandler) error
	Close() error
}
