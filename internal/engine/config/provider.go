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

package config

import (
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/internal/pkg/queue"
	"github.com/go-arcade/ideaflow/pkg/cache"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/trace"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideCacheConfig,
	ProvideQueueConfig,
	ProvideNotifyConfig,
	ProvideDirectoryConfig,
	ProvideIdeaStoreConfig,
	ProvideActorConfig,
	ProvideMetricsConfig,
	ProvideTraceConfig,
	ProvideReconcileConfig,
)

// ProvideConf 提供应用配置
func ProvideConf(configPath string) *AppConfig {
	conf := NewConf(configPath)
	return &conf
}

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	httpConfig := &appConf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	if appConf.Log == (log.Conf{}) {
		return log.SetDefaults()
	}
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

// ProvideCacheConfig 提供缓存配置（含 Redis）
func ProvideCacheConfig(appConf *AppConfig) cache.Conf {
	return appConf.Cache
}

// ProvideQueueConfig 提供延迟重算队列配置
func ProvideQueueConfig(appConf *AppConfig) queue.Conf {
	queueConfig := appConf.Queue
	queueConfig.SetDefaults()
	return queueConfig
}

// ProvideNotifyConfig 提供通知通道配置
func ProvideNotifyConfig(appConf *AppConfig) notify.Conf {
	notifyConfig := appConf.Notify
	notifyConfig.SetDefaults()
	return notifyConfig
}

func ProvideDirectoryConfig(appConf *AppConfig) directory.Conf {
	return appConf.Directory
}

func ProvideIdeaStoreConfig(appConf *AppConfig) ideastore.Conf {
	return appConf.IdeaStore
}

func ProvideActorConfig(appConf *AppConfig) actor.Conf {
	return appConf.Actor
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	metricsConfig := appConf.Metrics
	metricsConfig.SetDefaults()
	return metricsConfig
}

// ProvideTraceConfig 提供链路追踪配置
func ProvideTraceConfig(appConf *AppConfig) trace.Conf {
	return appConf.Trace
}

func ProvideReconcileConfig(appConf *AppConfig) ReconcileConfig {
	reconcileConfig := appConf.Reconcile
	reconcileConfig.SetDefaults()
	return reconcileConfig
}
