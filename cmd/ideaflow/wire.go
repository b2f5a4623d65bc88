//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/ideaflow/internal/engine/bootstrap"
	"github.com/go-arcade/ideaflow/internal/engine/config"
	"github.com/go-arcade/ideaflow/internal/engine/repo"
	"github.com/go-arcade/ideaflow/internal/engine/router"
	"github.com/go-arcade/ideaflow/internal/engine/service"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/internal/pkg/queue"
	"github.com/go-arcade/ideaflow/pkg/cache"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/shutdown"
	"github.com/go-arcade/ideaflow/pkg/trace"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		log.ProviderSet,
		trace.ProviderSet,
		// 存储层
		database.ProviderSet,
		cache.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 基础设施
		actor.ProviderSet,
		directory.ProviderSet,
		notify.ProviderSet,
		queue.ProviderSet,
		metrics.ProviderSet,
		shutdown.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		http.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}

func initDB(configPath string) (database.DB, func(), error) {
	panic(wire.Build(
		config.ProvideConf,
		config.ProvideLogConfig,
		config.ProvideDatabaseConfig,
		log.ProviderSet,
		database.ProviderSet,
	))
}
