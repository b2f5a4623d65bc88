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

package bootstrap

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/ideaflow/internal/engine/config"
	"github.com/go-arcade/ideaflow/internal/engine/service"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/internal/pkg/queue"
	"github.com/go-arcade/ideaflow/pkg/cron"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/shutdown"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const queueMetricsInterval = 15 * time.Second

type App struct {
	Conf      *config.AppConfig
	Logger    *log.Logger
	Tracing   oteltrace.TracerProvider
	Http      *http.Server
	Queue     queue.Queue
	Consumer  *notify.Consumer
	Services  *service.Services
	Metrics   *metrics.Server
	Cron      *cron.Cron
	Lifecycle *shutdown.Manager

	queueMetrics *metrics.AsynqMetricsCollector
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	conf *config.AppConfig,
	reconcile config.ReconcileConfig,
	logger *log.Logger,
	tracing oteltrace.TracerProvider,
	httpServer *http.Server,
	q queue.Queue,
	consumer *notify.Consumer,
	services *service.Services,
	metricsServer *metrics.Server,
	lifecycle *shutdown.Manager,
) (*App, func(), error) {
	app := &App{
		Conf:      conf,
		Logger:    logger,
		Tracing:   tracing,
		Http:      httpServer,
		Queue:     q,
		Consumer:  consumer,
		Services:  services,
		Metrics:   metricsServer,
		Cron:      cron.New(),
		Lifecycle: lifecycle,
	}

	// asynq 队列积压指标，仅 redis 模式下可用
	if aq, ok := q.(*queue.AsynqQueue); ok {
		app.queueMetrics = metrics.NewAsynqMetricsCollector(aq.Inspector(), queue.Critical, queue.Default, queue.Low)
		if err := metricsServer.RegisterCollector(app.queueMetrics.Collector()); err != nil {
			return nil, nil, err
		}
	}

	if reconcile.Enabled {
		if err := services.Reconcile.Schedule(app.Cron, reconcile.Spec, reconcile.Timeout); err != nil {
			return nil, nil, err
		}
		log.Infow("vote drift reconcile scheduled", "spec", reconcile.Spec, "timeout", reconcile.Timeout)
	}

	cleanup := func() {
		app.Cron.Stop()
		if app.queueMetrics != nil {
			app.queueMetrics.Stop()
		}
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}
	return app, cleanup, nil
}

// Run serves http, processes deferred recounts, consumes notifications and
// runs the reconcile job until a signal arrives or any of them fails.
func Run(app *App, cleanup func()) error {
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := app.Metrics.Start(); err != nil {
		return err
	}
	if app.queueMetrics != nil {
		app.queueMetrics.Start(queueMetricsInterval)
	}
	app.Cron.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Http.Run(gctx)
	})
	g.Go(func() error {
		return app.Queue.Run(gctx, app.Services.Reconcile)
	})
	g.Go(func() error {
		return app.Consumer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if app.Lifecycle.Shutdown() {
			log.Info("received shutdown signal, shutting down gracefully...")
		}
		return nil
	})

	err := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if stopErr := app.Metrics.Stop(stopCtx); stopErr != nil {
		log.Errorw("metrics server shutdown failed", "error", stopErr)
	}
	if err != nil {
		log.Errorw("server stopped with error", "error", err)
		return err
	}
	log.Info("server shutdown complete")
	return nil
}

// RunConsumer only consumes notifications. It is used when the api and the
// notification writer are deployed separately.
func RunConsumer(app *App, cleanup func()) error {
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Consumer.Run(gctx)
	})
	g.Go(func() error {
		return app.Queue.Run(gctx, app.Services.Reconcile)
	})
	return g.Wait()
}
