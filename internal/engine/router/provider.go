package router

import (
	"github.com/go-arcade/ideaflow/internal/engine/service"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(ProvideRouter, ProvideApp)

// ProvideRouter 提供路由实例
func ProvideRouter(httpConf *http.Http, services *service.Services, metricsServer *metrics.Server, lifecycle *shutdown.Manager) *Router {
	return NewRouter(httpConf, services, metricsServer, lifecycle)
}

// ProvideApp builds the fiber app served by the http server
func ProvideApp(rt *Router) *fiber.App {
	return rt.Router()
}
