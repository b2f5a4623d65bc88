package router

import (
	"net/http/pprof"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// debugRouter 注册 pprof 路由, 仅在 http.pprof = true 时挂载到 /debug/pprof
func (rt *Router) debugRouter(r fiber.Router) {
	r.Get("/", adaptor.HTTPHandlerFunc(pprof.Index))
	r.Get("/cmdline", adaptor.HTTPHandlerFunc(pprof.Cmdline))
	r.Get("/profile", adaptor.HTTPHandlerFunc(pprof.Profile))
	r.Get("/trace", adaptor.HTTPHandlerFunc(pprof.Trace))
	r.Get("/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	r.Post("/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	for _, name := range pprofProfiles {
		r.Get("/"+name, adaptor.HTTPHandler(pprof.Handler(name)))
	}
}
