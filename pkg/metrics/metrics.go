package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig controls the standalone /metrics listener.
// Metrics are always collected; with Enable=false they are only served
// on the API port.
type MetricsConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Enable bool   `mapstructure:"enable"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 9090
	}
}

func (c MetricsConfig) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// Server owns the process registry and the optional standalone listener.
type Server struct {
	conf     MetricsConfig
	registry *prometheus.Registry
	srv      *http.Server
}

func NewServer(conf MetricsConfig) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Server{conf: conf, registry: reg}
}

// RegisterCollector adds c to the registry. Registering the same
// collector twice is an error.
func (s *Server) RegisterCollector(c prometheus.Collector) error {
	if err := s.registry.Register(c); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	return nil
}

// Handler serves the registry in the prometheus exposition format.
func (s *Server) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (s *Server) GetRegistry() *prometheus.Registry {
	return s.registry
}

// Start binds the standalone listener and serves in the background.
// A bind failure is returned to the caller.
func (s *Server) Start() error {
	if !s.conf.Enable {
		log.Info("standalone metrics server is disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.conf.addr())
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Infow("metrics server started", "address", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
