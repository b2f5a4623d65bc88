package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/8 15:38
 * @file: http.go
 * @description: http server
 */

var ProviderSet = wire.NewSet(NewServer)

type Http struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ContextPath     string `mapstructure:"contextPath"`
	AccessLog       bool   `mapstructure:"accessLog"`
	ExposeMetrics   bool   `mapstructure:"exposeMetrics"`
	PProf           bool   `mapstructure:"pprof"`
	BodyLimit       int    `mapstructure:"bodyLimit"`
	ReadTimeout     int    `mapstructure:"readTimeout"`
	WriteTimeout    int    `mapstructure:"writeTimeout"`
	IdleTimeout     int    `mapstructure:"idleTimeout"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	// AllowOrigins 逗号分隔, 为空时允许所有来源
	AllowOrigins string `mapstructure:"allowOrigins"`
}

// SetDefaults fills zero values
func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.ContextPath == "" {
		h.ContextPath = "/api"
	}
	if h.BodyLimit == 0 {
		h.BodyLimit = 4 * 1024 * 1024
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = 30
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = 30
	}
	if h.IdleTimeout == 0 {
		h.IdleTimeout = 60
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 10
	}
	if h.AllowOrigins == "" {
		h.AllowOrigins = "*"
	}
}

// Addr returns host:port
func (h *Http) Addr() string {
	return net.JoinHostPort(h.Host, fmt.Sprint(h.Port))
}

// FiberConfig builds the fiber settings shared by the server and tests.
func (h *Http) FiberConfig() fiber.Config {
	return fiber.Config{
		AppName:               "ideaflow",
		DisableStartupMessage: true,
		BodyLimit:             h.BodyLimit,
		ReadTimeout:           time.Duration(h.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(h.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(h.IdleTimeout) * time.Second,
		ErrorHandler:          ErrorHandler,
	}
}

// Server runs a fiber app until its context is cancelled.
type Server struct {
	cfg *Http
	app *fiber.App
}

func NewServer(cfg *Http, app *fiber.App) *Server {
	return &Server{cfg: cfg, app: app}
}

// Run serves until ctx is done, then shuts down within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server started", "addr", s.cfg.Addr())
		errCh <- s.app.Listen(s.cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("http server shutting down...")
	if err := s.app.ShutdownWithTimeout(time.Duration(s.cfg.ShutdownTimeout) * time.Second); err != nil {
		log.Errorw("http server shutdown failed", "error", err)
		return err
	}
	log.Info("http server shut down gracefully")
	return nil
}
