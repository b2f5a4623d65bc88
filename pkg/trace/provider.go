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

package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/version"
	"github.com/google/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"

	defaultServiceName = "ideaflow"
)

// Conf 链路追踪配置
type Conf struct {
	Enabled bool `mapstructure:"enabled"`
	// Exporter is otlp-grpc or otlp-http
	Exporter string `mapstructure:"exporter"`
	// otlp-grpc: localhost:4317, otlp-http: localhost:4318
	Endpoint    string            `mapstructure:"endpoint"`
	Insecure    bool              `mapstructure:"insecure"`
	Headers     map[string]string `mapstructure:"headers"`
	ServiceName string            `mapstructure:"serviceName"`
	// SampleRatio applies to root spans; children follow their parent.
	SampleRatio float64   `mapstructure:"sampleRatio"`
	Batch       BatchConf `mapstructure:"batch"`
}

// BatchConf configures the batch span processor
type BatchConf struct {
	MaxQueueSize       int           `mapstructure:"maxQueueSize"`
	BatchTimeout       time.Duration `mapstructure:"batchTimeout"`
	ExportTimeout      time.Duration `mapstructure:"exportTimeout"`
	MaxExportBatchSize int           `mapstructure:"maxExportBatchSize"`
}

func (c *Conf) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.Exporter == "" {
		c.Exporter = ExporterOTLPGRPC
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
		if c.Exporter == ExporterOTLPHTTP {
			c.Endpoint = "localhost:4318"
		}
	}
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
	if c.Batch.MaxQueueSize <= 0 {
		c.Batch.MaxQueueSize = 2048
	}
	if c.Batch.BatchTimeout <= 0 {
		c.Batch.BatchTimeout = 5 * time.Second
	}
	if c.Batch.ExportTimeout <= 0 {
		c.Batch.ExportTimeout = 30 * time.Second
	}
	if c.Batch.MaxExportBatchSize <= 0 {
		c.Batch.MaxExportBatchSize = 512
	}
}

func (c *Conf) Validate() error {
	switch c.Exporter {
	case ExporterOTLPGRPC, ExporterOTLPHTTP:
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter %q", c.Exporter)
	}
}

var ProviderSet = wire.NewSet(ProvideTracerProvider)

// ProvideTracerProvider installs the global tracer provider and the W3C
// propagator. The propagator is installed even when tracing is disabled, so
// an upstream trace context still reaches downstream services and logs.
func ProvideTracerProvider(conf Conf) (oteltrace.TracerProvider, func(), error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !conf.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		log.Debug("tracing disabled, using noop tracer")
		return tp, func() {}, nil
	}

	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}
	tp, err := newSDKProvider(context.Background(), conf)
	if err != nil {
		return nil, nil, err
	}
	otel.SetTracerProvider(tp)
	log.Infow("tracing initialized",
		"exporter", conf.Exporter,
		"endpoint", conf.Endpoint,
		"service", conf.ServiceName,
		"sampleRatio", conf.SampleRatio,
	)

	cleanup := func() {
		timeout := min(conf.Batch.ExportTimeout+5*time.Second, 30*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warnw("tracer provider shutdown failed", "error", err)
		}
	}
	return tp, cleanup, nil
}

func newSDKProvider(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(conf.ServiceName),
			semconv.ServiceVersionKey.String(version.GetVersion().Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}

	exporter, err := newExporter(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithMaxQueueSize(conf.Batch.MaxQueueSize),
			sdktrace.WithBatchTimeout(conf.Batch.BatchTimeout),
			sdktrace.WithExportTimeout(conf.Batch.ExportTimeout),
			sdktrace.WithMaxExportBatchSize(conf.Batch.MaxExportBatchSize),
		),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(conf.SampleRatio))),
	), nil
}

func newExporter(ctx context.Context, conf Conf) (sdktrace.SpanExporter, error) {
	if conf.Exporter == ExporterOTLPHTTP {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(conf.Endpoint),
			otlptracehttp.WithTimeout(conf.Batch.ExportTimeout),
		}
		if conf.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(conf.Endpoint),
		otlptracegrpc.WithTimeout(conf.Batch.ExportTimeout),
	}
	if conf.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(conf.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(conf.Headers))
	}
	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}
