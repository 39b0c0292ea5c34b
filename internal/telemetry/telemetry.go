// Package telemetry sets up OpenTelemetry tracing and metrics for the
// library service.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config configures tracing and metrics.
type Config struct {
	// Enabled turns telemetry on. When false no-op providers are used.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Exporter is "otlp" or "none".
	Exporter string `yaml:"exporter" mapstructure:"exporter"`

	// Endpoint is the OTLP/HTTP collector address, host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// DefaultConfig returns tracing defaults for local development.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Exporter:    "otlp",
		Endpoint:    "localhost:4318",
		ServiceName: "librarysim",
		SampleRate:  1.0,
	}
}

// Provider owns the tracer and meter providers for the life of the process.
type Provider struct {
	provider *sdktrace.TracerProvider
	meters   *sdkmetric.MeterProvider
	tracer   trace.Tracer
}

// Option configures NewProvider.
type Option func(*providerOptions)

type providerOptions struct {
	readers []sdkmetric.Reader
}

// WithMetricReader adds a reader to the meter provider, in addition to the
// configured exporter.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *providerOptions) {
		o.readers = append(o.readers, r)
	}
}

// NewProvider builds tracer and meter providers from cfg and installs them
// as the global providers when telemetry is enabled.
func NewProvider(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	var po providerOptions
	for _, opt := range opts {
		opt(&po)
	}

	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop")}, nil
	}

	var (
		exporter sdktrace.SpanExporter
		readers  = po.readers
	)
	switch cfg.Exporter {
	case "otlp":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4318"
		}
		exp, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		exporter = exp

		metricExp, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(metricExp))
	case "none", "":
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "librarysim"
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	}
	if exporter != nil {
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter))
	}

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		meterOpts = append(meterOpts, sdkmetric.WithReader(r))
	}

	tp := sdktrace.NewTracerProvider(traceOpts...)
	mp := sdkmetric.NewMeterProvider(meterOpts...)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return &Provider{
		provider: tp,
		meters:   mp,
		tracer:   tp.Tracer(serviceName),
	}, nil
}

// Tracer returns the service tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// MeterProvider returns the installed meter provider, or a no-op one when
// telemetry is disabled.
func (p *Provider) MeterProvider() metric.MeterProvider {
	if p.meters == nil {
		return metricnoop.NewMeterProvider()
	}
	return p.meters
}

// Enabled reports whether spans are being recorded.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Shutdown flushes pending spans and metrics.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return errors.Join(p.provider.Shutdown(ctx), p.meters.Shutdown(ctx))
}
