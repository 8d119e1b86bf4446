// Package telemetry wires OpenTelemetry tracing for the server
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

// Config controls trace export
type Config struct {
	// Endpoint is the OTLP/HTTP collector URL. Tracing is off when empty.
	Endpoint    string
	ServiceName string

	// SampleRatio is the fraction of root traces kept. Zero keeps all.
	SampleRatio float64
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Endpoint != "" {
		errors.ValidateRequired("ServiceName", c.ServiceName, vb)
	}
	if c.SampleRatio != 0 {
		errors.ValidateUnitInterval("SampleRatio", c.SampleRatio, vb)
	}
	return vb.Build()
}

// Setup installs a global tracer provider that exports to cfg.Endpoint.
//
// Tracing is opt-in: with no endpoint Setup registers nothing and returns a
// no-op shutdown. The returned shutdown flushes pending spans and should be
// deferred by the caller.
func Setup(ctx context.Context, cfg *Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if cfg == nil || cfg.Endpoint == "" {
		return noop, nil
	}
	if err := cfg.Validate(); err != nil {
		return noop, errors.Wrap(err, "invalid config")
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Endpoint),
	)
	if err != nil {
		return noop, errors.Wrap(err, "failed to create trace exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return noop, errors.Wrap(err, "failed to build trace resource")
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
