package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// TelemetryConfig controls how callbridge exports its telemetry.
type TelemetryConfig struct {
	// ServiceName identifies this deployment in exported telemetry.
	// Default "callbridge".
	ServiceName string

	// ServiceVersion is reported alongside the service name.
	ServiceVersion string

	// SpanExporter receives finished spans. Leave nil to record spans
	// without exporting them; trace IDs still flow into logs and response
	// headers, which is enough for single-service deployments.
	SpanExporter sdktrace.SpanExporter
}

// SetupTelemetry registers the global OTel meter and tracer providers.
// Metrics go through a Prometheus exporter so call volumes and pipeline
// latencies are scrapeable from /metrics; spans go to cfg.SpanExporter when
// one is configured.
//
// The returned close function flushes and shuts down both providers; defer it
// from main.
func SetupTelemetry(ctx context.Context, cfg TelemetryConfig) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "callbridge"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	meters := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(meters)

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.SpanExporter != nil {
		traceOpts = append(traceOpts, sdktrace.WithBatcher(cfg.SpanExporter))
	}
	tracers := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracers)

	closeAll := func(ctx context.Context) error {
		return errors.Join(meters.Shutdown(ctx), tracers.Shutdown(ctx))
	}
	return closeAll, nil
}
