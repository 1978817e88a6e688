package utils

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cocodas/prierboard/config"
)

// InitTracing installs an OTLP/HTTP tracer provider when an endpoint is configured.
// The returned function flushes pending spans; it is a no-op when tracing is off.
func InitTracing(ctx context.Context, serviceName string, cfg config.TelemetrySection) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// InitSentry enables error reporting when a DSN is configured. It reports whether Sentry is on.
func InitSentry(cfg config.TelemetrySection, environment string) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      environment,
		AttachStacktrace: true,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// FlushSentry waits briefly for buffered events on shutdown.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
