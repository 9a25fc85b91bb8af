package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/velora-shop/storefront-go/config"
)

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	serviceName    string
)

// InitTracing initializes OpenTelemetry tracing using the centralized config.
//
// Example:
//
//	cfg := config.Load()
//	tp, err := observability.InitTracing(cfg)
//	defer tp.Shutdown(context.Background())
func InitTracing(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, errors.New("tracing is disabled (TRACING_ENABLED=false)")
	}

	if cfg.Tracing.Endpoint == "" {
		return nil, errors.New("OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", cfg.Tracing.SampleRate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// OTLP HTTP exporter with compression
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(cfg.Tracing.Endpoint),
		otlptracehttp.WithInsecure(), // Use TLS in production
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	serviceName = cfg.Tracing.ServiceName
	if serviceName == "" {
		serviceName = cfg.Service.Name
	}

	res, resErr := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.Service.Version),
			semconv.DeploymentEnvironment(cfg.Service.Env),
		),
	)
	if resErr != nil {
		_ = resErr // partial failure is acceptable; fallback resource is valid
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithExportTimeout(30*time.Second),
			sdktrace.WithMaxExportBatchSize(cfg.Tracing.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRate)),
	)

	otel.SetTracerProvider(tracerProvider)

	// W3C Trace Context propagation so backend spans join client traces
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = otel.Tracer(serviceName)

	return tracerProvider, nil
}

// GetTracer returns the tracer instance for this client.
func GetTracer() trace.Tracer {
	if tracer == nil {
		name := serviceName
		if name == "" {
			name = "storefront-client"
		}
		tracer = otel.Tracer(name)
	}
	return tracer
}

// StartSpan starts a new span with the given name.
//
// Usage:
//
//	ctx, span := observability.StartSpan(ctx, "session.login")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	//nolint:spancheck // span is returned to caller who is responsible for calling span.End()
	return GetTracer().Start(ctx, name, opts...)
}

// Shutdown gracefully shuts down the tracer provider, flushing any pending
// spans. Call this before the process exits.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}

	if err := tracerProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush traces: %w", err)
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}

	return nil
}

// AddSpanAttributes adds attributes to the current span if it's recording.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// RecordError records an error in the current span if it's recording.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
