// Package tracing wires the decision orchestrator's request_access path
// into OpenTelemetry. When disabled, the package tracer stays backed by
// the global no-op provider, so StartRequestAccess always returns a usable
// span and callers never need a nil check.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "abac-gate/engine"

var (
	tracer          = otel.Tracer(tracerName)
	meter           = otel.Meter(tracerName)
	decisionCounter otelmetric.Int64Counter
)

// Config configures the trace exporter.
type Config struct {
	Enabled  bool
	Exporter string // "stdout" or "none"
}

// Initialize installs a global TracerProvider and MeterProvider per cfg.
// Exporter "none" (or Enabled=false) leaves the default no-op providers in
// place, and RecordDecision becomes a cheap no-op.
func Initialize(cfg Config) error {
	if !cfg.Enabled || cfg.Exporter == "none" {
		return nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName("abac-gate-engine")),
	)
	if err != nil {
		return fmt.Errorf("tracing: build resource: %w", err)
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("tracing: create stdout trace exporter: %w", err)
	}
	tp := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer(tracerName)

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("tracing: create stdout metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	meter = otel.Meter(tracerName)

	decisionCounter, err = meter.Int64Counter("abac.decisions",
		otelmetric.WithDescription("Number of access decisions made by the orchestrator."))
	if err != nil {
		return fmt.Errorf("tracing: create decision counter: %w", err)
	}
	return nil
}

// StartRequestAccess opens the abac.request_access span that wraps one
// orchestrator decision.
func StartRequestAccess(ctx context.Context) (context.Context, oteltrace.Span) {
	return tracer.Start(ctx, "abac.request_access")
}

// RecordDecision mirrors one RequestAccess outcome into the OTel metric
// pipeline, alongside the Prometheus counter internal/metrics maintains.
// A no-op until Initialize has installed a real counter.
func RecordDecision(ctx context.Context, permit bool) {
	if decisionCounter == nil {
		return
	}
	decisionCounter.Add(ctx, 1, otelmetric.WithAttributes(otelattr.Bool("permit", permit)))
}
