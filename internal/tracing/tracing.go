package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "dupefinder"
	ServiceVersion = "1.0.0"

	// InstrumentationName names the tracer used by the duplicate finder
	InstrumentationName = "dupefinder/duplicates"
)

// Tracer holds the tracer instance
type Tracer struct {
	tracer trace.Tracer
	tp     *sdktrace.TracerProvider
}

// NewTracer creates a tracer that exports spans to output as JSON and installs it globally
func NewTracer(serviceName string, output io.Writer) (*Tracer, error) {
	if serviceName == "" {
		serviceName = ServiceName
	}
	if output == nil {
		output = os.Stderr
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(output))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	return NewTracerWithProcessor(serviceName, sdktrace.NewBatchSpanProcessor(exp)), nil
}

// NewTracerWithProcessor creates a tracer around an explicit span processor and installs it globally
func NewTracerWithProcessor(serviceName string, processor sdktrace.SpanProcessor) *Tracer {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", ServiceVersion),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	return &Tracer{
		tracer: tp.Tracer(InstrumentationName),
		tp:     tp,
	}
}

// Tracer returns the underlying OpenTelemetry tracer
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans and shuts down the trace provider
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.tp.Shutdown(ctx)
}

// DefaultTracer returns the tracer from the global provider, a no-op until NewTracer runs
func DefaultTracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// EndSpan records err on the span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// AnalysisAttrs returns common attributes for an analysis span
func AnalysisAttrs(analysisID string, files int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("component", "duplicates"),
		attribute.String("analysis.id", analysisID),
		attribute.Int("analysis.files", files),
	}
}

// StrategyAttrs returns common attributes for a strategy span
func StrategyAttrs(strategy, classification string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("component", "duplicates.strategy"),
		attribute.String("strategy.name", strategy),
		attribute.String("strategy.classification", classification),
	}
}
