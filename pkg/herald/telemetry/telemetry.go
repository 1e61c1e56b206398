// Package telemetry wires delivery metrics and traces into OpenTelemetry.
// With Enabled false the provider degrades to no-op instruments, so callers
// never branch on whether telemetry is configured.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
)

const instrumentationName = "herald"

// Config holds the telemetry tunables.
type Config struct {
	Enabled        bool              `json:"enabled"`
	ServiceName    string            `json:"service_name"`
	ServiceVersion string            `json:"service_version"`
	Environment    string            `json:"environment"`
	OTLPEndpoint   string            `json:"otlp_endpoint"`
	OTLPHeaders    map[string]string `json:"otlp_headers,omitempty"`
	TracingEnabled bool              `json:"tracing_enabled"`
	MetricsEnabled bool              `json:"metrics_enabled"`
	SampleRate     float64           `json:"sample_rate"`
}

// DefaultConfig returns a disabled telemetry configuration.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "herald",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "http://localhost:4318",
		TracingEnabled: true,
		MetricsEnabled: true,
		SampleRate:     1.0,
	}
}

// Provider owns the tracer and the delivery instruments.
type Provider struct {
	config        *Config
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	sent             metric.Int64Counter
	delivered        metric.Int64Counter
	failed           metric.Int64Counter
	retries          metric.Int64Counter
	deliveryDuration metric.Float64Histogram
	scheduledPending metric.Int64UpDownCounter
}

// NewProvider creates a telemetry provider. A nil or disabled config yields
// a no-op provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := &Provider{config: cfg}

	if !cfg.Enabled {
		p.tracer = otel.Tracer(instrumentationName)
		p.meter = otel.Meter(instrumentationName)
		return p, nil
	}

	if cfg.TracingEnabled {
		if err := p.initTracing(); err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}
	if cfg.MetricsEnabled {
		if err := p.initMetrics(); err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}
	return p, nil
}

func (p *Provider) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(p.config.ServiceName),
			semconv.ServiceVersion(p.config.ServiceVersion),
			semconv.DeploymentEnvironment(p.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(p.config.OTLPEndpoint),
			otlptracehttp.WithHeaders(p.config.OTLPHeaders),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	p.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(p.config.SampleRate)),
	)
	otel.SetTracerProvider(p.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	p.tracer = otel.Tracer(instrumentationName,
		trace.WithSchemaURL(semconv.SchemaURL),
	)
	return nil
}

func (p *Provider) initMetrics() error {
	p.meter = otel.Meter(instrumentationName,
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error
	if p.sent, err = p.meter.Int64Counter(
		"herald_notifications_sent_total",
		metric.WithDescription("Delivery attempts handed to a gateway"),
	); err != nil {
		return err
	}
	if p.delivered, err = p.meter.Int64Counter(
		"herald_notifications_delivered_total",
		metric.WithDescription("Notifications accepted by a gateway"),
	); err != nil {
		return err
	}
	if p.failed, err = p.meter.Int64Counter(
		"herald_notifications_failed_total",
		metric.WithDescription("Notifications that failed permanently"),
	); err != nil {
		return err
	}
	if p.retries, err = p.meter.Int64Counter(
		"herald_retries_total",
		metric.WithDescription("Retry attempts scheduled after transient failures"),
	); err != nil {
		return err
	}
	if p.deliveryDuration, err = p.meter.Float64Histogram(
		"herald_delivery_duration_seconds",
		metric.WithDescription("End-to-end duration of one dispatch"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}
	if p.scheduledPending, err = p.meter.Int64UpDownCounter(
		"herald_scheduled_pending",
		metric.WithDescription("Notifications waiting on the scheduler"),
	); err != nil {
		return err
	}
	return nil
}

// TraceDispatch opens a span covering one dispatch.
func (p *Provider) TraceDispatch(ctx context.Context, requestID string, channel notification.Channel) (context.Context, trace.Span) {
	if p.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.tracer.Start(ctx, "herald.dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("herald.request.id", requestID),
			attribute.String("herald.channel", string(channel)),
		),
	)
}

// RecordDelivered accounts one accepted delivery and its duration.
func (p *Provider) RecordDelivered(ctx context.Context, channel notification.Channel, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("channel", string(channel)),
		attribute.String("status", "success"),
	)
	if p.sent != nil {
		p.sent.Add(ctx, 1, attrs)
	}
	if p.delivered != nil {
		p.delivered.Add(ctx, 1, attrs)
	}
	if p.deliveryDuration != nil {
		p.deliveryDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordFailed accounts one permanent failure and its duration.
func (p *Provider) RecordFailed(ctx context.Context, channel notification.Channel, duration time.Duration, code errors.Code) {
	attrs := metric.WithAttributes(
		attribute.String("channel", string(channel)),
		attribute.String("status", "error"),
		attribute.String("error_code", string(code)),
	)
	if p.failed != nil {
		p.failed.Add(ctx, 1, attrs)
	}
	if p.deliveryDuration != nil {
		p.deliveryDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordRetry accounts one scheduled retry attempt.
func (p *Provider) RecordRetry(ctx context.Context, channel notification.Channel, attempt int) {
	if p.retries != nil {
		p.retries.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", string(channel)),
			attribute.Int("attempt", attempt),
		))
	}
}

// AddScheduled moves the pending-scheduled gauge by delta.
func (p *Provider) AddScheduled(ctx context.Context, delta int64) {
	if p.scheduledPending != nil {
		p.scheduledPending.Add(ctx, delta)
	}
}

// EndSpan closes a span, recording err when the operation failed.
func (p *Provider) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and stops the trace pipeline.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.traceProvider != nil {
		return p.traceProvider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the tracer instance.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Meter returns the meter instance.
func (p *Provider) Meter() metric.Meter {
	return p.meter
}
