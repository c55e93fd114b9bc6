package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/greenpath/greenpath/internal/telemetry"

// ProviderMetrics records calls to geocoding, routing and air-quality providers.
// A nil *ProviderMetrics is valid and records nothing.
type ProviderMetrics struct {
	tracer          trace.Tracer
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// NewProviderMetrics creates provider instruments on the global meter.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// ProviderCall is an in-flight provider call started by Start.
type ProviderCall struct {
	m     *ProviderMetrics
	span  trace.Span
	attrs []attribute.KeyValue
	start time.Time
}

// Start opens a client span for a provider operation. Always call End.
func (m *ProviderMetrics) Start(ctx context.Context, provider, operation string) (context.Context, *ProviderCall) {
	if m == nil {
		return ctx, nil
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}
	ctx, span := m.tracer.Start(ctx, provider+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, &ProviderCall{m: m, span: span, attrs: attrs, start: time.Now()}
}

// End records the outcome of the call.
func (c *ProviderCall) End(err error) {
	if c == nil {
		return
	}
	defer c.span.End()

	attrs := c.attrs
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	}

	// Metrics use a fresh context so a cancelled request still gets counted.
	ctx := context.Background()
	c.m.requestDuration.Record(ctx, time.Since(c.start).Seconds(), metric.WithAttributes(attrs...))
	c.m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
