package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	buildCounter   otelmetric.Int64Counter
	buildDuration  otelmetric.Float64Histogram
}

// New wires the OTel meter provider (exported through Prometheus) and,
// when a Jaeger collector endpoint is given, a tracer provider. With no
// endpoint the tracer falls back to the global no-op provider.
func New(serviceName, jaegerEndpoint string) *Observability {
	o := &Observability{}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	buildCounter, _ := meter.Int64Counter(
		"templates.generated",
		otelmetric.WithDescription("Number of templates generated or served from cache"),
	)

	buildDuration, _ := meter.Float64Histogram(
		"templates.generate.duration",
		otelmetric.WithDescription("Template generation duration"),
		otelmetric.WithUnit("ms"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.buildCounter = buildCounter
	o.buildDuration = buildDuration

	if jaegerEndpoint != "" {
		traceExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			tp := sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(traceExporter),
				sdktrace.WithResource(resource.NewSchemaless(
					attribute.String("service.name", serviceName),
				)),
			)
			otel.SetTracerProvider(tp)
			o.tracerProvider = tp
		}
	}
	o.tracer = otel.Tracer(serviceName)

	return o
}

// StartSpan opens a span around one generation or warming pass.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		o.tracer = otel.Tracer("puzzle-template-service")
	}
	return o.tracer.Start(ctx, name)
}

func (o *Observability) RecordTemplateGenerated(ctx context.Context, tier, status string) {
	if o.buildCounter != nil {
		o.buildCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tier", tier),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordGenerateDuration(ctx context.Context, duration time.Duration, tier string) {
	if o.buildDuration != nil {
		o.buildDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("tier", tier),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
