package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

const serviceVersion = "v1.0.0"

// InitTracer wires the global tracer provider to a Jaeger collector. The
// returned provider must be shut down on exit to flush pending spans.
func InitTracer(cfg config.OpenTelemetryConfig) (*sdktrace.TracerProvider, error) {
	endpoint := cfg.Jaeger.Endpoint
	if endpoint == "" {
		endpoint = "http://jaeger:14268/api/traces"
	}
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(endpoint),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		)),
		sdktrace.WithSampler(sampler(cfg.Jaeger)),
	)

	otel.SetTracerProvider(tp)

	return tp, nil
}

func sampler(cfg config.JaegerConfig) sdktrace.Sampler {
	switch cfg.SamplerType {
	case "ratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerParam))
	case "never":
		return sdktrace.NeverSample()
	default:
		return sdktrace.AlwaysSample()
	}
}
