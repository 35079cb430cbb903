// Package tracing installs the process tracer provider and wraps the span
// bookkeeping shared by rooms and handlers.
package tracing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the default service and tracer name.
const ServiceName = "setback-game"

var tracer trace.Tracer

// Config selects where spans go. TracesExport is "stdout" (the default) or
// "none".
type Config struct {
	ServiceName  string
	Environment  string
	PrettyPrint  bool
	TracesExport string
}

// InitTracer installs a tracer provider and the W3C propagators. The
// returned func flushes and stops the provider.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("tracing: ServiceName is required")
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cmp.Or(cfg.Environment, "development")),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(os.Getenv("OTEL_TRACES_SAMPLER"), os.Getenv("OTEL_TRACES_SAMPLER_ARG"))),
	}
	exp, err := exporter(cfg)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracer = tp.Tracer(cfg.ServiceName)
	return tp.Shutdown, nil
}

// exporter returns nil when spans should not leave the process.
func exporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.TracesExport {
	case "none", "noop":
		return nil, nil
	case "", "stdout":
	default:
		logrus.WithField("OTEL_TRACES_EXPORTER", cfg.TracesExport).Warn("tracing: unsupported exporter, using stdout")
	}
	var opts []stdouttrace.Option
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing: init stdout exporter: %w", err)
	}
	return exp, nil
}

// sampler maps the OTEL_TRACES_SAMPLER name and argument onto an SDK
// sampler. Unset or unknown names keep every trace.
func sampler(name, arg string) sdktrace.Sampler {
	switch name {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio", "parentbased_traceidratio":
		ratio, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			logrus.WithField("OTEL_TRACES_SAMPLER_ARG", arg).Warn("tracing: invalid sampler ratio, using 1.0")
			ratio = 1
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(min(max(ratio, 0), 1)))
	case "", "parentbased_always_on":
	default:
		logrus.WithField("OTEL_TRACES_SAMPLER", name).Warn("tracing: unsupported sampler, sampling everything")
	}
	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

// GetTracer returns the installed tracer, or the global one before
// InitTracer has run.
func GetTracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer(ServiceName)
	}
	return tracer
}

// StartSpan opens a span named spanName carrying attrs.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// EndSpan records err (when non-nil) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
