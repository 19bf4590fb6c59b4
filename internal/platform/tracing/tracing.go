// Package tracing wires OpenTelemetry spans for a parser run. Spans never go
// to stdout; the stdout exporter is pointed at stderr or a caller writer
package tracing

import (
	"context"
	"io"
	"os"
	"strings"

	perr "registrygate/internal/platform/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names accepted by Options.Exporter
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Options configures the tracer provider
type Options struct {
	Exporter string
	Endpoint string // otlp only
	Service  string
	Version  string
	Writer   io.Writer // stdout exporter only; defaults to stderr
}

// Shutdown flushes and stops the provider
type Shutdown func(context.Context) error

// Init installs a global tracer provider. With ExporterNone the global
// provider stays the otel noop and the returned Shutdown does nothing
func Init(ctx context.Context, opt Options) (Shutdown, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch strings.ToLower(opt.Exporter) {
	case "", ExporterNone:
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		w := opt.Writer
		if w == nil {
			w = os.Stderr
		}
		exp, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case ExporterOTLP:
		endpoint := opt.Endpoint
		if endpoint == "" {
			endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		if endpoint == "" {
			return nil, perr.Configf("otlp exporter requires an endpoint")
		}
		exp, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	default:
		return nil, perr.Configf("unknown trace exporter %q", opt.Exporter)
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "create span exporter")
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opt.Service),
		semconv.ServiceVersion(opt.Version),
	))
	if err != nil {
		// schema conflicts with the default resource are not fatal
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider
func Tracer(name string) trace.Tracer { return otel.Tracer(name) }

// Start opens a span on the named tracer
func Start(ctx context.Context, tracer, span string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracer).Start(ctx, span, trace.WithAttributes(attrs...))
}

// End records err (if any) on span and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
