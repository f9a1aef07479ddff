// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tracing configures the OpenTelemetry tracer provider for gnoagent commands.
package tracing

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const (
	serviceName = "gnoagent"

	// OtlpEndpointEnvVar enables OTLP/HTTP export when set. The exporter reads it directly.
	OtlpEndpointEnvVar = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type Options struct {
	// TraceFile receives spans as JSON lines when set.
	TraceFile string
	// OtlpEndpoint enables OTLP/HTTP export when non-empty.
	OtlpEndpoint   string
	ServiceVersion string
}

type otelErrorHandler struct{}

func (otelErrorHandler) Handle(err error) {
	log.Printf("otel error: %v", err)
}

// Init installs a global tracer provider exporting to the configured sinks. With no sink configured it
// leaves the no-op provider in place. The returned shutdown flushes pending spans.
func Init(ctx context.Context, options Options) (shutdown func(context.Context) error, err error) {
	var exporters []sdktrace.SpanExporter
	var closers []func() error

	cleanup := func() {
		for _, closer := range closers {
			_ = closer()
		}
	}

	if options.TraceFile != "" {
		file, err := os.Create(options.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("creating trace file: %w", err)
		}
		closers = append(closers, file.Close)

		exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("creating trace file exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	if options.OtlpEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("creating otlp exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	if len(exporters) == 0 {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(options.ServiceVersion),
		),
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	providerOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, exporter := range exporters {
		providerOptions = append(providerOptions, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(providerOptions...)

	otel.SetErrorHandler(otelErrorHandler{})
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		for _, closer := range closers {
			err = multierr.Append(err, closer())
		}
		return err
	}, nil
}

// Tracer returns the gnoagent tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}
