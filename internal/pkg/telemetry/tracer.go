// Package telemetry initialises structured logging and the OpenTelemetry SDK.
//
// Call SetupTracer once at the top of main and defer the returned shutdown
// function; every span created in the process is then exported via OTLP.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes buffered spans and closes the exporter connection.
type ShutdownFunc func(ctx context.Context) error

// SetupTracer registers the global TracerProvider and W3C propagators for
// serviceName. The OTLP endpoint comes from OTEL_EXPORTER_OTLP_ENDPOINT
// (default "localhost:4317"); the gRPC connection is lazy, so a missing
// collector only surfaces as dropped spans, never as a startup failure.
func SetupTracer(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	endpoint := stripScheme(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"))

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial OTel collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", "local")),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	// TraceContext + Baggage make trace IDs flow across process boundaries.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shut down TracerProvider: %w", err)
		}
		return conn.Close()
	}
	return shutdown, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// stripScheme drops an http(s):// prefix; the gRPC dialer wants host:port.
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		endpoint = strings.TrimPrefix(endpoint, prefix)
	}
	return endpoint
}
