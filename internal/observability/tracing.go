package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/citytraffic/internal/logging"
)

// Span exporters understood by InitTracing.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const defaultOTLPEndpoint = "localhost:4317"

// TracingConfig controls the spans emitted around each simulation tick.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string // ExporterStdout or ExporterOTLP
	Endpoint    string // OTLP collector, host:port
	SampleRatio float64

	// Writer receives stdout exporter output; os.Stderr when nil so spans
	// never interleave with the console transcript.
	Writer io.Writer
}

// DefaultTracingConfig is tracing switched off, exporting every tick to the
// stdout exporter once enabled.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "citysim",
		Exporter:    ExporterStdout,
		SampleRatio: 1,
	}
}

// TracingConfigFromEnv overlays the SIM_TRACING_* and SIM_OTLP_ENDPOINT
// variables on base. Unset variables keep the base value.
func TracingConfigFromEnv(base TracingConfig) (TracingConfig, error) {
	cfg := base

	if raw := os.Getenv("SIM_TRACING_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("SIM_TRACING_ENABLED: %w", err)
		}
		cfg.Enabled = enabled
	}
	if raw := os.Getenv("SIM_TRACING_EXPORTER"); raw != "" {
		cfg.Exporter = strings.ToLower(strings.TrimSpace(raw))
	}
	if raw := os.Getenv("SIM_TRACING_SERVICE_NAME"); raw != "" {
		cfg.ServiceName = raw
	}
	if raw := os.Getenv("SIM_OTLP_ENDPOINT"); raw != "" {
		cfg.Endpoint = raw
	}
	if raw := os.Getenv("SIM_TRACING_SAMPLE_RATIO"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return TracingConfig{}, fmt.Errorf("SIM_TRACING_SAMPLE_RATIO: want a number in [0, 1], got %q", raw)
		}
		cfg.SampleRatio = ratio
	}
	return cfg, nil
}

// InitTracing installs the global tracer provider described by cfg and
// returns the function that flushes and stops it. A disabled config installs
// a noop provider.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newSpanExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Info(ctx, "tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service_name", cfg.ServiceName),
		logging.Any("sample_ratio", cfg.SampleRatio),
	)
	return tp.Shutdown, nil
}

func newSpanExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterStdout, "":
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	case ExporterOTLP:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.Exporter)
	}
}

// ShutdownWithTimeout flushes pending spans, giving up after five seconds.
// Failures are logged, not returned.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
