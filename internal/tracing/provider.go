// Package tracing exports batch, host and request spans over OTLP and
// injects W3C trace context into outgoing GETs.
package tracing

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/torosent/hostbench/internal/config"
)

const instrumentationName = "hostbench"

// Provider owns the SDK tracer provider for one hostbench process. A nil or
// disabled Provider hands out no-op tracers.
type Provider struct {
	tp        *sdktrace.TracerProvider
	tracer    trace.Tracer
	propagate bool
}

// Option customises Init.
type Option func(*initOptions)

type initOptions struct {
	logger   logrus.FieldLogger
	exporter sdktrace.SpanExporter
}

// WithLogger routes OTel SDK errors (failed exports and the like) to logger
// at warn level instead of the SDK's default stderr logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *initOptions) { o.logger = logger }
}

// WithExporter bypasses the OTLP exporter, e.g. for an in-memory exporter.
// Tracing is then enabled regardless of the configured endpoint.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *initOptions) { o.exporter = exp }
}

// Init builds the tracer provider. Without an endpoint (flag, config or
// OTEL_EXPORTER_OTLP_ENDPOINT) it returns a disabled Provider.
func Init(ctx context.Context, cfg config.TracingConfig, opts ...Option) (*Provider, error) {
	var o initOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled() && o.exporter == nil {
		return &Provider{}, nil
	}

	sampler, err := samplerFor(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceNameFor(cfg)),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	exporter := o.exporter
	if exporter == nil {
		exporter, err = newExporter(ctx, cfg, resolveEndpoint(cfg))
		if err != nil {
			return nil, fmt.Errorf("tracing exporter: %w", err)
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if o.logger != nil {
		logger := o.logger
		otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
			logger.WithError(err).Warn("tracing error")
		}))
	}

	return &Provider{
		tp:        tp,
		tracer:    tp.Tracer(instrumentationName),
		propagate: cfg.Propagate == nil || *cfg.Propagate,
	}, nil
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Tracer returns the exporting tracer, or a no-op tracer when disabled.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return p.tracer
}

// ShouldPropagate reports whether requests carry traceparent headers.
func (p *Provider) ShouldPropagate() bool {
	if p == nil {
		return false
	}
	return p.propagate
}

// Shutdown flushes queued spans; a disabled Provider returns nil.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

func resolveEndpoint(cfg config.TracingConfig) string {
	if e := strings.TrimSpace(cfg.Endpoint); e != "" {
		return e
	}
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
}

func serviceNameFor(cfg config.TracingConfig) string {
	if cfg.ServiceName != "" {
		return cfg.ServiceName
	}
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return instrumentationName
}

// samplerFor maps a ratio to a sampler: 0 never samples, 1 always does.
func samplerFor(rate float64) (sdktrace.Sampler, error) {
	switch {
	case rate < 0 || rate > 1:
		return nil, fmt.Errorf("tracing sample_rate must be between 0.0 and 1.0, got %g", rate)
	case rate == 0:
		return sdktrace.NeverSample(), nil
	case rate == 1:
		return sdktrace.AlwaysSample(), nil
	default:
		return sdktrace.TraceIDRatioBased(rate), nil
	}
}

func newExporter(ctx context.Context, cfg config.TracingConfig, endpoint string) (sdktrace.SpanExporter, error) {
	switch protocol := strings.ToLower(cfg.Protocol); protocol {
	case "", "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
				otlptracegrpc.WithInsecure(),
			)
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q: use \"grpc\" or \"http\"", protocol)
	}
}
