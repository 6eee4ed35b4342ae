// Package observability builds the logger, tracer and metrics handed to every module.
package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the log format and names the service.
type Config struct {
	ServiceName string
	Environment string
}

// Provider owns the process logger.
type Provider struct {
	Logger *slog.Logger
}

// Registry holds the tracer and metric collectors.
type Registry struct {
	Tracer     trace.Tracer
	Metrics    OperationMetrics
	Prometheus *prometheus.Registry
}

// Observability bundles everything a module needs to log, trace and count.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init sets up logging, tracing and a fresh prometheus registry.
func Init(cfg Config) Observability {
	var handler slog.Handler
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Provider: &Provider{Logger: logger},
		Registry: &Registry{
			Tracer:     otel.Tracer(cfg.ServiceName),
			Metrics:    NewPrometheusMetrics(reg, "clubhouse"),
			Prometheus: reg,
		},
	}
}

// NewTestObservability returns a discard logger, a noop tracer and noop metrics.
func NewTestObservability() Observability {
	return Observability{
		Provider: &Provider{Logger: slog.New(slog.DiscardHandler)},
		Registry: &Registry{
			Tracer:  noop.NewTracerProvider().Tracer("test"),
			Metrics: NewNoop(),
		},
	}
}
