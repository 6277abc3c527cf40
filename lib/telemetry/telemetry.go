package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loto6-backend/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Telemetry holds the providers installed by Setup, a provider is nil when
// its signal was not configured.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Shutdown flushes and stops both providers, it is safe to call on a zero Telemetry.
func (t Telemetry) Shutdown(ctx context.Context) error {
	var errlist []error
	if t.TracerProvider != nil {
		errlist = append(errlist, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errlist = append(errlist, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errlist...)
}

// Config is the contents of telemetry.json5.
//
//	{
//	  otlp: {
//	    traces: { http_endpoint: "https://otlp.example.com/v1/traces" },
//	    metrics: { grpc_endpoint: "https://otlp.example.com:4317", headers: { authorization: "..." } },
//	  },
//	  export_interval_seconds: 10,
//	}
type Config struct {
	Otlp OtlpConfig `json:"otlp"`
	// ExportIntervalSeconds is how often metrics are pushed, defaults to 30.
	ExportIntervalSeconds int `json:"export_interval_seconds"`
}

const defaultExportInterval = 30 * time.Second

func (c Config) exportInterval() time.Duration {
	if c.ExportIntervalSeconds <= 0 {
		return defaultExportInterval
	}
	return time.Duration(c.ExportIntervalSeconds) * time.Second
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry
//
// returns an error wrapping os.ErrNotExist if there is no such file.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if err != nil {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, config)
}

// Setup installs the global tracer and meter providers for every signal
// that has an endpoint, the others keep the no-op globals.
func Setup(ctx context.Context, serviceName string, config Config) (Telemetry, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(serviceName)
	if err != nil {
		return Telemetry{}, err
	}

	var out Telemetry
	if config.Otlp.Traces.enabled() {
		out.TracerProvider, err = newTraceProvider(ctx, r, config.Otlp.Traces)
		if err != nil {
			return Telemetry{}, err
		}
		otel.SetTracerProvider(out.TracerProvider)
	} else {
		slog.Debug("no otlp endpoint for traces, tracing is disabled")
	}

	if config.Otlp.Metrics.enabled() {
		out.MeterProvider, err = newMetricProvider(ctx, r, config.Otlp.Metrics, config.exportInterval())
		if err != nil {
			return Telemetry{}, errors.Join(err, out.Shutdown(ctx))
		}
		otel.SetMeterProvider(out.MeterProvider)
	} else {
		slog.Debug("no otlp endpoint for metrics, metrics are disabled")
	}

	return out, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}
