package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	quiet := NewLogger(buf, false)
	quiet.Debug("hidden")
	quiet.Info("shown", "latest_draw", 1868)
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "latest_draw=1868")

	buf.Reset()
	verbose := NewLogger(buf, true)
	require.True(t, verbose.Enabled(context.Background(), -4))
	verbose.Debug("visible")
	require.Contains(t, buf.String(), "visible")
}

func TestZeroTelemetryShutdown(t *testing.T) {
	require.NoError(t, Telemetry{}.Shutdown(context.Background()))
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:loto6", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestOtlpTransport(t *testing.T) {
	table := []struct {
		name     string
		conn     OtlpConnConfig
		enabled  bool
		kind     string
		endpoint string
	}{
		{name: "empty", kind: "http"},
		{
			name:     "http",
			conn:     OtlpConnConfig{HttpEndpoint: "https://otlp.example.com/v1/traces"},
			enabled:  true,
			kind:     "http",
			endpoint: "https://otlp.example.com/v1/traces",
		},
		{
			name: "grpc wins",
			conn: OtlpConnConfig{
				GrpcEndpoint: "https://otlp.example.com:4317",
				HttpEndpoint: "https://otlp.example.com/v1/traces",
			},
			enabled:  true,
			kind:     "grpc",
			endpoint: "https://otlp.example.com:4317",
		},
	}

	for _, test := range table {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.enabled, test.conn.enabled())
			kind, endpoint := test.conn.transport()
			require.Equal(t, test.kind, kind)
			require.Equal(t, test.endpoint, endpoint)
		})
	}
}

func TestExportInterval(t *testing.T) {
	require.Equal(t, defaultExportInterval, Config{}.exportInterval())
	require.Equal(t, 10*time.Second, Config{ExportIntervalSeconds: 10}.exportInterval())
}
