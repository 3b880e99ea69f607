package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitOTel_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.Nil(t, providers)
	assert.Contains(t, buf.String(), "Telemetry export disabled")
}

func TestInitOTel_Enabled(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	// Exporters connect lazily, so setup succeeds without a collector.
	providers, err := InitOTel(context.Background(), OTelConfig{
		Enabled:        true,
		Endpoint:       "localhost:4317",
		ServiceName:    "concord",
		ServiceVersion: "test",
		Insecure:       true,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)
	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestShutdownOTel_NilProviders(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})
	assert.NoError(t, ShutdownOTel(context.Background(), nil, logger))
}

func TestShutdownOTel(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	providers := &OTelProviders{
		TracerProvider: sdktrace.NewTracerProvider(),
		MeterProvider:  metric.NewMeterProvider(),
	}
	assert.NoError(t, ShutdownOTel(context.Background(), providers, logger))

	// A second shutdown must not fail either.
	assert.NoError(t, ShutdownOTel(context.Background(), providers, logger))
}

func TestShutdownOTel_PartialProviders(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	providers := &OTelProviders{TracerProvider: sdktrace.NewTracerProvider()}
	assert.NoError(t, ShutdownOTel(context.Background(), providers, logger))
}
