package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestInitTelemetryExportsSpansToFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
	})

	cleanup, err := InitTelemetry(context.Background(), dir, "test")
	require.NoError(t, err)

	_, span := otel.Tracer(InstrumentationName).Start(context.Background(), "market_analysis")
	span.End()

	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "agribharat_traces.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "market_analysis")
	assert.Contains(t, string(data), "agribharat-api")
}
