package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// manualMeter returns a meter whose instruments can be read back synchronously
func manualMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider.Meter("test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intSum(t *testing.T, data map[string]metricdata.Aggregation, name string) int64 {
	t.Helper()
	sum, ok := data[name].(metricdata.Sum[int64])
	require.Truef(t, ok, "metric %s is not an int64 sum", name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func floatSum(t *testing.T, data map[string]metricdata.Aggregation, name string) float64 {
	t.Helper()
	sum, ok := data[name].(metricdata.Sum[float64])
	require.Truef(t, ok, "metric %s is not a float64 sum", name)
	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func intGauge(t *testing.T, data map[string]metricdata.Aggregation, name string) int64 {
	t.Helper()
	gauge, ok := data[name].(metricdata.Gauge[int64])
	require.Truef(t, ok, "metric %s is not an int64 gauge", name)
	require.NotEmpty(t, gauge.DataPoints)
	return gauge.DataPoints[0].Value
}
