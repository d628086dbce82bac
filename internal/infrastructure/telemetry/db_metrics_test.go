package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func metricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
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

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM menu_items", "SELECT"},
		{"  insert into bills values (1)", "INSERT"},
		{"UPDATE\tmenu_items SET stock = 1", "UPDATE"},
		{"DELETE FROM bill_line_items", "DELETE"},
		{"PRAGMA foreign_keys", "OTHER"},
		{"", "OTHER"},
	}

	for _, tt := range tests {
		t.Run(tt.want+"_"+tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, detectOperationType(tt.sql))
		})
	}
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	m, err := NewDBMetrics(meter, DBMetricsConfig{SlowQueryThreshold: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordQuery(ctx, "select", "menu_items", time.Millisecond)
	m.RecordQuery(ctx, "update", "", time.Second)

	data := metricNames(t, reader)

	total := data["db_query_total"].(metricdata.Sum[int64])
	assert.Len(t, total.DataPoints, 2)

	slow := data["db_slow_query_total"].(metricdata.Sum[int64])
	require.Len(t, slow.DataPoints, 1)
	table, _ := slow.DataPoints[0].Attributes.Value(AttrDBTable)
	assert.Equal(t, "unknown", table.AsString())
}

func TestDBMetrics_RegisterOnGorm(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	db := openSQLite(t)

	m, err := NewDBMetrics(meter, DBMetricsConfig{}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Register(db))

	var one int
	require.NoError(t, db.WithContext(context.Background()).Raw("SELECT 1").Scan(&one).Error)

	data := metricNames(t, reader)
	assert.Contains(t, data, "db_query_total")
	assert.Contains(t, data, "db_query_duration_seconds")
}

func TestDBMetrics_PoolStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := NewDBMetrics(meter, DBMetricsConfig{PoolStatsInterval: time.Hour}, nil)
	require.NoError(t, err)

	m.StartPoolStatsCollection(context.Background(), sqlDB)
	require.Eventually(t, func() bool {
		_, ok := metricNames(t, reader)["db_pool_connections_max"]
		return ok
	}, time.Second, 10*time.Millisecond)

	m.Stop()
	m.Stop()

	poolMax := metricNames(t, reader)["db_pool_connections_max"].(metricdata.Gauge[int64])
	assert.Equal(t, int64(1), poolMax.DataPoints[0].Value)
}
