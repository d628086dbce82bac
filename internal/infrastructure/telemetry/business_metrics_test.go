package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

type mockSnapshotProvider struct {
	mock.Mock
}

func (m *mockSnapshotProvider) CountOutOfStockMenuItems(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSnapshotProvider) CountUnpaidBills(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewBusinessMetrics(t *testing.T) {
	t.Run("requires a meter", func(t *testing.T) {
		bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Logger: zap.NewNop()})

		require.Error(t, err)
		assert.Nil(t, bm)
		assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
	})

	t.Run("works with a no-op meter", func(t *testing.T) {
		bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter: noop.NewMeterProvider().Meter("test"),
		})
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			bm.RecordBillCreated(context.Background(), decimal.NewFromInt(10))
			bm.RecordBillPaid(context.Background(), decimal.NewFromInt(10), 2)
			bm.RecordMenuItemDisabled(context.Background())
		})
	})
}

func TestBusinessMetrics_Recording(t *testing.T) {
	meter, reader := manualMeter(t)
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter})
	require.NoError(t, err)
	ctx := context.Background()

	bm.RecordBillCreated(ctx, decimal.RequireFromString("24.50"))
	bm.RecordBillCreated(ctx, decimal.RequireFromString("3.00"))
	bm.RecordBillPaid(ctx, decimal.RequireFromString("24.50"), 5)
	bm.RecordMenuItemDisabled(ctx)

	data := collect(t, reader)
	assert.Equal(t, int64(2), intSum(t, data, "restaurant_bill_created_total"))
	assert.Equal(t, int64(1), intSum(t, data, "restaurant_bill_paid_total"))
	assert.InDelta(t, 24.5, floatSum(t, data, "restaurant_bill_revenue_total"), 0.0001)
	assert.Equal(t, int64(5), intSum(t, data, "restaurant_units_sold_total"))
	assert.Equal(t, int64(1), intSum(t, data, "restaurant_menu_item_disabled_total"))
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter, reader := manualMeter(t)
	snapshots := new(mockSnapshotProvider)
	snapshots.On("CountOutOfStockMenuItems", mock.Anything).Return(int64(3), nil)
	snapshots.On("CountUnpaidBills", mock.Anything).Return(int64(7), nil)

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:     meter,
		Snapshots: snapshots,
	})
	require.NoError(t, err)
	defer bm.Stop()

	bm.StartPeriodicCollection(context.Background(), time.Hour)

	require.Eventually(t, func() bool {
		_, ok := collect(t, reader)["restaurant_bills_unpaid"]
		return ok
	}, time.Second, 10*time.Millisecond)

	data := collect(t, reader)
	assert.Equal(t, int64(3), intGauge(t, data, "restaurant_menu_items_out_of_stock"))
	assert.Equal(t, int64(7), intGauge(t, data, "restaurant_bills_unpaid"))
}

func TestBusinessMetrics_SnapshotErrorsAreSkipped(t *testing.T) {
	meter, reader := manualMeter(t)
	snapshots := new(mockSnapshotProvider)
	snapshots.On("CountOutOfStockMenuItems", mock.Anything).Return(int64(0), errors.New("db down"))
	snapshots.On("CountUnpaidBills", mock.Anything).Return(int64(2), nil)

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter, Snapshots: snapshots})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bm.StartPeriodicCollection(ctx, time.Hour)

	require.Eventually(t, func() bool {
		_, ok := collect(t, reader)["restaurant_bills_unpaid"]
		return ok
	}, time.Second, 10*time.Millisecond)

	data := collect(t, reader)
	_, hasOutOfStock := data["restaurant_menu_items_out_of_stock"]
	assert.False(t, hasOutOfStock)

	bm.Stop()
	bm.Stop()
}
