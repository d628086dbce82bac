package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks bill activity and the state of the menu.
type BusinessMetrics struct {
	logger *zap.Logger

	billCreatedTotal       *Counter
	billPaidTotal          *Counter
	billRevenueTotal       *FloatCounter
	unitsSoldTotal         *Counter
	menuItemDisabledTotal  *Counter
	menuItemsOutOfStock    *Gauge
	billsUnpaid            *Gauge

	snapshots   SnapshotProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// SnapshotProvider reports the point-in-time values collected periodically.
type SnapshotProvider interface {
	CountOutOfStockMenuItems(ctx context.Context) (int64, error)
	CountUnpaidBills(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter     metric.Meter
	Logger    *zap.Logger
	Snapshots SnapshotProvider
}

// NewBusinessMetrics creates the business instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		logger:    logger,
		snapshots: cfg.Snapshots,
		stopChan:  make(chan struct{}),
	}

	var err error
	if bm.billCreatedTotal, err = NewCounter(cfg.Meter,
		"restaurant_bill_created_total", "Total number of bills opened", "{bills}"); err != nil {
		return nil, err
	}
	if bm.billPaidTotal, err = NewCounter(cfg.Meter,
		"restaurant_bill_paid_total", "Total number of bills paid", "{bills}"); err != nil {
		return nil, err
	}
	if bm.billRevenueTotal, err = NewFloatCounter(cfg.Meter,
		"restaurant_bill_revenue_total", "Sum of paid bill totals", "{currency}"); err != nil {
		return nil, err
	}
	if bm.unitsSoldTotal, err = NewCounter(cfg.Meter,
		"restaurant_units_sold_total", "Menu item units deducted from stock by payments", "{units}"); err != nil {
		return nil, err
	}
	if bm.menuItemDisabledTotal, err = NewCounter(cfg.Meter,
		"restaurant_menu_item_disabled_total", "Menu items disabled instead of deleted", "{items}"); err != nil {
		return nil, err
	}
	if bm.menuItemsOutOfStock, err = NewGauge(cfg.Meter,
		"restaurant_menu_items_out_of_stock", "Enabled menu items with no stock left", "{items}"); err != nil {
		return nil, err
	}
	if bm.billsUnpaid, err = NewGauge(cfg.Meter,
		"restaurant_bills_unpaid", "Bills not yet paid", "{bills}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordBillCreated counts a newly opened bill.
func (bm *BusinessMetrics) RecordBillCreated(ctx context.Context, total decimal.Decimal) {
	bm.billCreatedTotal.Inc(ctx)
	bm.logger.Debug("bill created metric recorded", zap.String("total", total.String()))
}

// RecordBillPaid counts a payment, its total and the units it took from stock.
func (bm *BusinessMetrics) RecordBillPaid(ctx context.Context, total decimal.Decimal, units int64) {
	bm.billPaidTotal.Inc(ctx)
	bm.billRevenueTotal.Add(ctx, total.InexactFloat64())
	if units > 0 {
		bm.unitsSoldTotal.Add(ctx, units)
	}
}

// RecordMenuItemDisabled counts a delete request that fell back to disabling.
func (bm *BusinessMetrics) RecordMenuItemDisabled(ctx context.Context) {
	bm.menuItemDisabledTotal.Inc(ctx)
}

// StartPeriodicCollection samples the snapshot gauges every interval
// until Stop is called or ctx is done. Only the first call starts a loop.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectSnapshots(ctx)
	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectSnapshots(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectSnapshots(ctx context.Context) {
	if bm.snapshots == nil {
		return
	}

	if n, err := bm.snapshots.CountOutOfStockMenuItems(ctx); err != nil {
		bm.logger.Warn("Failed to count out of stock menu items", zap.Error(err))
	} else {
		bm.menuItemsOutOfStock.Record(ctx, n)
	}

	if n, err := bm.snapshots.CountUnpaidBills(ctx); err != nil {
		bm.logger.Warn("Failed to count unpaid bills", zap.Error(err))
	} else {
		bm.billsUnpaid.Record(ctx, n)
	}
}

// Stop ends periodic collection. It is safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics setup error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
