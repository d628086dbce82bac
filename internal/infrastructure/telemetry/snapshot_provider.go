package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormSnapshotProvider answers SnapshotProvider with aggregate queries.
type GormSnapshotProvider struct {
	db *gorm.DB
}

// NewGormSnapshotProvider creates a new GormSnapshotProvider.
func NewGormSnapshotProvider(db *gorm.DB) *GormSnapshotProvider {
	return &GormSnapshotProvider{db: db}
}

// CountOutOfStockMenuItems counts enabled menu items whose stock is exhausted.
func (p *GormSnapshotProvider) CountOutOfStockMenuItems(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("menu_items").
		Where("enabled = ? AND stock <= 0", true).
		Count(&count).Error
	return count, err
}

// CountUnpaidBills counts bills that have not been paid.
func (p *GormSnapshotProvider) CountUnpaidBills(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("bills").
		Where("paid = ?", false).
		Count(&count).Error
	return count, err
}

var _ SnapshotProvider = (*GormSnapshotProvider)(nil)
