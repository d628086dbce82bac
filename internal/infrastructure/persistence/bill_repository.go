package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill with its lines
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a bill and holds a row lock on it until the transaction ends
func (r *GormBillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Lines", orderLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, error) {
	var billModels []models.BillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BillModel{}).Preload("Lines", orderLines),
		filter,
	)

	if err := query.Find(&billModels).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, len(billModels))
	for i := range billModels {
		bills[i] = *billModels[i].ToDomain()
	}
	return bills, nil
}

// Count counts bills matching the filter's search
func (r *GormBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&models.BillModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save upserts the bill row and replaces its line set
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	db := r.db.WithContext(ctx)

	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"paid", "total_price", "version", "updated_at"}),
	}).Create(model).Error; err != nil {
		return err
	}

	stale := db.Where("bill_id = ?", bill.ID)
	if len(model.Lines) > 0 {
		keep := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			keep[i] = model.Lines[i].ID
		}
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.BillLineItemModel{}).Error; err != nil {
		return err
	}

	if len(model.Lines) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit_price", "updated_at"}),
	}).Create(&model.Lines).Error
}

// Delete removes a bill after removing its lines
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("bill_id = ?", id).Delete(&models.BillLineItemModel{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.BillModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountLinesByMenuItem counts lines on any bill that reference the menu item
func (r *GormBillRepository) CountLinesByMenuItem(ctx context.Context, menuItemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BillLineItemModel{}).
		Where("menu_item_id = ?", menuItemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsUnpaidLineForMenuItem reports whether an unpaid bill has a line for the menu item
func (r *GormBillRepository) ExistsUnpaidLineForMenuItem(ctx context.Context, menuItemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BillLineItemModel{}).
		Joins("JOIN bills ON bills.id = bill_line_items.bill_id").
		Where("bill_line_items.menu_item_id = ? AND bills.paid = ?", menuItemID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies search, pagination and ordering to the query
func (r *GormBillRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, BillSortFields, shared.DefaultOrderBy)
	return query.Order("bills." + sortField + " " + ValidateSortOrder(filter.OrderDir))
}

// applySearch keeps bills with a line whose menu item "name description" text contains the key
func (r *GormBillRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := "%" + filter.Search + "%"
	return query.Where(
		`EXISTS (SELECT 1 FROM bill_line_items l JOIN menu_items m ON m.id = l.menu_item_id
		WHERE l.bill_id = bills.id AND (m.name || ' ' || m.description) LIKE ?)`,
		pattern,
	)
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
