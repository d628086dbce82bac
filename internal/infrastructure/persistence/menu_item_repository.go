package persistence

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMenuItemRepository implements MenuItemRepository using GORM
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewGormMenuItemRepository creates a new GormMenuItemRepository
func NewGormMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// FindByID finds a menu item by its ID
func (r *GormMenuItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Preload("Attributes", orderAttributes).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a menu item and holds a row lock on it until the transaction ends
func (r *GormMenuItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Attributes", orderAttributes).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks the menu items with the given IDs in ascending id
// order, so concurrent payments touching the same items cannot deadlock.
func (r *GormMenuItemRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.MenuItem, error) {
	if len(ids) == 0 {
		return []catalog.MenuItem{}, nil
	}

	var itemModels []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Attributes", orderAttributes).
		Where("id IN ?", sortedIDs(ids)).
		Order("id ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toMenuItems(itemModels), nil
}

// FindByIDs finds multiple menu items by their IDs
func (r *GormMenuItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.MenuItem, error) {
	if len(ids) == 0 {
		return []catalog.MenuItem{}, nil
	}

	var itemModels []models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Preload("Attributes", orderAttributes).
		Where("id IN ?", ids).
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toMenuItems(itemModels), nil
}

// FindAll finds all menu items matching the filter
func (r *GormMenuItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.MenuItem, error) {
	var itemModels []models.MenuItemModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MenuItemModel{}).Preload("Attributes", orderAttributes),
		filter,
	)

	if err := query.Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toMenuItems(itemModels), nil
}

// Count counts menu items matching the filter's search
func (r *GormMenuItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&models.MenuItemModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks whether a menu item with the given name exists, optionally ignoring one item
func (r *GormMenuItemRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.MenuItemModel{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAttributesByMenuItemID returns the attributes of a menu item in creation order
func (r *GormMenuItemRepository) FindAttributesByMenuItemID(ctx context.Context, menuItemID uuid.UUID) ([]catalog.AdditionalAttribute, error) {
	var attrModels []models.MenuItemAttributeModel
	if err := r.db.WithContext(ctx).
		Where("menu_item_id = ?", menuItemID).
		Order("created_at ASC").
		Find(&attrModels).Error; err != nil {
		return nil, err
	}

	attrs := make([]catalog.AdditionalAttribute, len(attrModels))
	for i := range attrModels {
		attrs[i] = *attrModels[i].ToDomain()
	}
	return attrs, nil
}

// Save creates a new menu item or updates an existing one, then replaces its attribute set.
// Updates are guarded by the item version and fail with a concurrency conflict when the
// stored version is not the one the item was loaded with.
func (r *GormMenuItemRepository) Save(ctx context.Context, item *catalog.MenuItem) error {
	model := models.MenuItemModelFromDomain(item)
	db := r.db.WithContext(ctx)

	if item.GetVersion() <= 1 {
		if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
			return translateMenuItemError(err, item.Name)
		}
	} else {
		result := db.Model(&models.MenuItemModel{}).
			Where("id = ? AND version = ?", item.ID, item.Version-1).
			Updates(map[string]interface{}{
				"name":        model.Name,
				"image":       model.Image,
				"description": model.Description,
				"price":       model.Price,
				"stock":       model.Stock,
				"enabled":     model.Enabled,
				"version":     model.Version,
				"updated_at":  model.UpdatedAt,
			})
		if result.Error != nil {
			return translateMenuItemError(result.Error, item.Name)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "Menu item was modified by another transaction")
		}
	}

	return r.replaceAttributes(db, item.ID, model.Attributes)
}

// Delete removes a menu item after removing its attributes
func (r *GormMenuItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("menu_item_id = ?", id).Delete(&models.MenuItemAttributeModel{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.MenuItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormMenuItemRepository) replaceAttributes(db *gorm.DB, menuItemID uuid.UUID, attrs []models.MenuItemAttributeModel) error {
	stale := db.Where("menu_item_id = ?", menuItemID)
	if len(attrs) > 0 {
		keep := make([]uuid.UUID, len(attrs))
		for i := range attrs {
			keep[i] = attrs[i].ID
		}
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.MenuItemAttributeModel{}).Error; err != nil {
		return err
	}

	if len(attrs) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "value", "updated_at"}),
	}).Create(&attrs).Error
}

// applyFilter applies search, pagination and ordering to the query
func (r *GormMenuItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, MenuItemSortFields, shared.DefaultOrderBy)
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

// applySearch matches the search key against "id name description"
func (r *GormMenuItemRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := "%" + filter.Search + "%"
	return query.Where("(CAST(id AS TEXT) || ' ' || name || ' ' || description) LIKE ?", pattern)
}

func orderAttributes(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func toMenuItems(itemModels []models.MenuItemModel) []catalog.MenuItem {
	items := make([]catalog.MenuItem, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items
}

func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return sorted
}

func translateMenuItemError(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainErrorf(shared.CodeDuplicateMenuItemName, "Menu item with name %s already exists.", name)
	}
	return err
}

// Ensure GormMenuItemRepository implements MenuItemRepository
var _ catalog.MenuItemRepository = (*GormMenuItemRepository)(nil)
