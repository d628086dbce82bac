package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

// MenuItemRepository defines the interface for menu item persistence
type MenuItemRepository interface {
	// FindByID loads a menu item with its attributes
	FindByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)

	// FindByIDForUpdate loads a menu item and locks its row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*MenuItem, error)

	// FindByIDsForUpdate locks several rows in ascending id order.
	// Missing ids are silently skipped; callers compare lengths.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]MenuItem, error)

	// FindByIDs loads several items without locking, including disabled ones
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]MenuItem, error)

	// FindAll returns items matching the filter. A non-positive PageSize disables paging.
	FindAll(ctx context.Context, filter shared.Filter) ([]MenuItem, error)

	// Count returns the number of items matching the filter's search
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByName reports whether another item already uses name.
	// excludeID, when set, is ignored in the check.
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// FindAttributesByMenuItemID returns the attributes owned by a menu item
	FindAttributesByMenuItemID(ctx context.Context, menuItemID uuid.UUID) ([]AdditionalAttribute, error)

	// Save creates or updates the item and replaces its attribute set
	Save(ctx context.Context, item *MenuItem) error

	// Delete removes the item and its attributes
	Delete(ctx context.Context, id uuid.UUID) error
}
