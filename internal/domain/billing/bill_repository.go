package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

// BillRepository defines the interface for bill persistence.
// Bills are always loaded and saved together with their lines.
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindByIDForUpdate locks the bill row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindAll returns bills matching the filter. Filter.Search matches the
	// name or description of any menu item on the bill.
	FindAll(ctx context.Context, filter shared.Filter) ([]Bill, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save writes the bill and replaces its line set
	Save(ctx context.Context, bill *Bill) error

	// Delete removes the bill's lines and then the bill
	Delete(ctx context.Context, id uuid.UUID) error

	// CountLinesByMenuItem counts lines in any bill referencing the menu item
	CountLinesByMenuItem(ctx context.Context, menuItemID uuid.UUID) (int64, error)

	// ExistsUnpaidLineForMenuItem reports whether an unpaid bill references the menu item
	ExistsUnpaidLineForMenuItem(ctx context.Context, menuItemID uuid.UUID) (bool, error)
}
