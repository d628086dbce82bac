package catalog

import "github.com/restaurant/backend/internal/domain/shared"

// CheckAvailable fails with INSUFFICIENT_STOCK when requested exceeds the item's stock
func CheckAvailable(item *MenuItem, requested int) error {
	if requested > item.Stock {
		return shared.NewDomainErrorf(shared.CodeInsufficientStock, "Not enough items in stock for menu item: %s", item.Name)
	}
	return nil
}

// Decrement returns the stock left after removing qty units.
// The item is not modified.
func Decrement(item *MenuItem, qty int) (int, error) {
	if qty < 0 {
		return item.Stock, shared.NewDomainError(shared.CodeValidation, "Quantity must be greater than 0")
	}
	if err := CheckAvailable(item, qty); err != nil {
		return item.Stock, err
	}
	return item.Stock - qty, nil
}
