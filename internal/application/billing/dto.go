package billing

import (
	"math"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/restaurant/backend/internal/application/catalog"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// OrderItemRequest asks for quantity units of one menu item
type OrderItemRequest struct {
	MenuItemID uuid.UUID `json:"menuItemId" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1,max=1000"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID         uuid.UUID           `json:"id"`
	Paid       bool                `json:"paid"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
	OrderItems []OrderItemResponse `json:"orderItems"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// OrderItemResponse is one bill line. MenuItem.Price carries the price
// captured when the line was added, not the current catalog price.
type OrderItemResponse struct {
	ID       uuid.UUID                   `json:"id"`
	MenuItem *catalogapp.MenuItemResponse `json:"menuItem"`
	Quantity int                         `json:"quantity"`
	Subtotal decimal.Decimal             `json:"subtotal"`
}

// RemoveOrderResponse reports the state of a bill after lines were removed.
// Bill is nil when the last line was removed and the bill was deleted.
type RemoveOrderResponse struct {
	Deleted bool          `json:"deleted"`
	Bill    *BillResponse `json:"bill,omitempty"`
}

// ToBillResponse converts a domain Bill to a response DTO. items supplies the
// menu items referenced by the bill's lines; lines whose item is missing are
// shown with only its id.
func ToBillResponse(b *billing.Bill, items map[uuid.UUID]*catalog.MenuItem) BillResponse {
	lines := make([]OrderItemResponse, 0, len(b.Lines))
	for i := range b.Lines {
		line := &b.Lines[i]

		var menuItem catalogapp.MenuItemResponse
		if item, ok := items[line.MenuItemID]; ok {
			menuItem = catalogapp.ToMenuItemResponse(item)
		} else {
			menuItem = catalogapp.MenuItemResponse{ID: line.MenuItemID}
		}
		menuItem.Price = line.UnitPrice

		lines = append(lines, OrderItemResponse{
			ID:       line.ID,
			MenuItem: &menuItem,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal(),
		})
	}

	return BillResponse{
		ID:         b.ID,
		Paid:       b.Paid,
		TotalPrice: b.TotalPrice,
		OrderItems: lines,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// ToBillResponses converts a slice of domain Bills to response DTOs
func ToBillResponses(bills []billing.Bill, items map[uuid.UUID]*catalog.MenuItem) []BillResponse {
	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = ToBillResponse(&bills[i], items)
	}
	return responses
}

// mergeRequests folds requests for the same menu item into one, keeping first-seen order.
// Sums saturate at math.MaxInt.
func mergeRequests(reqs []OrderItemRequest) []OrderItemRequest {
	merged := make([]OrderItemRequest, 0, len(reqs))
	index := make(map[uuid.UUID]int, len(reqs))
	for _, r := range reqs {
		if i, ok := index[r.MenuItemID]; ok {
			if r.Quantity > math.MaxInt-merged[i].Quantity {
				merged[i].Quantity = math.MaxInt
			} else {
				merged[i].Quantity += r.Quantity
			}
			continue
		}
		index[r.MenuItemID] = len(merged)
		merged = append(merged, r)
	}
	return merged
}
