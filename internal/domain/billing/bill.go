package billing

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Bill is a customer order. It exclusively owns its line items and is never
// persisted without at least one of them.
type Bill struct {
	shared.BaseAggregateRoot
	Paid       bool
	TotalPrice decimal.Decimal
	Lines      []BillLineItem
}

// BillLineItem is a quantity of one menu item within a bill.
// UnitPrice is the menu item's price when the line was added.
type BillLineItem struct {
	shared.BaseEntity
	BillID     uuid.UUID
	MenuItemID uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
}

// Subtotal returns UnitPrice × Quantity
func (l *BillLineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewBill creates an unpaid bill with no lines
func NewBill() *Bill {
	return &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TotalPrice:        decimal.Zero,
		Lines:             make([]BillLineItem, 0),
	}
}

// AddLine adds qty units of item. When the bill already has a line for the
// item its quantity grows and the combined quantity is checked against stock;
// otherwise a new line snapshots the item's current price.
func (b *Bill) AddLine(item *catalog.MenuItem, qty int) error {
	if b.Paid {
		return shared.NewDomainError(shared.CodeBillAlreadyPaid, "The order items in the paid bill cannot be updated!")
	}
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be greater than 0")
	}
	if !item.Enabled {
		return shared.NewDomainErrorf(shared.CodeDisabledItem, "Menu item %s is no longer available", item.Name)
	}

	if line := b.findLine(item.ID); line != nil {
		if qty > item.Stock-line.Quantity {
			return shared.NewDomainErrorf(shared.CodeInsufficientStock, "Not enough items in stock for menu item: %s", item.Name)
		}
		line.Quantity += qty
		line.Touch()
	} else {
		if err := catalog.CheckAvailable(item, qty); err != nil {
			return err
		}
		b.Lines = append(b.Lines, BillLineItem{
			BaseEntity: shared.NewBaseEntity(),
			BillID:     b.ID,
			MenuItemID: item.ID,
			Quantity:   qty,
			UnitPrice:  item.Price,
		})
	}

	b.recalculateTotal()
	return nil
}

// RemoveLine subtracts qty units from the line for menuItemID. A line whose
// quantity reaches zero or below is dropped.
func (b *Bill) RemoveLine(menuItemID uuid.UUID, qty int) error {
	if b.Paid {
		return shared.NewDomainError(shared.CodeBillAlreadyPaid, "The order item in the paid bill cannot be deleted!")
	}
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeValidation, "Quantity must be greater than 0")
	}

	for i := range b.Lines {
		if b.Lines[i].MenuItemID != menuItemID {
			continue
		}
		remaining := b.Lines[i].Quantity - qty
		if remaining <= 0 {
			b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
		} else {
			b.Lines[i].Quantity = remaining
			b.Lines[i].Touch()
		}
		b.recalculateTotal()
		return nil
	}

	return shared.NewDomainErrorf(shared.CodeLineNotFound, "Can't find menu item id: %s in bill %s", menuItemID, b.ID)
}

// Pay checks every line against the locked menu items, decrements their stock
// and marks the bill paid. Nothing is modified unless every line passes.
func (b *Bill) Pay(items map[uuid.UUID]*catalog.MenuItem) error {
	if b.Paid {
		return shared.NewDomainErrorf(shared.CodeBillAlreadyPaid, "Bill id: %s has been paid", b.ID)
	}
	if b.IsEmpty() {
		return shared.NewDomainError(shared.CodeEmptyOrder, "Can not create bill with none order items!")
	}

	for i := range b.Lines {
		item, ok := items[b.Lines[i].MenuItemID]
		if !ok {
			return shared.NewDomainErrorf(shared.CodeNotFound, "Can not found menu item with id: %s", b.Lines[i].MenuItemID)
		}
		if err := catalog.CheckAvailable(item, b.Lines[i].Quantity); err != nil {
			return err
		}
	}
	for i := range b.Lines {
		if err := items[b.Lines[i].MenuItemID].DeductStock(b.Lines[i].Quantity); err != nil {
			return err
		}
	}

	b.Paid = true
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaidEvent(b))
	return nil
}

// MenuItemIDs returns the distinct menu items referenced by the bill's lines
func (b *Bill) MenuItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Lines))
	seen := make(map[uuid.UUID]struct{}, len(b.Lines))
	for _, line := range b.Lines {
		if _, ok := seen[line.MenuItemID]; ok {
			continue
		}
		seen[line.MenuItemID] = struct{}{}
		ids = append(ids, line.MenuItemID)
	}
	return ids
}

// IsEmpty reports whether the bill has no lines left
func (b *Bill) IsEmpty() bool {
	return len(b.Lines) == 0
}

// LineCount returns the number of lines
func (b *Bill) LineCount() int {
	return len(b.Lines)
}

func (b *Bill) findLine(menuItemID uuid.UUID) *BillLineItem {
	for i := range b.Lines {
		if b.Lines[i].MenuItemID == menuItemID {
			return &b.Lines[i]
		}
	}
	return nil
}

func (b *Bill) recalculateTotal() {
	total := decimal.Zero
	for i := range b.Lines {
		total = total.Add(b.Lines[i].Subtotal())
	}
	b.TotalPrice = total
	b.Touch()
}
