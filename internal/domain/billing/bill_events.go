package billing

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeBill identifies bill events
const AggregateTypeBill = "Bill"

// Event type constants
const (
	EventTypeBillCreated = "bill.created"
	EventTypeBillPaid    = "bill.paid"
	EventTypeBillDeleted = "bill.deleted"
)

// PaidLine is a line as it was settled
type PaidLine struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// BillCreatedEvent is published after a new bill is stored
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	LineCount  int             `json:"line_count"`
}

// NewBillCreatedEvent creates a new BillCreatedEvent
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCreated, AggregateTypeBill, b.ID),
		BillID:          b.ID,
		TotalPrice:      b.TotalPrice,
		LineCount:       b.LineCount(),
	}
}

// BillPaidEvent is published once a bill's stock has been taken
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Lines      []PaidLine      `json:"lines"`
}

// NewBillPaidEvent creates a new BillPaidEvent
func NewBillPaidEvent(b *Bill) *BillPaidEvent {
	lines := make([]PaidLine, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, PaidLine{MenuItemID: l.MenuItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaid, AggregateTypeBill, b.ID),
		BillID:          b.ID,
		TotalPrice:      b.TotalPrice,
		Lines:           lines,
	}
}

// BillDeletedEvent is published when a bill is removed, either explicitly or
// because its last line was removed
type BillDeletedEvent struct {
	shared.BaseDomainEvent
	BillID uuid.UUID `json:"bill_id"`
}

// NewBillDeletedEvent creates a new BillDeletedEvent
func NewBillDeletedEvent(b *Bill) *BillDeletedEvent {
	return &BillDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillDeleted, AggregateTypeBill, b.ID),
		BillID:          b.ID,
	}
}
