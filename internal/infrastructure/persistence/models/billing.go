package models

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate.
type BillModel struct {
	AggregateModel
	Paid       bool                `gorm:"not null;default:false;index"`
	TotalPrice decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Lines      []BillLineItemModel `gorm:"foreignKey:BillID"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill.
func (m *BillModel) ToDomain() *billing.Bill {
	b := &billing.Bill{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Paid:              m.Paid,
		TotalPrice:        m.TotalPrice,
		Lines:             make([]billing.BillLineItem, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		b.Lines = append(b.Lines, *m.Lines[i].ToDomain())
	}
	return b
}

// FromDomain populates the persistence model from a domain Bill.
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Paid = b.Paid
	m.TotalPrice = b.TotalPrice
	m.Lines = make([]BillLineItemModel, 0, len(b.Lines))
	for i := range b.Lines {
		m.Lines = append(m.Lines, *BillLineItemModelFromDomain(&b.Lines[i]))
	}
}

// BillModelFromDomain creates a new persistence model from a domain Bill.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// BillLineItemModel is the persistence model for a BillLineItem.
type BillLineItemModel struct {
	BaseModel
	BillID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (BillLineItemModel) TableName() string {
	return "bill_line_items"
}

// ToDomain converts the persistence model to a domain BillLineItem.
func (m *BillLineItemModel) ToDomain() *billing.BillLineItem {
	return &billing.BillLineItem{
		BaseEntity: m.BaseModel.ToDomain(),
		BillID:     m.BillID,
		MenuItemID: m.MenuItemID,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
	}
}

// BillLineItemModelFromDomain creates a new persistence model from a domain BillLineItem.
func BillLineItemModelFromDomain(l *billing.BillLineItem) *BillLineItemModel {
	m := &BillLineItemModel{
		BillID:     l.BillID,
		MenuItemID: l.MenuItemID,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}
