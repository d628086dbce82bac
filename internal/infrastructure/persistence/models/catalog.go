package models

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// MenuItemModel is the persistence model for the MenuItem aggregate.
type MenuItemModel struct {
	AggregateModel
	Name        string                   `gorm:"type:varchar(255);not null;uniqueIndex:idx_menu_items_name"`
	Image       string                   `gorm:"type:varchar(1024);not null"`
	Description string                   `gorm:"type:text;not null"`
	Price       decimal.Decimal          `gorm:"type:decimal(10,2);not null"`
	Stock       int                      `gorm:"not null;default:0"`
	Enabled     bool                     `gorm:"not null;default:true"`
	Attributes  []MenuItemAttributeModel `gorm:"foreignKey:MenuItemID"`
}

// TableName returns the table name for GORM
func (MenuItemModel) TableName() string {
	return "menu_items"
}

// ToDomain converts the persistence model to a domain MenuItem.
// Attributes are included when they were preloaded.
func (m *MenuItemModel) ToDomain() *catalog.MenuItem {
	item := &catalog.MenuItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Image:             m.Image,
		Description:       m.Description,
		Price:             m.Price,
		Stock:             m.Stock,
		Enabled:           m.Enabled,
		Attributes:        make([]catalog.AdditionalAttribute, 0, len(m.Attributes)),
	}
	for i := range m.Attributes {
		item.Attributes = append(item.Attributes, *m.Attributes[i].ToDomain())
	}
	return item
}

// FromDomain populates the persistence model from a domain MenuItem.
func (m *MenuItemModel) FromDomain(item *catalog.MenuItem) {
	m.FromDomainAggregateRoot(item.BaseAggregateRoot)
	m.Name = item.Name
	m.Image = item.Image
	m.Description = item.Description
	m.Price = item.Price
	m.Stock = item.Stock
	m.Enabled = item.Enabled
	m.Attributes = make([]MenuItemAttributeModel, 0, len(item.Attributes))
	for i := range item.Attributes {
		m.Attributes = append(m.Attributes, *MenuItemAttributeModelFromDomain(&item.Attributes[i]))
	}
}

// MenuItemModelFromDomain creates a new persistence model from a domain MenuItem.
func MenuItemModelFromDomain(item *catalog.MenuItem) *MenuItemModel {
	m := &MenuItemModel{}
	m.FromDomain(item)
	return m
}

// MenuItemAttributeModel is the persistence model for an AdditionalAttribute.
type MenuItemAttributeModel struct {
	BaseModel
	MenuItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Value      string    `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (MenuItemAttributeModel) TableName() string {
	return "menu_item_attributes"
}

// ToDomain converts the persistence model to a domain AdditionalAttribute.
func (m *MenuItemAttributeModel) ToDomain() *catalog.AdditionalAttribute {
	return &catalog.AdditionalAttribute{
		BaseEntity: m.BaseModel.ToDomain(),
		MenuItemID: m.MenuItemID,
		Name:       m.Name,
		Value:      m.Value,
	}
}

// MenuItemAttributeModelFromDomain creates a new persistence model from a domain AdditionalAttribute.
func MenuItemAttributeModelFromDomain(a *catalog.AdditionalAttribute) *MenuItemAttributeModel {
	m := &MenuItemAttributeModel{
		MenuItemID: a.MenuItemID,
		Name:       a.Name,
		Value:      a.Value,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}
