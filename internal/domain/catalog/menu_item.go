package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// MaxAttributes is the number of additional attributes a menu item may carry
const MaxAttributes = 5

// MenuItem is a catalog entry with a live stock counter and a price.
// It is the aggregate root for its additional attributes.
type MenuItem struct {
	shared.BaseAggregateRoot
	Name        string
	Image       string
	Description string
	Price       decimal.Decimal
	Stock       int
	Enabled     bool
	Attributes  []AdditionalAttribute
}

// AdditionalAttribute is a named value attached to a single menu item
type AdditionalAttribute struct {
	shared.BaseEntity
	MenuItemID uuid.UUID
	Name       string
	Value      string
}

// AttributeSpec describes an attribute in a create or update request.
// A nil ID asks for a new attribute.
type AttributeSpec struct {
	ID    *uuid.UUID
	Name  string
	Value string
}

// NewMenuItem creates an enabled menu item. Attribute names must be unique within the item.
func NewMenuItem(name, image, description string, price decimal.Decimal, stock int, attrs []AttributeSpec) (*MenuItem, error) {
	if err := CheckAttributeSpecs(attrs); err != nil {
		return nil, err
	}

	item := &MenuItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              NormalizeName(name),
		Image:             image,
		Description:       description,
		Price:             price,
		Stock:             stock,
		Enabled:           true,
	}
	for _, spec := range attrs {
		item.Attributes = append(item.Attributes, item.newAttribute(spec))
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the mutable fields and reconciles attributes by identifier.
// CreatedAt and Enabled are preserved.
func (m *MenuItem) Update(name, image, description string, price decimal.Decimal, stock int, attrs []AttributeSpec) error {
	if err := CheckAttributeSpecs(attrs); err != nil {
		return err
	}

	m.Name = NormalizeName(name)
	m.Image = image
	m.Description = description
	m.Price = price
	m.Stock = stock

	if err := m.reconcileAttributes(attrs); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	m.Touch()
	m.IncrementVersion()
	return nil
}

func (m *MenuItem) reconcileAttributes(specs []AttributeSpec) error {
	existing := make(map[uuid.UUID]AdditionalAttribute, len(m.Attributes))
	for _, attr := range m.Attributes {
		existing[attr.ID] = attr
	}

	reconciled := make([]AdditionalAttribute, 0, len(specs))
	for _, spec := range specs {
		if spec.ID == nil {
			reconciled = append(reconciled, m.newAttribute(spec))
			continue
		}
		attr, ok := existing[*spec.ID]
		if !ok {
			return shared.NewDomainErrorf(shared.CodeNotFound, "AdditionalDetails not found with ID: %s", spec.ID)
		}
		attr.Name = NormalizeName(spec.Name)
		attr.Value = spec.Value
		attr.Touch()
		reconciled = append(reconciled, attr)
	}
	m.Attributes = reconciled
	return nil
}

func (m *MenuItem) newAttribute(spec AttributeSpec) AdditionalAttribute {
	return AdditionalAttribute{
		BaseEntity: shared.NewBaseEntity(),
		MenuItemID: m.ID,
		Name:       NormalizeName(spec.Name),
		Value:      spec.Value,
	}
}

// Validate checks the field invariants of a menu item
func (m *MenuItem) Validate() error {
	if m.Name == "" {
		return shared.NewDomainError(shared.CodeValidation, "Menu name must not be empty")
	}
	if m.Price.IsNegative() {
		return shared.NewDomainError(shared.CodeValidation, "Price must not be null and must be greater than 0")
	}
	if m.Stock < 0 {
		return shared.NewDomainError(shared.CodeValidation, "In stock must not be null and must be greater than or equal to 0")
	}
	if len(m.Attributes) > MaxAttributes {
		return shared.NewDomainErrorf(shared.CodeValidation, "A menu item can have at most %d additional details", MaxAttributes)
	}

	seen := make(map[string]struct{}, len(m.Attributes))
	for _, attr := range m.Attributes {
		if _, dup := seen[attr.Name]; dup {
			return shared.NewDomainErrorf(shared.CodeDuplicateAttribute, "Duplicate additional details name found: %s", attr.Name)
		}
		seen[attr.Name] = struct{}{}
	}
	return nil
}

// Disable retires the item from new orders. Disabled is terminal.
func (m *MenuItem) Disable() error {
	if !m.Enabled {
		return shared.NewDomainError(shared.CodeDisabledItem, "Can't delete disabled menu item")
	}
	m.Enabled = false
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewMenuItemDisabledEvent(m))
	return nil
}

// DeductStock removes qty units from stock through the stock guard
func (m *MenuItem) DeductStock(qty int) error {
	remaining, err := Decrement(m, qty)
	if err != nil {
		return err
	}
	m.Stock = remaining
	m.Touch()
	m.IncrementVersion()
	return nil
}

// CheckAttributeSpecs rejects requests naming the same attribute twice
func CheckAttributeSpecs(specs []AttributeSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		name := NormalizeName(spec.Name)
		if _, dup := seen[name]; dup {
			return shared.NewDomainErrorf(shared.CodeDuplicateAttribute, "Duplicate additional detail name: %s", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// NormalizeName trims surrounding space and converts to NFC so that visually
// identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
