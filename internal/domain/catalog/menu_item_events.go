package catalog

import (
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
)

// AggregateTypeMenuItem identifies menu item events
const AggregateTypeMenuItem = "MenuItem"

// EventTypeMenuItemDisabled is emitted when a menu item is retired instead of deleted
const EventTypeMenuItemDisabled = "menu_item.disabled"

// MenuItemDisabledEvent is published when a menu item with bill history is retired
type MenuItemDisabledEvent struct {
	shared.BaseDomainEvent
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
}

// NewMenuItemDisabledEvent creates a new MenuItemDisabledEvent
func NewMenuItemDisabledEvent(item *MenuItem) *MenuItemDisabledEvent {
	return &MenuItemDisabledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMenuItemDisabled, AggregateTypeMenuItem, item.ID),
		MenuItemID:      item.ID,
		Name:            item.Name,
	}
}
