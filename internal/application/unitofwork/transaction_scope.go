// Package unitofwork lets application services run several repository calls
// inside one database transaction.
package unitofwork

import (
	"context"

	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to the catalog and bill repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories exposes repositories bound to the current transaction.
//
// Menu item stock is the only state shared between bills, so every stock
// decision must read the item through a locking finder of MenuItemRepo.
type Repositories interface {
	MenuItemRepo() catalog.MenuItemRepository
	BillRepo() billing.BillRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// It is used by unit tests.
type NoOpTransactionScope struct {
	menuItemRepo catalog.MenuItemRepository
	billRepo     billing.BillRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(menuItemRepo catalog.MenuItemRepository, billRepo billing.BillRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		menuItemRepo: menuItemRepo,
		billRepo:     billRepo,
	}
}

// Execute runs fn directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// MenuItemRepo returns the menu item repository.
func (s *NoOpTransactionScope) MenuItemRepo() catalog.MenuItemRepository {
	return s.menuItemRepo
}

// BillRepo returns the bill repository.
func (s *NoOpTransactionScope) BillRepo() billing.BillRepository {
	return s.billRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
