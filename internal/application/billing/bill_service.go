// Package billing holds the application service that manages bills and keeps
// their lines consistent with menu item stock.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MenuItemCacheInvalidator drops cached menu items whose stock changed
type MenuItemCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

// BillService handles bill operations
type BillService struct {
	txScope         unitofwork.TransactionScope
	billRepo        billing.BillRepository
	menuItemRepo    catalog.MenuItemRepository
	deletionPolicy  billing.DeletionPolicy
	now             func() time.Time
	cache           MenuItemCacheInvalidator
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewBillService creates a new BillService
func NewBillService(
	txScope unitofwork.TransactionScope,
	billRepo billing.BillRepository,
	menuItemRepo catalog.MenuItemRepository,
	deletionPolicy billing.DeletionPolicy,
) *BillService {
	return &BillService{
		txScope:        txScope,
		billRepo:       billRepo,
		menuItemRepo:   menuItemRepo,
		deletionPolicy: deletionPolicy,
		now:            time.Now,
	}
}

// SetMenuItemCache sets the cache invalidated when payment changes stock
func (s *BillService) SetMenuItemCache(cache MenuItemCacheInvalidator) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BillService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *BillService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create opens a bill with the requested lines. Stock is checked but not taken.
func (s *BillService) Create(ctx context.Context, reqs []OrderItemRequest) (*BillResponse, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError(shared.CodeEmptyOrder, "Can not create bill with none order items!")
	}
	reqs = mergeRequests(reqs)

	var (
		bill  *billing.Bill
		items map[uuid.UUID]*catalog.MenuItem
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		items, err = lockMenuItems(ctx, repos.MenuItemRepo(), requestedIDs(reqs))
		if err != nil {
			return err
		}

		bill = billing.NewBill()
		if err := addLines(bill, reqs, items); err != nil {
			return err
		}
		bill.AddDomainEvent(billing.NewBillCreatedEvent(bill))

		return repos.BillRepo().Save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, bill)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordBillCreated(ctx, bill.TotalPrice)
	}

	logger.L(ctx).Info("Bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.Int("lines", bill.LineCount()),
		zap.String("total", bill.TotalPrice.String()),
	)

	resp := ToBillResponse(bill, items)
	return &resp, nil
}

// AddLines adds order items to an unpaid bill, checking each against current stock
func (s *BillService) AddLines(ctx context.Context, billID uuid.UUID, reqs []OrderItemRequest) (*BillResponse, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError(shared.CodeEmptyRequest, "List of order items to add is empty.")
	}
	reqs = mergeRequests(reqs)

	var (
		bill  *billing.Bill
		items map[uuid.UUID]*catalog.MenuItem
		err   error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.BillLabels("bill.add_lines", billID.String()), func(ctx context.Context) {
		err = s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
			var err error
			bill, err = findBillForUpdate(ctx, repos.BillRepo(), billID)
			if err != nil {
				return err
			}
			if bill.Paid {
				return shared.NewDomainError(shared.CodeBillAlreadyPaid, "The order items in the paid bill cannot be updated!")
			}

			locked, err := lockMenuItems(ctx, repos.MenuItemRepo(), requestedIDs(reqs))
			if err != nil {
				return err
			}
			if err := addLines(bill, reqs, locked); err != nil {
				return err
			}
			if err := repos.BillRepo().Save(ctx, bill); err != nil {
				return err
			}

			items, err = loadMenuItems(ctx, repos.MenuItemRepo(), bill.MenuItemIDs())
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	resp := ToBillResponse(bill, items)
	return &resp, nil
}

// RemoveLines subtracts quantities from a bill's lines. Removing the last
// line deletes the bill.
func (s *BillService) RemoveLines(ctx context.Context, billID uuid.UUID, reqs []OrderItemRequest) (*RemoveOrderResponse, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError(shared.CodeEmptyRequest, "List of order items to remove is empty.")
	}
	reqs = mergeRequests(reqs)

	var (
		bill    *billing.Bill
		items   map[uuid.UUID]*catalog.MenuItem
		deleted bool
	)
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		bill, err = findBillForUpdate(ctx, repos.BillRepo(), billID)
		if err != nil {
			return err
		}

		for _, req := range reqs {
			if err := bill.RemoveLine(req.MenuItemID, req.Quantity); err != nil {
				return err
			}
		}

		if bill.IsEmpty() {
			deleted = true
			bill.AddDomainEvent(billing.NewBillDeletedEvent(bill))
			return repos.BillRepo().Delete(ctx, bill.ID)
		}

		if err := repos.BillRepo().Save(ctx, bill); err != nil {
			return err
		}
		items, err = loadMenuItems(ctx, repos.MenuItemRepo(), bill.MenuItemIDs())
		return err
	})
	if err != nil {
		return nil, err
	}

	if deleted {
		s.publish(ctx, bill)
		logger.L(ctx).Info("Bill deleted after its last line was removed", zap.String("bill_id", billID.String()))
		return &RemoveOrderResponse{Deleted: true}, nil
	}

	resp := ToBillResponse(bill, items)
	return &RemoveOrderResponse{Bill: &resp}, nil
}

// Pay takes the stock for every line and marks the bill paid.
// Menu item rows are locked for the whole transaction, so either every
// decrement commits together with the paid flag or none does.
func (s *BillService) Pay(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	var (
		bill  *billing.Bill
		items map[uuid.UUID]*catalog.MenuItem
		units int64
		err   error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.BillLabels("bill.pay", billID.String()), func(ctx context.Context) {
		err = s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
			var err error
			bill, err = findBillForUpdate(ctx, repos.BillRepo(), billID)
			if err != nil {
				return err
			}
			if bill.Paid {
				return shared.NewDomainErrorf(shared.CodeBillAlreadyPaid, "Bill id: %s has been paid", bill.ID)
			}

			items, err = lockMenuItems(ctx, repos.MenuItemRepo(), bill.MenuItemIDs())
			if err != nil {
				return err
			}
			if err := bill.Pay(items); err != nil {
				return err
			}

			for _, line := range bill.Lines {
				units += int64(line.Quantity)
				if err := repos.MenuItemRepo().Save(ctx, items[line.MenuItemID]); err != nil {
					return err
				}
			}
			return repos.BillRepo().Save(ctx, bill)
		})
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, bill.MenuItemIDs()...)
	}
	s.publish(ctx, bill)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordBillPaid(ctx, bill.TotalPrice, units)
	}

	logger.L(ctx).Info("Bill paid",
		zap.String("bill_id", bill.ID.String()),
		zap.String("total", bill.TotalPrice.String()),
		zap.Int64("units", units),
	)

	resp := ToBillResponse(bill, items)
	return &resp, nil
}

// Delete removes an unpaid bill once its grace period has passed
func (s *BillService) Delete(ctx context.Context, billID uuid.UUID) error {
	var bill *billing.Bill
	err := s.txScope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		bill, err = findBillForUpdate(ctx, repos.BillRepo(), billID)
		if err != nil {
			return err
		}
		if err := s.deletionPolicy.Check(bill, s.now()); err != nil {
			return err
		}
		bill.AddDomainEvent(billing.NewBillDeletedEvent(bill))
		return repos.BillRepo().Delete(ctx, bill.ID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, bill)
	logger.L(ctx).Info("Bill deleted", zap.String("bill_id", billID.String()))
	return nil
}

// GetByID returns a bill with its lines
func (s *BillService) GetByID(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, mapBillNotFound(err, billID)
	}

	items, err := loadMenuItems(ctx, s.menuItemRepo, bill.MenuItemIDs())
	if err != nil {
		return nil, err
	}

	resp := ToBillResponse(bill, items)
	return &resp, nil
}

// List returns every bill in creation order
func (s *BillService) List(ctx context.Context) ([]BillResponse, error) {
	bills, err := s.billRepo.FindAll(ctx, shared.Filter{OrderBy: "created_at", OrderDir: "asc"})
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, bills)
}

// ListPage returns one page of bills. A search key that matches no menu item
// on any bill is reported as not found.
func (s *BillService) ListPage(ctx context.Context, filter shared.Filter) (*shared.Paginated[BillResponse], error) {
	total, err := s.billRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 && filter.Search != "" {
		return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Can not found bill with menu item name: %s", filter.Search)
	}

	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses, err := s.toResponses(ctx, bills)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *BillService) toResponses(ctx context.Context, bills []billing.Bill) ([]BillResponse, error) {
	ids := make([]uuid.UUID, 0)
	for i := range bills {
		ids = append(ids, bills[i].MenuItemIDs()...)
	}
	items, err := loadMenuItems(ctx, s.menuItemRepo, ids)
	if err != nil {
		return nil, err
	}
	return ToBillResponses(bills, items), nil
}

func (s *BillService) publish(ctx context.Context, bill *billing.Bill) {
	events := bill.GetDomainEvents()
	bill.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish bill events",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err),
		)
	}
}

func addLines(bill *billing.Bill, reqs []OrderItemRequest, items map[uuid.UUID]*catalog.MenuItem) error {
	for _, req := range reqs {
		if err := bill.AddLine(items[req.MenuItemID], req.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func requestedIDs(reqs []OrderItemRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.MenuItemID)
	}
	return ids
}

func findBillForUpdate(ctx context.Context, repo billing.BillRepository, id uuid.UUID) (*billing.Bill, error) {
	bill, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, mapBillNotFound(err, id)
	}
	return bill, nil
}

func mapBillNotFound(err error, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainErrorf(shared.CodeNotFound, "Bill not found with id: %s", id)
	}
	return err
}

// lockMenuItems locks the rows of ids and fails with NOT_FOUND naming the first missing id
func lockMenuItems(ctx context.Context, repo catalog.MenuItemRepository, ids []uuid.UUID) (map[uuid.UUID]*catalog.MenuItem, error) {
	found, err := repo.FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := indexMenuItems(found)
	for _, id := range ids {
		if _, ok := items[id]; !ok {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Can not found menu item with id: %s", id)
		}
	}
	return items, nil
}

func loadMenuItems(ctx context.Context, repo catalog.MenuItemRepository, ids []uuid.UUID) (map[uuid.UUID]*catalog.MenuItem, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*catalog.MenuItem{}, nil
	}
	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return indexMenuItems(found), nil
}

func indexMenuItems(found []catalog.MenuItem) map[uuid.UUID]*catalog.MenuItem {
	items := make(map[uuid.UUID]*catalog.MenuItem, len(found))
	for i := range found {
		items[found[i].ID] = &found[i]
	}
	return items
}
