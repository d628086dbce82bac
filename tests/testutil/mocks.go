package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockMenuItemRepository is a mock implementation of catalog.MenuItemRepository
type MockMenuItemRepository struct {
	mock.Mock
}

func (m *MockMenuItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.MenuItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuItemRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMenuItemRepository) FindAttributesByMenuItemID(ctx context.Context, menuItemID uuid.UUID) ([]catalog.AdditionalAttribute, error) {
	args := m.Called(ctx, menuItemID)
	return args.Get(0).([]catalog.AdditionalAttribute), args.Error(1)
}

func (m *MockMenuItemRepository) Save(ctx context.Context, item *catalog.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMenuItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBillRepository is a mock implementation of billing.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBillRepository) CountLinesByMenuItem(ctx context.Context, menuItemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, menuItemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) ExistsUnpaidLineForMenuItem(ctx context.Context, menuItemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, menuItemID)
	return args.Bool(0), args.Error(1)
}

// RecordingEventPublisher keeps every published event in memory
type RecordingEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewRecordingEventPublisher creates an empty RecordingEventPublisher
func NewRecordingEventPublisher() *RecordingEventPublisher {
	return &RecordingEventPublisher{}
}

// Publish records events, returning the configured error if any
func (p *RecordingEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// SetError makes subsequent Publish calls fail with err
func (p *RecordingEventPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// EventTypes returns the types of recorded events in publish order
func (p *RecordingEventPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

// Events returns a copy of the recorded events
func (p *RecordingEventPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

var (
	_ catalog.MenuItemRepository = (*MockMenuItemRepository)(nil)
	_ billing.BillRepository     = (*MockBillRepository)(nil)
	_ shared.EventPublisher      = (*RecordingEventPublisher)(nil)
)
