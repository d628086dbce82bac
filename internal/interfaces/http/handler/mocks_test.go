package handler

import (
	"context"

	"github.com/google/uuid"
	billingapp "github.com/restaurant/backend/internal/application/billing"
	catalogapp "github.com/restaurant/backend/internal/application/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type mockMenuItemService struct {
	mock.Mock
}

func (m *mockMenuItemService) Create(ctx context.Context, req catalogapp.MenuItemRequest) (*catalogapp.MenuItemResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.MenuItemResponse), args.Error(1)
}

func (m *mockMenuItemService) Update(ctx context.Context, id uuid.UUID, req catalogapp.MenuItemRequest) (*catalogapp.MenuItemResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.MenuItemResponse), args.Error(1)
}

func (m *mockMenuItemService) Delete(ctx context.Context, id uuid.UUID) (*catalogapp.DeleteMenuItemResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.DeleteMenuItemResponse), args.Error(1)
}

func (m *mockMenuItemService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.MenuItemResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.MenuItemResponse), args.Error(1)
}

func (m *mockMenuItemService) List(ctx context.Context) ([]catalogapp.MenuItemResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.MenuItemResponse), args.Error(1)
}

func (m *mockMenuItemService) ListPage(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalogapp.MenuItemResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[catalogapp.MenuItemResponse]), args.Error(1)
}

func (m *mockMenuItemService) ImageUploadURL(ctx context.Context, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImageUploadResponse), args.Error(1)
}

type mockBillService struct {
	mock.Mock
}

func (m *mockBillService) Create(ctx context.Context, reqs []billingapp.OrderItemRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.BillResponse), args.Error(1)
}

func (m *mockBillService) AddLines(ctx context.Context, billID uuid.UUID, reqs []billingapp.OrderItemRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, billID, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.BillResponse), args.Error(1)
}

func (m *mockBillService) RemoveLines(ctx context.Context, billID uuid.UUID, reqs []billingapp.OrderItemRequest) (*billingapp.RemoveOrderResponse, error) {
	args := m.Called(ctx, billID, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.RemoveOrderResponse), args.Error(1)
}

func (m *mockBillService) Pay(ctx context.Context, billID uuid.UUID) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.BillResponse), args.Error(1)
}

func (m *mockBillService) Delete(ctx context.Context, billID uuid.UUID) error {
	return m.Called(ctx, billID).Error(0)
}

func (m *mockBillService) GetByID(ctx context.Context, billID uuid.UUID) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.BillResponse), args.Error(1)
}

func (m *mockBillService) List(ctx context.Context) ([]billingapp.BillResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billingapp.BillResponse), args.Error(1)
}

func (m *mockBillService) ListPage(ctx context.Context, filter shared.Filter) (*shared.Paginated[billingapp.BillResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billingapp.BillResponse]), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

var (
	_ MenuItemService = (*mockMenuItemService)(nil)
	_ BillService     = (*mockBillService)(nil)
)
