package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testImageBase = "https://images.example.com/menu/"

type stubImageStorage struct {
	uploadErr error
}

func (s *stubImageStorage) PublicURL(key string) string {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return testImageBase + key
}

func (s *stubImageStorage) GenerateUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, time.Time, error) {
	if s.uploadErr != nil {
		return "", time.Time{}, s.uploadErr
	}
	return "https://upload.example.com/" + key + "?sig=abc", time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

type mapCache struct {
	items       map[uuid.UUID]*MenuItemResponse
	invalidated []uuid.UUID
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[uuid.UUID]*MenuItemResponse)}
}

func (c *mapCache) Get(_ context.Context, id uuid.UUID) (*MenuItemResponse, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *mapCache) Set(_ context.Context, item *MenuItemResponse) {
	c.items[item.ID] = item
}

func (c *mapCache) Invalidate(_ context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		delete(c.items, id)
	}
	c.invalidated = append(c.invalidated, ids...)
}

type menuItemServiceFixture struct {
	service  *MenuItemService
	items    *testutil.MockMenuItemRepository
	bills    *testutil.MockBillRepository
	cache    *mapCache
	events   *testutil.RecordingEventPublisher
}

func newMenuItemServiceFixture() *menuItemServiceFixture {
	items := new(testutil.MockMenuItemRepository)
	bills := new(testutil.MockBillRepository)
	cache := newMapCache()
	events := testutil.NewRecordingEventPublisher()

	service := NewMenuItemService(unitofwork.NewNoOpTransactionScope(items, bills), items, &stubImageStorage{})
	service.SetCache(cache)
	service.SetEventPublisher(events)

	return &menuItemServiceFixture{service: service, items: items, bills: bills, cache: cache, events: events}
}

func intPtr(v int) *int { return &v }

func pizzaRequest() MenuItemRequest {
	return MenuItemRequest{
		Name:        "Pizza",
		Image:       "pizza.png",
		Description: "Cheese pizza",
		Price:       decimal.NewFromInt(10),
		InStock:     intPtr(5),
		AdditionalDetails: []AdditionalDetailRequest{
			{Name: "size", Value: "large"},
		},
	}
}

func existingPizza(t *testing.T) *catalog.MenuItem {
	t.Helper()
	item, err := catalog.NewMenuItem("Pizza", testImageBase+"pizza.png", "Cheese pizza", decimal.NewFromInt(10), 5, []catalog.AttributeSpec{
		{Name: "size", Value: "large"},
	})
	require.NoError(t, err)
	return item
}

func TestMenuItemService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates enabled item with prefixed image", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		f.items.On("ExistsByName", ctx, "Pizza", (*uuid.UUID)(nil)).Return(false, nil)
		f.items.On("Save", ctx, mock.AnythingOfType("*catalog.MenuItem")).Return(nil)

		resp, err := f.service.Create(ctx, pizzaRequest())
		require.NoError(t, err)

		assert.Equal(t, "Pizza", resp.Name)
		assert.Equal(t, testImageBase+"pizza.png", resp.Image)
		assert.True(t, resp.Enabled)
		assert.Equal(t, 5, resp.InStock)
		require.Len(t, resp.AdditionalDetails, 1)
		f.items.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		f.items.On("ExistsByName", ctx, "Pizza", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.service.Create(ctx, pizzaRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrDuplicateMenuItemName))
		assert.Equal(t, "Menu item with name Pizza already exists.", err.Error())
		f.items.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects duplicate attribute names before touching the store", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		req := pizzaRequest()
		req.AdditionalDetails = append(req.AdditionalDetails, AdditionalDetailRequest{Name: "size", Value: "small"})

		_, err := f.service.Create(ctx, req)
		assert.True(t, errors.Is(err, shared.ErrDuplicateAttribute))
		f.items.AssertNotCalled(t, "ExistsByName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects price out of range", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		req := pizzaRequest()
		req.Price = decimal.RequireFromString("10000.00")

		_, err := f.service.Create(ctx, req)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestMenuItemService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields and keeps absolute image", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		item := existingPizza(t)
		f.cache.Set(ctx, &MenuItemResponse{ID: item.ID})
		f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		f.bills.On("ExistsUnpaidLineForMenuItem", ctx, item.ID).Return(false, nil)
		f.items.On("ExistsByName", ctx, "Pizza XL", &item.ID).Return(false, nil)
		f.items.On("Save", ctx, item).Return(nil)

		req := pizzaRequest()
		req.Name = "Pizza XL"
		req.Image = "https://cdn.example.com/xl.png"
		attrID := item.Attributes[0].ID
		req.AdditionalDetails = []AdditionalDetailRequest{{ID: &attrID, Name: "size", Value: "xl"}}

		resp, err := f.service.Update(ctx, item.ID, req)
		require.NoError(t, err)

		assert.Equal(t, "Pizza XL", resp.Name)
		assert.Equal(t, "https://cdn.example.com/xl.png", resp.Image)
		assert.Equal(t, attrID, resp.AdditionalDetails[0].ID)
		assert.Equal(t, 2, resp.Version)
		_, cached := f.cache.Get(ctx, item.ID)
		assert.False(t, cached)
	})

	t.Run("item in unpaid bill cannot change", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		item := existingPizza(t)
		f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		f.bills.On("ExistsUnpaidLineForMenuItem", ctx, item.ID).Return(true, nil)

		_, err := f.service.Update(ctx, item.ID, pizzaRequest())
		assert.True(t, errors.Is(err, shared.ErrItemInUnpaidBill))
		assert.Equal(t, "Unable to update menu item! It exists in the unpaid bill", err.Error())
		f.items.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing item", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		id := uuid.New()
		f.items.On("FindByIDForUpdate", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Update(ctx, id, pizzaRequest())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Equal(t, "Menu item not found with ID: "+id.String(), err.Error())
	})
}

func TestMenuItemService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("item without bill history is removed", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		item := existingPizza(t)
		f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		f.bills.On("ExistsUnpaidLineForMenuItem", ctx, item.ID).Return(false, nil)
		f.bills.On("CountLinesByMenuItem", ctx, item.ID).Return(int64(0), nil)
		f.items.On("Delete", ctx, item.ID).Return(nil)

		resp, err := f.service.Delete(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, DeleteOutcomeDeleted, resp.Outcome)
		assert.Empty(t, f.events.Events())
		f.items.AssertExpectations(t)
	})

	t.Run("item referenced by paid bills is disabled", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		item := existingPizza(t)
		f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		f.bills.On("ExistsUnpaidLineForMenuItem", ctx, item.ID).Return(false, nil)
		f.bills.On("CountLinesByMenuItem", ctx, item.ID).Return(int64(2), nil)
		f.items.On("Save", ctx, item).Return(nil)

		resp, err := f.service.Delete(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, DeleteOutcomeDisabled, resp.Outcome)
		assert.False(t, item.Enabled)
		assert.Equal(t, []string{catalog.EventTypeMenuItemDisabled}, f.events.EventTypes())
		f.items.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

		_, err = f.service.Delete(ctx, item.ID)
		assert.True(t, errors.Is(err, shared.ErrDisabledItem))
	})

	t.Run("item in unpaid bill cannot be deleted", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		item := existingPizza(t)
		f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		f.bills.On("ExistsUnpaidLineForMenuItem", ctx, item.ID).Return(true, nil)

		_, err := f.service.Delete(ctx, item.ID)
		assert.True(t, errors.Is(err, shared.ErrItemInUnpaidBill))
		assert.True(t, item.Enabled)
	})

	t.Run("publish failure does not fail the delete", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		f.events.SetError(errors.New("broker down"))
		item := existingPizza(t)
		f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
		f.bills.On("ExistsUnpaidLineForMenuItem", ctx, item.ID).Return(false, nil)
		f.bills.On("CountLinesByMenuItem", ctx, item.ID).Return(int64(1), nil)
		f.items.On("Save", ctx, item).Return(nil)

		_, err := f.service.Delete(ctx, item.ID)
		assert.NoError(t, err)
	})
}

func TestMenuItemService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		item := existingPizza(t)
		f.items.On("FindByID", ctx, item.ID).Return(item, nil).Once()

		first, err := f.service.GetByID(ctx, item.ID)
		require.NoError(t, err)
		second, err := f.service.GetByID(ctx, item.ID)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		f.items.AssertNumberOfCalls(t, "FindByID", 1)
	})

	t.Run("missing item", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		id := uuid.New()
		f.items.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.GetByID(ctx, id)
		assert.Equal(t, "Can not found menu item with id: "+id.String(), err.Error())
	})
}

func TestMenuItemService_ListPage(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page metadata", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		filter := shared.Filter{Page: 2, PageSize: 1, OrderBy: "name", OrderDir: "asc"}
		f.items.On("Count", ctx, filter).Return(int64(3), nil)
		f.items.On("FindAll", ctx, filter).Return([]catalog.MenuItem{*existingPizza(t)}, nil)

		page, err := f.service.ListPage(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Len(t, page.Items, 1)
	})

	t.Run("search without matches is not found", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		filter := shared.Filter{Page: 1, PageSize: 10, Search: "sushi"}
		f.items.On("Count", ctx, filter).Return(int64(0), nil)

		_, err := f.service.ListPage(ctx, filter)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Equal(t, "Can not found menu item with keyword: sushi", err.Error())
	})

	t.Run("empty catalog without search is an empty page", func(t *testing.T) {
		f := newMenuItemServiceFixture()
		filter := shared.Filter{Page: 1, PageSize: 10}
		f.items.On("Count", ctx, filter).Return(int64(0), nil)
		f.items.On("FindAll", ctx, filter).Return([]catalog.MenuItem{}, nil)

		page, err := f.service.ListPage(ctx, filter)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
}

func TestMenuItemService_ImageUploadURL(t *testing.T) {
	ctx := context.Background()
	f := newMenuItemServiceFixture()

	resp, err := f.service.ImageUploadURL(ctx, ImageUploadRequest{FileName: "Margherita.PNG", ContentType: "image/png"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ImageKey, "menu-items/"))
	assert.True(t, strings.HasSuffix(resp.ImageKey, ".png"))
	assert.Equal(t, testImageBase+resp.ImageKey, resp.ImageURL)
	assert.Contains(t, resp.UploadURL, resp.ImageKey)

	failing := NewMenuItemService(unitofwork.NewNoOpTransactionScope(f.items, f.bills), f.items, &stubImageStorage{uploadErr: errors.New("no bucket")})
	_, err = failing.ImageUploadURL(ctx, ImageUploadRequest{FileName: "a.png", ContentType: "image/png"})
	assert.Error(t, err)
}
