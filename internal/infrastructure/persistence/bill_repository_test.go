package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/application/unitofwork"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type billRepoFixture struct {
	items *GormMenuItemRepository
	bills *GormBillRepository
	pho   *catalog.MenuItem
	tea   *catalog.MenuItem
}

func newBillRepoFixture(t *testing.T) billRepoFixture {
	db := setupRestaurantTestDB(t)
	items := NewGormMenuItemRepository(db)
	return billRepoFixture{
		items: items,
		bills: NewGormBillRepository(db),
		pho:   saveMenuItem(t, items, "Pho Ga", "10.00", 10),
		tea:   saveMenuItem(t, items, "Tra Da", "1.50", 50),
	}
}

func (f billRepoFixture) newBill(t *testing.T, lines map[*catalog.MenuItem]int) *billing.Bill {
	t.Helper()
	bill := billing.NewBill()
	for item, qty := range lines {
		require.NoError(t, bill.AddLine(item, qty))
	}
	require.NoError(t, f.bills.Save(context.Background(), bill))
	return bill
}

func TestGormBillRepository_SaveAndFind(t *testing.T) {
	f := newBillRepoFixture(t)
	ctx := context.Background()

	bill := f.newBill(t, map[*catalog.MenuItem]int{f.pho: 2, f.tea: 3})

	found, err := f.bills.FindByID(ctx, bill.ID)
	require.NoError(t, err)

	assert.False(t, found.Paid)
	assert.True(t, decimal.RequireFromString("24.50").Equal(found.TotalPrice))
	require.Len(t, found.Lines, 2)
	for _, line := range found.Lines {
		assert.Equal(t, bill.ID, line.BillID)
	}

	_, err = f.bills.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBillRepository_SaveReplacesLines(t *testing.T) {
	f := newBillRepoFixture(t)
	ctx := context.Background()

	bill := f.newBill(t, map[*catalog.MenuItem]int{f.pho: 2, f.tea: 3})

	loaded, err := f.bills.FindByIDForUpdate(ctx, bill.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.RemoveLine(f.tea.ID, 3))
	require.NoError(t, loaded.AddLine(f.pho, 1))
	require.NoError(t, f.bills.Save(ctx, loaded))

	found, err := f.bills.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, f.pho.ID, found.Lines[0].MenuItemID)
	assert.Equal(t, 3, found.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("30.00").Equal(found.TotalPrice))

	count, err := f.bills.CountLinesByMenuItem(ctx, f.tea.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormBillRepository_UnpaidLineLookup(t *testing.T) {
	f := newBillRepoFixture(t)
	ctx := context.Background()

	bill := f.newBill(t, map[*catalog.MenuItem]int{f.pho: 1})

	exists, err := f.bills.ExistsUnpaidLineForMenuItem(ctx, f.pho.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.bills.ExistsUnpaidLineForMenuItem(ctx, f.tea.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, bill.Pay(map[uuid.UUID]*catalog.MenuItem{f.pho.ID: f.pho}))
	require.NoError(t, f.bills.Save(ctx, bill))

	exists, err = f.bills.ExistsUnpaidLineForMenuItem(ctx, f.pho.ID)
	require.NoError(t, err)
	assert.False(t, exists, "paid bills do not block menu item changes")

	count, err := f.bills.CountLinesByMenuItem(ctx, f.pho.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := f.bills.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, found.Paid)
	assert.Equal(t, 2, found.Version)
}

func TestGormBillRepository_SearchByMenuItem(t *testing.T) {
	f := newBillRepoFixture(t)
	ctx := context.Background()

	f.newBill(t, map[*catalog.MenuItem]int{f.pho: 1})
	f.newBill(t, map[*catalog.MenuItem]int{f.pho: 1, f.tea: 1})
	f.newBill(t, map[*catalog.MenuItem]int{f.tea: 2})

	count, err := f.bills.Count(ctx, shared.Filter{Search: "Pho"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = f.bills.Count(ctx, shared.Filter{Search: "Ga Pho Ga desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "key spanning name and description")

	bills, err := f.bills.FindAll(ctx, shared.Filter{Search: "Tra", OrderBy: "totalPrice", OrderDir: "desc"})
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.True(t, bills[0].TotalPrice.GreaterThan(bills[1].TotalPrice))

	all, err := f.bills.FindAll(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormBillRepository_Delete(t *testing.T) {
	f := newBillRepoFixture(t)
	ctx := context.Background()

	bill := f.newBill(t, map[*catalog.MenuItem]int{f.pho: 1, f.tea: 1})

	require.NoError(t, f.bills.Delete(ctx, bill.ID))

	_, err := f.bills.FindByID(ctx, bill.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	count, err := f.bills.CountLinesByMenuItem(ctx, f.pho.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, f.bills.Delete(ctx, bill.ID), shared.ErrNotFound)
}

func TestGormTransactionScope_Execute(t *testing.T) {
	db := setupRestaurantTestDB(t)
	scope := NewGormTransactionScope(db)
	items := NewGormMenuItemRepository(db)
	ctx := context.Background()

	item := saveMenuItem(t, items, "Cafe Sua Da", "3.00", 5)

	t.Run("rolls back on error", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos unitofwork.Repositories) error {
			loaded, err := repos.MenuItemRepo().FindByIDForUpdate(ctx, item.ID)
			require.NoError(t, err)
			require.NoError(t, loaded.DeductStock(2))
			require.NoError(t, repos.MenuItemRepo().Save(ctx, loaded))
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		found, err := items.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.Stock)
	})

	t.Run("commits on success", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos unitofwork.Repositories) error {
			bill := billing.NewBill()
			loaded, err := repos.MenuItemRepo().FindByIDForUpdate(ctx, item.ID)
			if err != nil {
				return err
			}
			if err := bill.AddLine(loaded, 2); err != nil {
				return err
			}
			return repos.BillRepo().Save(ctx, bill)
		})
		require.NoError(t, err)

		count, err := NewGormBillRepository(db).CountLinesByMenuItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
