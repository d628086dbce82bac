package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestDeletionPolicy_Check(t *testing.T) {
	policy := DeletionPolicy{GraceDays: DefaultGraceDays, Location: time.UTC}
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	billCreatedAt := func(ts time.Time) *Bill {
		b := NewBill()
		b.CreatedAt = ts
		return b
	}

	t.Run("ten days old is too recent", func(t *testing.T) {
		err := policy.Check(billCreatedAt(now.AddDate(0, 0, -10)), now)
		assert.True(t, errors.Is(err, shared.ErrTooRecent))
	})

	t.Run("fourteen calendar days is enough", func(t *testing.T) {
		assert.NoError(t, policy.Check(billCreatedAt(now.AddDate(0, 0, -14)), now))
	})

	t.Run("counts calendar days not hours", func(t *testing.T) {
		// 13 days and 1 hour of wall clock, but 14 calendar days
		created := time.Date(2024, 3, 6, 23, 0, 0, 0, time.UTC)
		at := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
		assert.NoError(t, policy.Check(billCreatedAt(created), at))

		// 13 days and 23 hours of wall clock, but only 13 calendar days
		created = time.Date(2024, 3, 7, 0, 30, 0, 0, time.UTC)
		at = time.Date(2024, 3, 20, 23, 30, 0, 0, time.UTC)
		assert.Error(t, policy.Check(billCreatedAt(created), at))
	})

	t.Run("paid bill is never deleted", func(t *testing.T) {
		b := billCreatedAt(now.AddDate(-1, 0, 0))
		b.Paid = true
		err := policy.Check(b, now)
		assert.True(t, errors.Is(err, shared.ErrBillAlreadyPaid))
		assert.Equal(t, "Cannot delete a paid bill.", err.Error())
	})
}

func TestNewDeletionPolicy_Defaults(t *testing.T) {
	assert.Equal(t, DefaultGraceDays, NewDeletionPolicy(0).GraceDays)
	assert.Equal(t, 30, NewDeletionPolicy(30).GraceDays)
}
