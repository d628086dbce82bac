package catalog

import (
	"errors"
	"testing"

	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestCheckAvailable(t *testing.T) {
	item := &MenuItem{Name: "Pizza", Stock: 5}

	tests := []struct {
		name      string
		requested int
		wantErr   bool
	}{
		{"below stock", 3, false},
		{"exactly stock", 5, false},
		{"above stock", 6, true},
		{"zero", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAvailable(item, tt.requested)
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
				assert.Equal(t, "Not enough items in stock for menu item: Pizza", err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecrement(t *testing.T) {
	item := &MenuItem{Name: "Pizza", Stock: 5}

	remaining, err := Decrement(item, 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 5, item.Stock, "decrement must not modify the item")

	remaining, err = Decrement(item, 6)
	assert.Error(t, err)
	assert.Equal(t, 5, remaining)

	_, err = Decrement(item, -1)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestDecrement_NeverNegative(t *testing.T) {
	for stock := 0; stock <= 10; stock++ {
		for qty := 0; qty <= 12; qty++ {
			item := &MenuItem{Stock: stock}
			remaining, err := Decrement(item, qty)
			assert.GreaterOrEqual(t, remaining, 0)
			if qty > stock {
				assert.Error(t, err)
			}
		}
	}
}
