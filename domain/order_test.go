package domain

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderPending, OrderCompleted, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderPending, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCompleted, OrderPending, false},
		{OrderCancelled, OrderCompleted, false},
		{OrderCancelled, OrderPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))

			err := tt.from.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, OrderPending.IsTerminal())
	assert.True(t, OrderCompleted.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, OrderCompleted, st)

	_, err = ParseOrderStatus("shipped")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestOrder_ItemsTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("20.00")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("0.10")},
	}}
	assert.True(t, o.ItemsTotal().Equal(decimal.RequireFromString("40.10")))
}

func TestError_KindMatching(t *testing.T) {
	err := errors.Wrap(NewEmptyCartError(), "create order")

	assert.True(t, errors.Is(err, ErrEmptyCart))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindEmptyCart, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
