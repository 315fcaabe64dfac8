package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartSummary(t *testing.T) {
	items := []CartItem{
		{ID: uuid.New(), Quantity: 3, Product: Product{Name: "Mug", Price: decimal.RequireFromString("20.00"), Stock: 10}},
		{ID: uuid.New(), Quantity: 2, Product: Product{Name: "Pen", Price: decimal.RequireFromString("1.25"), Stock: 4}},
	}

	summary := NewCartSummary(items)

	require.Len(t, summary.Items, 2)
	assert.Equal(t, 5, summary.ItemCount)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("62.50")))
	assert.True(t, summary.Items[0].LineTotal.Equal(decimal.RequireFromString("60.00")))
	assert.Equal(t, "Pen", summary.Items[1].Name)
}

func TestNewCartSummary_Empty(t *testing.T) {
	summary := NewCartSummary(nil)

	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Subtotal.IsZero())
}

func TestNewPageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Limit: DefaultPageLimit}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, Limit: MaxPageLimit}, NewPageRequest(3, 1000))
	assert.Equal(t, 20, NewPageRequest(3, 10).Offset())

	page := NewPage([]int{1, 2}, NewPageRequest(1, 2), 5)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}
