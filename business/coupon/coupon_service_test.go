package coupon

import (
	"context"
	"strings"
	"testing"
	"time"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoupons struct {
	byCode map[string]domain.Coupon
	err    error
}

func (f *fakeCoupons) FindByCode(_ context.Context, code string) (domain.Coupon, error) {
	if f.err != nil {
		return domain.Coupon{}, f.err
	}
	c, ok := f.byCode[strings.ToUpper(code)]
	if !ok {
		return domain.Coupon{}, domain.NewNotFoundError("coupon")
	}
	return c, nil
}

type fakeCart struct {
	summary domain.CartSummary
}

func (f *fakeCart) GetCart(_ context.Context, _ uuid.UUID) (domain.CartSummary, error) {
	return f.summary, nil
}

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newEvaluator(cart domain.CartSummary) (*Evaluator, *fakeCoupons) {
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	coupons := &fakeCoupons{byCode: map[string]domain.Coupon{
		"SAVE10": {Code: "SAVE10", DiscountPercent: decimal.NewFromInt(10), ExpiresAt: &future, Active: true},
		"OLD":    {Code: "OLD", DiscountPercent: decimal.NewFromInt(50), ExpiresAt: &past, Active: true},
		"ALL":    {Code: "ALL", DiscountPercent: decimal.NewFromInt(120), Active: true},
	}}
	e := NewEvaluator(coupons, &fakeCart{summary: cart})
	e.now = func() time.Time { return now }
	return e, coupons
}

func cartOf(subtotal string) domain.CartSummary {
	return domain.CartSummary{
		Items:    []domain.CartLine{{Name: "Mug", Quantity: 1}},
		Subtotal: decimal.RequireFromString(subtotal),
	}
}

func TestApply(t *testing.T) {
	e, _ := newEvaluator(cartOf("60.00"))

	quote, err := e.Apply(context.Background(), uuid.New(), "save10")
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, quote.DiscountAmount.Equal(decimal.RequireFromString("6.00")))
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("54.00")))
}

func TestApply_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cart domain.CartSummary
		code string
		want *domain.Error
	}{
		{"unknown code", cartOf("60.00"), "NOPE", domain.ErrNotFound},
		{"expired code", cartOf("60.00"), "OLD", domain.ErrCouponExpired},
		{"empty cart", domain.CartSummary{Subtotal: decimal.Zero}, "SAVE10", domain.ErrEmptyCart},
		{"unknown code wins over empty cart", domain.CartSummary{}, "NOPE", domain.ErrNotFound},
		{"expired code wins over empty cart", domain.CartSummary{}, "OLD", domain.ErrCouponExpired},
		{"blank code", cartOf("60.00"), "  ", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEvaluator(tt.cart)
			_, err := e.Apply(ctx, uuid.New(), tt.code)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestApply_DiscountAboveHundredFloorsAtZero(t *testing.T) {
	e, _ := newEvaluator(cartOf("10.00"))

	quote, err := e.Apply(context.Background(), uuid.New(), "ALL")
	require.NoError(t, err)
	assert.True(t, quote.DiscountAmount.Equal(decimal.RequireFromString("12.00")), "discount = %s", quote.DiscountAmount)
	assert.True(t, quote.Total.IsZero())

	preview, err := e.Preview(context.Background(), uuid.New(), "ALL")
	require.NoError(t, err)
	assert.True(t, preview.DiscountAmount.Equal(decimal.RequireFromString("12.00")))
	assert.True(t, preview.Total.IsZero())
}

func TestPreview_Lenient(t *testing.T) {
	ctx := context.Background()

	for _, code := range []string{"", "NOPE", "OLD"} {
		t.Run("code="+code, func(t *testing.T) {
			e, _ := newEvaluator(cartOf("60.00"))

			res, err := e.Preview(ctx, uuid.New(), code)
			require.NoError(t, err)
			assert.Nil(t, res.Coupon)
			assert.True(t, res.DiscountAmount.IsZero())
			assert.True(t, res.Total.Equal(decimal.RequireFromString("60.00")))
		})
	}
}

func TestPreview_Applies(t *testing.T) {
	e, _ := newEvaluator(cartOf("60.00"))

	res, err := e.Preview(context.Background(), uuid.New(), "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, res.Coupon)
	assert.True(t, res.Total.Equal(decimal.RequireFromString("54.00")))
}

func TestPreview_StorageErrorIsReturned(t *testing.T) {
	e, coupons := newEvaluator(cartOf("60.00"))
	coupons.err = errors.New("connection refused")

	_, err := e.Preview(context.Background(), uuid.New(), "SAVE10")
	assert.Error(t, err)
}
