package coupon

import (
	"context"
	"strings"
	"time"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponRepository contract interface
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
}

type CartReader interface {
	GetCart(ctx context.Context, userID uuid.UUID) (domain.CartSummary, error)
}

// Evaluator prices a cart against a coupon code.
type Evaluator struct {
	coupons CouponRepository
	carts   CartReader
	now     func() time.Time
}

func NewEvaluator(coupons CouponRepository, carts CartReader) *Evaluator {
	return &Evaluator{
		coupons: coupons,
		carts:   carts,
		now:     time.Now,
	}
}

// Quote looks up code and applies it to subtotal. Unknown codes are NotFound
// and expired ones CouponExpired.
func (e *Evaluator) Quote(ctx context.Context, code string, subtotal decimal.Decimal) (domain.CouponQuote, error) {
	coupon, err := e.lookup(ctx, code)
	if err != nil {
		return domain.CouponQuote{}, err
	}

	discount, total := coupon.Apply(subtotal)
	return domain.CouponQuote{
		Coupon:         coupon,
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

// Apply validates code, then prices the user's cart with it. The coupon is
// checked before the cart, so an unknown code on an empty cart is NotFound.
func (e *Evaluator) Apply(ctx context.Context, userID uuid.UUID, code string) (domain.CouponQuote, error) {
	coupon, err := e.lookup(ctx, code)
	if err != nil {
		return domain.CouponQuote{}, err
	}

	cart, err := e.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.CouponQuote{}, err
	}

	if len(cart.Items) == 0 {
		return domain.CouponQuote{}, domain.NewEmptyCartError()
	}

	discount, total := coupon.Apply(cart.Subtotal)
	return domain.CouponQuote{
		Coupon:         coupon,
		Subtotal:       cart.Subtotal,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

// Preview prices the cart and silently ignores a missing, unknown or expired
// code. Storage failures are still returned.
func (e *Evaluator) Preview(ctx context.Context, userID uuid.UUID, code string) (domain.CartWithCoupon, error) {
	cart, err := e.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.CartWithCoupon{}, err
	}

	result := domain.CartWithCoupon{
		Cart:           cart,
		DiscountAmount: decimal.Zero,
		Total:          cart.Subtotal,
	}

	if strings.TrimSpace(code) == "" {
		return result, nil
	}

	coupon, err := e.lookup(ctx, code)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCouponExpired):
		return result, nil
	case err != nil:
		return domain.CartWithCoupon{}, err
	}

	result.Coupon = &coupon
	result.DiscountAmount, result.Total = coupon.Apply(cart.Subtotal)
	return result, nil
}

func (e *Evaluator) lookup(ctx context.Context, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, domain.NewValidationError("coupon code is required", nil)
	}

	coupon, err := e.coupons.FindByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, err
	}

	if coupon.IsExpired(e.now()) {
		return domain.Coupon{}, domain.NewCouponExpiredError(coupon.Code)
	}

	return coupon, nil
}
