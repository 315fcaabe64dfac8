package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CREATE TABLE cupones (
//     id                UUID PRIMARY KEY,
//     codigo            TEXT NOT NULL UNIQUE,
//     descuento         NUMERIC(5,2) NOT NULL CHECK (descuento >= 0 AND descuento <= 100),
//     fecha_expiracion  TIMESTAMPTZ,
//     activo            BOOLEAN NOT NULL DEFAULT TRUE,
//     creado_en         TIMESTAMPTZ DEFAULT NOW()
// );

type Coupon struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code            string          `gorm:"column:codigo;unique;not null" json:"code"`
	DiscountPercent decimal.Decimal `gorm:"column:descuento;type:numeric(5,2)" json:"discount_percent"`
	ExpiresAt       *time.Time      `gorm:"column:fecha_expiracion" json:"expires_at,omitempty"`
	Active          bool            `gorm:"column:activo" json:"active"`
	CreatedAt       time.Time       `gorm:"column:creado_en" json:"created_at"`
}

func (Coupon) TableName() string {
	return "cupones"
}

// IsExpired is true once now has passed the expiration date. A coupon without
// one never expires.
func (c Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

var hundred = decimal.NewFromInt(100)

// Apply returns the discount amount and the resulting total for subtotal,
// both rounded half-up to cents. The discount is the full percentage of the
// subtotal; only the total is floored at zero.
func (c Coupon) Apply(subtotal decimal.Decimal) (discount, total decimal.Decimal) {
	pct := c.DiscountPercent
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	discount = subtotal.Mul(pct).Div(hundred).Round(2)
	total = decimal.Max(decimal.Zero, subtotal.Sub(discount)).Round(2)
	return discount, total
}

type CouponQuote struct {
	Coupon         Coupon          `json:"coupon"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// CartWithCoupon is the lenient preview: Coupon is nil when the code was
// missing, unknown or expired.
type CartWithCoupon struct {
	Cart           CartSummary     `json:"cart"`
	Coupon         *Coupon         `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}
