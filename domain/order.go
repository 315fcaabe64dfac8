package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// pending is the only state with exits; completed and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderCompleted, OrderCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderCompleted, OrderCancelled:
		return st, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown order status %q", s), map[string]any{"status": s})
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Transition(next OrderStatus) error {
	if !s.CanTransitionTo(next) {
		return NewInvalidTransitionError(s, next)
	}
	return nil
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CREATE TABLE pedidos (
//     id                        UUID PRIMARY KEY,
//     usuario_id                UUID NOT NULL REFERENCES usuarios(id),
//     direccion_id              UUID NOT NULL REFERENCES direcciones(id),
//     subtotal                  NUMERIC(10,2) NOT NULL,
//     descuento                 NUMERIC(10,2) NOT NULL DEFAULT 0,
//     total                     NUMERIC(10,2) NOT NULL,
//     estado                    TEXT NOT NULL CHECK (estado IN ('pending','completed','cancelled')),
//     cupon_codigo              TEXT,
//     stripe_payment_intent_id  TEXT,
//     clave_idempotencia        TEXT NOT NULL UNIQUE,
//     creado_en                 TIMESTAMPTZ DEFAULT NOW(),
//     actualizado_en            TIMESTAMPTZ DEFAULT NOW()
// );

type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"column:usuario_id;type:uuid;not null" json:"user_id"`
	AddressID       uuid.UUID       `gorm:"column:direccion_id;type:uuid;not null" json:"address_id"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2)" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"column:descuento;type:numeric(10,2)" json:"discount"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(10,2)" json:"total"`
	Status          OrderStatus     `gorm:"column:estado;type:text;not null" json:"status"`
	CouponCode      string          `gorm:"column:cupon_codigo" json:"coupon_code,omitempty"`
	PaymentIntentID string          `gorm:"column:stripe_payment_intent_id" json:"payment_intent_id,omitempty"`
	IdempotencyKey  string          `gorm:"column:clave_idempotencia;unique" json:"-"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;references:ID" json:"items"`
	CreatedAt       time.Time       `gorm:"column:creado_en" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:actualizado_en" json:"updated_at"`
}

func (Order) TableName() string {
	return "pedidos"
}

// ItemsTotal is the sum of quantity*unit price over the line items.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

// CREATE TABLE detalles_pedido (
//     id               UUID PRIMARY KEY,
//     pedido_id        UUID NOT NULL REFERENCES pedidos(id) ON DELETE CASCADE,
//     producto_id      UUID NOT NULL REFERENCES productos(id),
//     nombre_producto  TEXT NOT NULL,
//     cantidad         INT NOT NULL CHECK (cantidad > 0),
//     precio_unitario  NUMERIC(10,2) NOT NULL
// );

type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:pedido_id;type:uuid;not null" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"column:producto_id;type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"column:nombre_producto" json:"product_name"`
	Quantity    int             `gorm:"column:cantidad;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:precio_unitario;type:numeric(10,2)" json:"unit_price"`
}

func (OrderItem) TableName() string {
	return "detalles_pedido"
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
