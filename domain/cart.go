package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CREATE TABLE carrito (
//     id              UUID PRIMARY KEY,
//     usuario_id      UUID NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
//     producto_id     UUID NOT NULL REFERENCES productos(id) ON DELETE CASCADE,
//     cantidad        INT NOT NULL CHECK (cantidad > 0),
//     creado_en       TIMESTAMPTZ DEFAULT NOW(),
//     actualizado_en  TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (usuario_id, producto_id)
// );

type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:usuario_id;type:uuid;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"column:producto_id;type:uuid;not null" json:"product_id"`
	Quantity  int       `gorm:"column:cantidad;not null" json:"quantity"`
	Product   Product   `gorm:"foreignKey:ProductID;references:ID" json:"-"`
	CreatedAt time.Time `gorm:"column:creado_en" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:actualizado_en" json:"updated_at"`
}

func (CartItem) TableName() string {
	return "carrito"
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartSubtotal sums price*quantity over items, rounded to cents once at the end.
func CartSubtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

type CartLine struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartSummary struct {
	Items      []CartLine      `json:"items"`
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

func NewCartLine(item CartItem) CartLine {
	return CartLine{
		ID:        item.ID,
		ProductID: item.ProductID,
		Name:      item.Product.Name,
		ImageURL:  item.Product.ImageURL,
		UnitPrice: item.Product.Price,
		Stock:     item.Product.Stock,
		Quantity:  item.Quantity,
		LineTotal: item.LineTotal().Round(2),
	}
}

func NewCartSummary(items []CartItem) CartSummary {
	lines := make([]CartLine, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, NewCartLine(item))
		count += item.Quantity
	}
	return CartSummary{
		Items:     lines,
		ItemCount: count,
		Subtotal:  CartSubtotal(items),
	}
}
