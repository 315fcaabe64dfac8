package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CREATE TABLE productos (
//     id              UUID PRIMARY KEY,
//     nombre          TEXT NOT NULL,
//     descripcion     TEXT,
//     precio          NUMERIC(10,2) NOT NULL CHECK (precio >= 0),
//     stock           INT NOT NULL CHECK (stock >= 0),
//     categoria_id    UUID REFERENCES categorias(id),
//     imagen_url      TEXT,
//     creado_en       TIMESTAMPTZ DEFAULT NOW(),
//     actualizado_en  TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"column:nombre;type:text;not null" json:"name"`
	Description string          `gorm:"column:descripcion;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"column:precio;type:numeric(10,2)" json:"price"`
	Stock       int             `gorm:"column:stock" json:"stock"`
	CategoryID  *uuid.UUID      `gorm:"column:categoria_id;type:uuid" json:"category_id,omitempty"`
	ImageURL    string          `gorm:"column:imagen_url;type:text" json:"image_url,omitempty"`
	CreatedAt   time.Time       `gorm:"column:creado_en" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:actualizado_en" json:"updated_at"`
}

func (Product) TableName() string {
	return "productos"
}

type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    bool
}
