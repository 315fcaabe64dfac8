package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// CREATE TABLE resenas (
//     id              UUID PRIMARY KEY,
//     usuario_id      UUID NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
//     producto_id     UUID NOT NULL REFERENCES productos(id) ON DELETE CASCADE,
//     calificacion    INT NOT NULL CHECK (calificacion BETWEEN 1 AND 5),
//     comentario      TEXT,
//     creado_en       TIMESTAMPTZ DEFAULT NOW(),
//     actualizado_en  TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (usuario_id, producto_id)
// );

type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:usuario_id;type:uuid;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"column:producto_id;type:uuid;not null" json:"product_id"`
	Rating    int       `gorm:"column:calificacion;not null" json:"rating"`
	Comment   string    `gorm:"column:comentario" json:"comment"`
	User      *User     `gorm:"foreignKey:UserID;references:ID" json:"-"`
	CreatedAt time.Time `gorm:"column:creado_en" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:actualizado_en" json:"updated_at"`
}

func (Review) TableName() string {
	return "resenas"
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type ProductReviews struct {
	Reviews    []Review      `json:"reviews"`
	Rating     RatingSummary `json:"rating"`
	Pagination Pagination    `json:"pagination"`
}
