package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE favoritos (
//     id           UUID PRIMARY KEY,
//     usuario_id   UUID NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
//     producto_id  UUID NOT NULL REFERENCES productos(id) ON DELETE CASCADE,
//     creado_en    TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (usuario_id, producto_id)
// );

type Favorite struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:usuario_id;type:uuid;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"column:producto_id;type:uuid;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID;references:ID" json:"product"`
	CreatedAt time.Time `gorm:"column:creado_en" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favoritos"
}
