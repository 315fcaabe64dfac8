package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE categorias (
//     id           UUID PRIMARY KEY,
//     nombre       TEXT NOT NULL UNIQUE,
//     descripcion  TEXT,
//     creado_en    TIMESTAMPTZ DEFAULT NOW()
// );

type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:nombre;type:text;not null" json:"name"`
	Description string    `gorm:"column:descripcion;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:creado_en" json:"created_at"`
}

func (Category) TableName() string {
	return "categorias"
}
