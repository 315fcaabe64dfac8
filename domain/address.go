package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE direcciones (
//     id              UUID PRIMARY KEY,
//     usuario_id      UUID NOT NULL REFERENCES usuarios(id) ON DELETE CASCADE,
//     calle           TEXT NOT NULL,
//     ciudad          TEXT NOT NULL,
//     provincia       TEXT,
//     codigo_postal   TEXT NOT NULL,
//     pais            TEXT NOT NULL,
//     telefono        TEXT,
//     predeterminada  BOOLEAN NOT NULL DEFAULT FALSE,
//     creado_en       TIMESTAMPTZ DEFAULT NOW(),
//     actualizado_en  TIMESTAMPTZ DEFAULT NOW()
// );

type Address struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:usuario_id;type:uuid;not null" json:"user_id"`
	Street     string    `gorm:"column:calle;not null" json:"street"`
	City       string    `gorm:"column:ciudad;not null" json:"city"`
	State      string    `gorm:"column:provincia" json:"state"`
	PostalCode string    `gorm:"column:codigo_postal;not null" json:"postal_code"`
	Country    string    `gorm:"column:pais;not null" json:"country"`
	Phone      string    `gorm:"column:telefono" json:"phone"`
	IsDefault  bool      `gorm:"column:predeterminada" json:"is_default"`
	CreatedAt  time.Time `gorm:"column:creado_en" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:actualizado_en" json:"updated_at"`
}

func (Address) TableName() string {
	return "direcciones"
}
