package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleCustomer = "cliente"
	RoleAdmin    = "admin"
)

// CREATE TABLE usuarios (
//     id                    UUID PRIMARY KEY,
//     nombre                TEXT NOT NULL,
//     email                 TEXT NOT NULL UNIQUE,
//     password              TEXT NOT NULL,
//     rol                   TEXT NOT NULL DEFAULT 'cliente',
//     verificado            BOOLEAN NOT NULL DEFAULT FALSE,
//     codigo_verificacion   TEXT,
//     codigo_expira         TIMESTAMPTZ,
//     bloqueado             BOOLEAN NOT NULL DEFAULT FALSE,
//     motivo_bloqueo        TEXT,
//     intentos_fallidos     INT NOT NULL DEFAULT 0,
//     bloqueado_hasta       TIMESTAMPTZ,
//     password_cambiado_en  TIMESTAMPTZ,
//     stripe_customer_id    TEXT,
//     creado_en             TIMESTAMPTZ DEFAULT NOW(),
//     actualizado_en        TIMESTAMPTZ DEFAULT NOW()
// );

type User struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FullName              string     `gorm:"column:nombre;not null" json:"full_name"`
	Email                 string     `gorm:"column:email;unique;not null" json:"email"`
	Password              string     `gorm:"column:password;not null" json:"-"`
	Role                  string     `gorm:"column:rol;not null" json:"role"`
	IsVerified            bool       `gorm:"column:verificado" json:"is_verified"`
	VerificationCode      string     `gorm:"column:codigo_verificacion" json:"-"`
	VerificationExpiresAt *time.Time `gorm:"column:codigo_expira" json:"-"`
	IsBlocked             bool       `gorm:"column:bloqueado" json:"is_blocked"`
	BlockReason           string     `gorm:"column:motivo_bloqueo" json:"block_reason,omitempty"`
	FailedLoginAttempts   int        `gorm:"column:intentos_fallidos" json:"-"`
	LockedUntil           *time.Time `gorm:"column:bloqueado_hasta" json:"-"`
	PasswordChangedAt     *time.Time `gorm:"column:password_cambiado_en" json:"password_changed_at,omitempty"`
	StripeCustomerID      string     `gorm:"column:stripe_customer_id" json:"-"`
	CreatedAt             time.Time  `gorm:"column:creado_en" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:actualizado_en" json:"updated_at"`
}

func (User) TableName() string {
	return "usuarios"
}

func (u User) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

// IsLocked reports whether repeated failed logins still hold the account.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Session is what the token store keeps per logged-in user.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
