package postgres

import (
	"context"
	"strings"
	"time"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(user.Email)

	err := r.DB.WithContext(ctx).Create(user).Error
	return mapError(err, "user", "failed to create user")
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return domain.User{}, mapError(err, "user", "failed to find user")
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return domain.User{}, mapError(err, "user", "failed to find user")
	}

	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	var (
		users []domain.User
		total int64
	)

	db := r.DB.WithContext(ctx).Model(&domain.User{}).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, mapError(err, "user", "failed to count users")
	}

	err := db.Order("creado_en DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, mapError(err, "user", "failed to list users")
	}

	return users, total, nil
}

func (r *UserRepository) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	return expectOne(result, "user", "failed to update user")
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName string) error {
	return r.update(ctx, id, map[string]any{"nombre": fullName})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	return r.update(ctx, id, map[string]any{
		"password":             hash,
		"password_cambiado_en": changedAt,
	})
}

func (r *UserRepository) SetVerificationCode(ctx context.Context, id uuid.UUID, encrypted string, expiresAt time.Time) error {
	return r.update(ctx, id, map[string]any{
		"codigo_verificacion": encrypted,
		"codigo_expira":       expiresAt,
	})
}

func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]any{
		"verificado":          true,
		"codigo_verificacion": "",
		"codigo_expira":       nil,
	})
}

// RecordLoginFailure stores the new failed attempt count and, when the
// threshold was reached, the lockout deadline.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	return r.update(ctx, id, map[string]any{
		"intentos_fallidos": attempts,
		"bloqueado_hasta":   lockedUntil,
	})
}

func (r *UserRepository) ResetLoginFailures(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]any{
		"intentos_fallidos": 0,
		"bloqueado_hasta":   nil,
	})
}

func (r *UserRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool, reason string) error {
	return r.update(ctx, id, map[string]any{
		"bloqueado":      blocked,
		"motivo_bloqueo": reason,
	})
}

func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.update(ctx, id, map[string]any{"stripe_customer_id": customerID})
}
