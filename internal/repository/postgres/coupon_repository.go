package postgres

import (
	"context"
	"strings"

	"toutaunclicla/domain"

	"gorm.io/gorm"
)

type CouponRepository struct {
	DB *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{
		DB: db,
	}
}

// FindByCode matches case-insensitively and only among active coupons.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	var coupon domain.Coupon

	err := r.DB.WithContext(ctx).
		Where("UPPER(codigo) = ? AND activo = ?", strings.ToUpper(strings.TrimSpace(code)), true).
		First(&coupon).Error
	if err != nil {
		return domain.Coupon{}, mapError(err, "coupon", "failed to find coupon")
	}

	return coupon, nil
}
