package postgres

import (
	"context"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository struct {
	DB *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{
		DB: db,
	}
}

func (r *FavoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	if favorite.ID == uuid.Nil {
		favorite.ID = uuid.New()
	}

	err := r.DB.WithContext(ctx).Omit("Product").Create(favorite).Error
	return mapError(err, "favorite", "failed to create favorite")
}

func (r *FavoriteRepository) FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Favorite, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("usuario_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, mapError(err, "favorite", "failed to count favorites")
	}

	var favorites []domain.Favorite
	err = r.DB.WithContext(ctx).
		Joins("Product").
		Where(&domain.Favorite{UserID: userID}).
		Order("favoritos.creado_en DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, mapError(err, "favorite", "failed to find favorites")
	}

	return favorites, total, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64

	err := r.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("usuario_id = ? AND producto_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, mapError(err, "favorite", "failed to check favorite")
	}

	return count > 0, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	result := r.DB.WithContext(ctx).
		Where("usuario_id = ? AND producto_id = ?", userID, productID).
		Delete(&domain.Favorite{})

	return expectOne(result, "favorite", "failed to delete favorite")
}
