package postgres

import (
	"context"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{
		DB: db,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	err := r.DB.WithContext(ctx).Omit("User").Create(review).Error
	return mapError(err, "review", "failed to create review")
}

func (r *ReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, page domain.PageRequest) ([]domain.Review, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.Review{}).
		Where("producto_id = ?", productID).
		Count(&total).Error
	if err != nil {
		return nil, 0, mapError(err, "review", "failed to count reviews")
	}

	var reviews []domain.Review
	err = r.DB.WithContext(ctx).
		Where("producto_id = ?", productID).
		Order("creado_en DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, mapError(err, "review", "failed to find reviews")
	}

	return reviews, total, nil
}

func (r *ReviewRepository) FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Review, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.Review{}).
		Where("usuario_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, mapError(err, "review", "failed to count reviews")
	}

	var reviews []domain.Review
	err = r.DB.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("creado_en DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, mapError(err, "review", "failed to find reviews")
	}

	return reviews, total, nil
}

func (r *ReviewRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (domain.Review, error) {
	var review domain.Review

	err := r.DB.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, userID).
		First(&review).Error
	if err != nil {
		return domain.Review{}, mapError(err, "review", "failed to find review")
	}

	return review, nil
}

func (r *ReviewRepository) RatingSummary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error) {
	var row struct {
		Average float64
		Count   int64
	}

	err := r.DB.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(calificacion), 0) AS average, COUNT(*) AS count").
		Where("producto_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return domain.RatingSummary{}, mapError(err, "review", "failed to compute rating")
	}

	return domain.RatingSummary{Average: row.Average, Count: row.Count}, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	result := r.DB.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ? AND usuario_id = ?", review.ID, review.UserID).
		Updates(map[string]any{
			"calificacion": review.Rating,
			"comentario":   review.Comment,
		})

	return expectOne(result, "review", "failed to update review")
}

func (r *ReviewRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", id, userID).
		Delete(&domain.Review{})

	return expectOne(result, "review", "failed to delete review")
}
