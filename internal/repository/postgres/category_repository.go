package postgres

import (
	"context"
	"fmt"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{
		DB: db,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	err := r.DB.WithContext(ctx).Create(category).Error
	return mapError(err, "category", "failed to create category")
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	var category domain.Category

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return domain.Category{}, mapError(err, "category", "failed to find category")
	}

	return category, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var categories []domain.Category
	err := r.DB.WithContext(ctx).Order("nombre ASC").Find(&categories).Error
	if err != nil {
		return nil, mapError(err, "category", "failed to find categories")
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"nombre":      category.Name,
			"descripcion": category.Description,
		})

	return expectOne(result, "category", "failed to update category")
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	return expectOne(result, "category", "failed to delete category")
}
