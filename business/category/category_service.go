package category

import (
	"context"
	"fmt"
	"strings"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"

	"github.com/google/uuid"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *categoryService) CreateCategory(ctx context.Context, category *domain.Category) (domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		logger.Error("Invalid category data: name is required")
		return domain.Category{}, domain.NewValidationError("invalid category data", map[string]any{"name": "name is required"})
	}

	category.ID = uuid.New()
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return domain.Category{}, err
	}

	return *category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, category *domain.Category) (domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return domain.Category{}, domain.NewValidationError("invalid category data", map[string]any{"name": "name is required"})
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return domain.Category{}, err
	}

	return s.categoryRepo.FindByID(ctx, category.ID)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}
