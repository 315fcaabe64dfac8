package product

import (
	"context"
	"fmt"
	"strings"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository is used to check that a product's category exists.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
}

type productService struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryRepository) *productService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return domain.Page[domain.Product]{}, fmt.Errorf("context error: %w", err)
	}

	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.productRepo.FindAll(ctx, filter, page)
	if err != nil {
		logger.Error("Failed to find all product", err)
		return domain.Page[domain.Product]{}, err
	}

	return domain.NewPage(products, page, total), nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if err := s.validate(ctx, product); err != nil {
		return domain.Product{}, err
	}

	product.ID = uuid.New()
	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("Failed to create product", err)
		return domain.Product{}, err
	}

	return *product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if err := s.validate(ctx, product); err != nil {
		return domain.Product{}, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *productService) validate(ctx context.Context, product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)

	details := map[string]any{}
	if product.Name == "" {
		details["name"] = "product name is required"
	}
	if !product.Price.IsPositive() {
		details["price"] = "price must be greater than 0"
	}
	if product.Stock < 0 {
		details["stock"] = "stock cannot be negative"
	}
	if len(details) > 0 {
		logger.Error("Invalid product data", "details", details)
		return domain.NewValidationError("invalid product data", details)
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("invalid product data", map[string]any{"category_id": "category does not exist"})
			}
			return err
		}
	}

	return nil
}
