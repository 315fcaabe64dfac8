package postgres

import (
	"context"
	"fmt"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	err := r.DB.WithContext(ctx).Create(product).Error
	return mapError(err, "product", "failed to create product")
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return domain.Product{}, mapError(err, "product", "failed to find product")
	}

	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	db := r.DB.WithContext(ctx).Model(&domain.Product{})
	if filter.CategoryID != nil {
		db = db.Where("categoria_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		db = db.Where("nombre ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.MinPrice != nil {
		db = db.Where("precio >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		db = db.Where("precio <= ?", *filter.MaxPrice)
	}
	if filter.InStock {
		db = db.Where("stock > 0")
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, mapError(err, "product", "failed to count products")
	}

	var products []domain.Product
	err := db.Order("creado_en DESC").Offset(page.Offset()).Limit(page.Limit).Find(&products).Error
	if err != nil {
		return nil, 0, mapError(err, "product", "failed to find products")
	}

	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"nombre":       product.Name,
			"descripcion":  product.Description,
			"precio":       product.Price,
			"stock":        product.Stock,
			"categoria_id": product.CategoryID,
			"imagen_url":   product.ImageURL,
		})

	return expectOne(result, "product", "failed to update product")
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	return expectOne(result, "product", "failed to delete product")
}
