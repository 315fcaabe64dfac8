package postgres

import (
	"context"

	"toutaunclicla/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		DB: db,
	}
}

// withProduct joins each cart row to its product in the same query.
func (r *CartRepository) withProduct(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.DB.WithContext(ctx).
		Joins("Product").
		Where(&domain.CartItem{UserID: userID})
}

func (r *CartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	var items []domain.CartItem

	err := r.withProduct(ctx, userID).
		Order("carrito.creado_en DESC").
		Find(&items).Error
	if err != nil {
		return nil, mapError(err, "cart item", "failed to find cart")
	}

	return items, nil
}

func (r *CartRepository) FindPageByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.CartItem, int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&domain.CartItem{}).
		Where("usuario_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, mapError(err, "cart item", "failed to count cart")
	}

	var items []domain.CartItem
	err = r.withProduct(ctx, userID).
		Order("carrito.creado_en DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, mapError(err, "cart item", "failed to find cart page")
	}

	return items, total, nil
}

func (r *CartRepository) FindItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartItem, error) {
	var item domain.CartItem

	err := r.withProduct(ctx, userID).
		Where("carrito.id = ?", itemID).
		First(&item).Error
	if err != nil {
		return domain.CartItem{}, mapError(err, "cart item", "failed to find cart item")
	}

	return item, nil
}

// Upsert inserts the row or adds its quantity to the existing
// (usuario_id, producto_id) row.
func (r *CartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := r.DB.WithContext(ctx).
		Omit("Product").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "usuario_id"}, {Name: "producto_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"cantidad":       gorm.Expr("carrito.cantidad + excluded.cantidad"),
				"actualizado_en": gorm.Expr("excluded.actualizado_en"),
			}),
		}).
		Create(item).Error

	return mapError(err, "cart item", "failed to upsert cart item")
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	result := r.DB.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ? AND usuario_id = ?", itemID, userID).
		Update("cantidad", quantity)

	return expectOne(result, "cart item", "failed to update cart item")
}

func (r *CartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	result := r.DB.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", itemID, userID).
		Delete(&domain.CartItem{})

	return expectOne(result, "cart item", "failed to delete cart item")
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	err := r.DB.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Delete(&domain.CartItem{}).Error

	return mapError(err, "cart item", "failed to clear cart")
}
