package postgres

import (
	"context"
	"time"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// Reserve decrements stock for every line item and inserts the pending order
// with its items in one transaction. A decrement that matches no row means a
// concurrent buyer took the stock, and the whole reservation rolls back.
func (r *OrdersRepository) Reserve(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return errors.Wrap(result.Error, "failed to reserve stock")
			}
			if result.RowsAffected == 0 {
				var available int
				if err := tx.Model(&domain.Product{}).Select("stock").Where("id = ?", item.ProductID).Scan(&available).Error; err != nil {
					return errors.Wrap(err, "failed to read stock")
				}
				return domain.NewInsufficientStockError(item.ProductID, item.ProductName, available, item.Quantity)
			}
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return mapError(err, "order", "failed to create order")
		}

		for i := range order.Items {
			if order.Items[i].ID == uuid.Nil {
				order.Items[i].ID = uuid.New()
			}
			order.Items[i].OrderID = order.ID
		}
		if len(order.Items) > 0 {
			if err := tx.Create(&order.Items).Error; err != nil {
				return mapError(err, "order item", "failed to create order items")
			}
		}

		return nil
	})
}

// Confirm marks a pending order completed with its payment reference and
// empties the buyer's cart in one transaction.
func (r *OrdersRepository) Confirm(ctx context.Context, orderID, userID uuid.UUID, paymentIntentID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Order{}).
			Where("id = ? AND estado = ?", orderID, domain.OrderPending).
			Updates(map[string]any{
				"estado":                   domain.OrderCompleted,
				"stripe_payment_intent_id": paymentIntentID,
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to confirm order")
		}
		if result.RowsAffected == 0 {
			return domain.NewInvalidTransitionError(domain.OrderPending, domain.OrderCompleted)
		}

		if err := tx.Where("usuario_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "failed to clear cart")
		}

		return nil
	})
}

// Release cancels a pending order and returns its reserved stock.
func (r *OrdersRepository) Release(ctx context.Context, order domain.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Order{}).
			Where("id = ? AND estado = ?", order.ID, domain.OrderPending).
			Update("estado", domain.OrderCancelled)
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to cancel order")
		}
		if result.RowsAffected == 0 {
			return domain.NewInvalidTransitionError(domain.OrderPending, domain.OrderCancelled)
		}

		for _, item := range order.Items {
			err := tx.Model(&domain.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return errors.Wrap(err, "failed to restore stock")
			}
		}

		return nil
	})
}

// UpdateStatus moves an order from one status to another only if it is still
// in from.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND estado = ?", orderID, from).
		Update("estado", to)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update order status")
	}
	if result.RowsAffected == 0 {
		return domain.NewInvalidTransitionError(from, to)
	}

	return nil
}

func (r *OrdersRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		return domain.Order{}, mapError(err, "order", "failed to find order")
	}

	return order, nil
}

func (r *OrdersRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").
		Where("usuario_id = ? AND clave_idempotencia = ?", userID, key).
		First(&order).Error
	if err != nil {
		return domain.Order{}, mapError(err, "order", "failed to find order")
	}

	return order, nil
}

func (r *OrdersRepository) FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int64, error) {
	return r.findPage(ctx, r.DB.WithContext(ctx).Where("usuario_id = ?", userID), page)
}

// FindAll lists every order, optionally restricted to one status.
func (r *OrdersRepository) FindAll(ctx context.Context, status domain.OrderStatus, page domain.PageRequest) ([]domain.Order, int64, error) {
	db := r.DB.WithContext(ctx)
	if status != "" {
		db = db.Where("estado = ?", status)
	}
	return r.findPage(ctx, db, page)
}

func (r *OrdersRepository) findPage(ctx context.Context, db *gorm.DB, page domain.PageRequest) ([]domain.Order, int64, error) {
	db = db.Model(&domain.Order{}).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, mapError(err, "order", "failed to count orders")
	}

	var orders []domain.Order
	err := db.Preload("Items").
		Order("creado_en DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, mapError(err, "order", "failed to find orders")
	}

	return orders, total, nil
}

// FindStalePending returns up to limit pending orders created before cutoff.
func (r *OrdersRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Order, error) {
	var orders []domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").
		Where("estado = ? AND creado_en < ?", domain.OrderPending, cutoff).
		Order("creado_en ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, mapError(err, "order", "failed to find stale orders")
	}

	return orders, nil
}

// HasCompletedPurchase reports whether userID has a completed order
// containing productID.
func (r *OrdersRepository) HasCompletedPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64

	err := r.DB.WithContext(ctx).Model(&domain.OrderItem{}).
		Joins("JOIN pedidos ON pedidos.id = detalles_pedido.pedido_id").
		Where("pedidos.usuario_id = ? AND pedidos.estado = ? AND detalles_pedido.producto_id = ?",
			userID, domain.OrderCompleted, productID).
		Count(&count).Error
	if err != nil {
		return false, mapError(err, "order", "failed to check purchase")
	}

	return count > 0, nil
}
