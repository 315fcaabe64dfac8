package cart

import (
	"context"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// CartRepository contract interface
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	FindPageByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.CartItem, int64, error)
	FindItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartItem, error)
	Upsert(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type cartService struct {
	cartRepo    CartRepository
	productRepo ProductRepository
}

func NewCartService(cartRepo CartRepository, productRepo ProductRepository) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns every line of the user's cart with its subtotal.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (domain.CartSummary, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}

	return domain.NewCartSummary(items), nil
}

// GetCartPage returns one page of lines; item count and subtotal still cover
// the whole cart.
func (s *cartService) GetCartPage(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.CartSummary, error) {
	pageItems, total, err := s.cartRepo.FindPageByUser(ctx, userID, page)
	if err != nil {
		return domain.CartSummary{}, err
	}

	all, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}

	summary := domain.NewCartSummary(all)
	summary.Items = domain.NewCartSummary(pageItems).Items
	pagination := domain.NewPage(pageItems, page, total).Pagination
	summary.Pagination = &pagination

	return summary, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.CartSummary, error) {
	if quantity < 1 {
		return domain.CartSummary{}, domain.NewValidationError("quantity must be at least 1", map[string]any{"quantity": quantity})
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.CartSummary{}, err
	}

	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}

	inCart := 0
	for _, item := range items {
		if item.ProductID == productID {
			inCart = item.Quantity
			break
		}
	}

	if inCart+quantity > product.Stock {
		return domain.CartSummary{}, domain.NewInsufficientStockError(product.ID, product.Name, product.Stock, inCart+quantity)
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Upsert(ctx, item); err != nil {
		return domain.CartSummary{}, errors.Wrap(err, "add cart item")
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.CartSummary, error) {
	if quantity < 1 {
		return domain.CartSummary{}, domain.NewValidationError("quantity must be at least 1", map[string]any{"quantity": quantity})
	}

	item, err := s.cartRepo.FindItem(ctx, userID, itemID)
	if err != nil {
		return domain.CartSummary{}, err
	}

	if quantity > item.Product.Stock {
		return domain.CartSummary{}, domain.NewInsufficientStockError(item.ProductID, item.Product.Name, item.Product.Stock, quantity)
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		return domain.CartSummary{}, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartSummary, error) {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		return domain.CartSummary{}, err
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.DeleteByUser(ctx, userID)
}
