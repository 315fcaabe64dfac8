package favorite

import (
	"context"

	"toutaunclicla/domain"

	"github.com/google/uuid"
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *domain.Favorite) error
	FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Favorite, int64, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type favoriteService struct {
	favoriteRepo FavoriteRepository
	productRepo  ProductRepository
}

func NewFavoriteService(favoriteRepo FavoriteRepository, productRepo ProductRepository) *favoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

// AddFavorite marks a product as favorite. Adding the same product twice is
// a Conflict.
func (s *favoriteService) AddFavorite(ctx context.Context, userID, productID uuid.UUID) (domain.Favorite, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.Favorite{}, err
	}

	exists, err := s.favoriteRepo.Exists(ctx, userID, productID)
	if err != nil {
		return domain.Favorite{}, err
	}
	if exists {
		return domain.Favorite{}, domain.NewConflictError("product is already in favorites")
	}

	favorite := domain.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.favoriteRepo.Create(ctx, &favorite); err != nil {
		return domain.Favorite{}, err
	}

	favorite.Product = product
	return favorite, nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Favorite], error) {
	favorites, total, err := s.favoriteRepo.FindByUser(ctx, userID, page)
	if err != nil {
		return domain.Page[domain.Favorite]{}, err
	}

	return domain.NewPage(favorites, page, total), nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.favoriteRepo.Exists(ctx, userID, productID)
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Delete(ctx, userID, productID)
}
