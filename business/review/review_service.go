package review

import (
	"context"
	"math"
	"strings"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ReviewRepository contract interface
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByProduct(ctx context.Context, productID uuid.UUID, page domain.PageRequest) ([]domain.Review, int64, error)
	FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Review, int64, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (domain.Review, error)
	RatingSummary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type PurchaseChecker interface {
	HasCompletedPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type reviewService struct {
	reviewRepo  ReviewRepository
	productRepo ProductRepository
	purchases   PurchaseChecker
}

func NewReviewService(reviewRepo ReviewRepository, productRepo ProductRepository, purchases PurchaseChecker) *reviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		purchases:   purchases,
	}
}

// CreateReview is allowed once per product and only after a completed
// purchase of it.
func (s *reviewService) CreateReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (domain.Review, error) {
	if err := validateRating(rating); err != nil {
		return domain.Review{}, err
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return domain.Review{}, err
	}

	bought, err := s.purchases.HasCompletedPurchase(ctx, userID, productID)
	if err != nil {
		return domain.Review{}, errors.Wrap(err, "check purchase")
	}
	if !bought {
		return domain.Review{}, domain.NewForbiddenError("only customers who bought this product can review it")
	}

	review := domain.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviewRepo.Create(ctx, &review); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Review{}, domain.NewConflictError("product already reviewed")
		}
		return domain.Review{}, err
	}

	return review, nil
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, page domain.PageRequest) (domain.ProductReviews, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return domain.ProductReviews{}, err
	}

	reviews, total, err := s.reviewRepo.FindByProduct(ctx, productID, page)
	if err != nil {
		return domain.ProductReviews{}, err
	}

	summary, err := s.reviewRepo.RatingSummary(ctx, productID)
	if err != nil {
		return domain.ProductReviews{}, err
	}
	summary.Average = math.Round(summary.Average*10) / 10

	p := domain.NewPage(reviews, page, total)
	return domain.ProductReviews{
		Reviews:    p.Items,
		Rating:     summary,
		Pagination: p.Pagination,
	}, nil
}

func (s *reviewService) ListMyReviews(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Review], error) {
	reviews, total, err := s.reviewRepo.FindByUser(ctx, userID, page)
	if err != nil {
		return domain.Page[domain.Review]{}, err
	}

	return domain.NewPage(reviews, page, total), nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (domain.Review, error) {
	if err := validateRating(rating); err != nil {
		return domain.Review{}, err
	}

	review, err := s.reviewRepo.FindByIDForUser(ctx, userID, reviewID)
	if err != nil {
		return domain.Review{}, err
	}

	review.Rating = rating
	review.Comment = strings.TrimSpace(comment)
	if err := s.reviewRepo.Update(ctx, &review); err != nil {
		return domain.Review{}, err
	}

	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	return s.reviewRepo.Delete(ctx, userID, reviewID)
}

func validateRating(rating int) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	return nil
}
