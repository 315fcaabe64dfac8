package rest

import (
	"context"
	"net/http"
	"time"

	"toutaunclicla/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (domain.Review, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID, page domain.PageRequest) (domain.ProductReviews, error)
	ListMyReviews(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Review], error)
	UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (domain.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error
}

type ReviewHandler struct {
	reviewService ReviewService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     newValidator(),
		timeout:       defaultTimeout,
	}
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) ListProductReviews(c echo.Context) error {
	productID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviewService.ListProductReviews(ctx, productID, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reviews))
}

func (h *ReviewHandler) ListMyReviews(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviewService.ListMyReviews(ctx, userID, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reviews))
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateReviewRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	review, err := h.reviewService.CreateReview(ctx, userID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(review))
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	reviewID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateReviewRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	review, err := h.reviewService.UpdateReview(ctx, userID, reviewID, req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(review))
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	reviewID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.reviewService.DeleteReview(ctx, userID, reviewID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Review deleted"))
}
