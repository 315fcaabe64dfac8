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

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) (domain.Favorite, error)
	ListFavorites(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Favorite], error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
}

type FavoriteHandler struct {
	favoriteService FavoriteService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewFavoriteHandler(favoriteService FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		validator:       newValidator(),
		timeout:         defaultTimeout,
	}
}

type AddFavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type FavoriteStatus struct {
	ProductID  uuid.UUID `json:"product_id"`
	IsFavorite bool      `json:"is_favorite"`
}

func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	favorites, err := h.favoriteService.ListFavorites(ctx, userID, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(favorites))
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req AddFavoriteRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	favorite, err := h.favoriteService.AddFavorite(ctx, userID, req.ProductID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(favorite))
}

func (h *FavoriteHandler) CheckFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	productID, err := paramUUID(c, "productId")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ok, err := h.favoriteService.IsFavorite(ctx, userID, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(FavoriteStatus{ProductID: productID, IsFavorite: ok}))
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	productID, err := paramUUID(c, "productId")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.favoriteService.RemoveFavorite(ctx, userID, productID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Favorite removed"))
}
