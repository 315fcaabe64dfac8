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

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (domain.CartSummary, error)
	GetCartPage(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.CartSummary, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.CartSummary, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.CartSummary, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartSummary, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type CouponService interface {
	Apply(ctx context.Context, userID uuid.UUID, code string) (domain.CouponQuote, error)
	Preview(ctx context.Context, userID uuid.UUID, code string) (domain.CartWithCoupon, error)
}

type CartHandler struct {
	cartService   CartService
	couponService CouponService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewCartHandler(cartService CartService, couponService CouponService) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		couponService: couponService,
		validator:     newValidator(),
		timeout:       defaultTimeout,
	}
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

// GetCart returns the whole cart, or one page of it when page or limit is
// given.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var cart domain.CartSummary
	if c.QueryParam("page") != "" || c.QueryParam("limit") != "" {
		cart, err = h.cartService.GetCartPage(ctx, userID, pageFromQuery(c))
	} else {
		cart, err = h.cartService.GetCart(ctx, userID)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req AddCartItemRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(cart))
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateCartItemRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.UpdateItem(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cart))
}

func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.Clear(ctx, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Cart cleared"))
}

func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ApplyCouponRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	quote, err := h.couponService.Apply(ctx, userID, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(quote))
}

// WithCoupon previews the cart priced with ?code=. Unknown or expired codes
// leave the cart undiscounted instead of failing.
func (h *CartHandler) WithCoupon(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	preview, err := h.couponService.Preview(ctx, userID, c.QueryParam("code"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(preview))
}
