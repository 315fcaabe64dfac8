package rest

import (
	"context"
	"net/http"
	"time"

	"toutaunclicla/business/orders"
	"toutaunclicla/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrdersService interface {
	CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (domain.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Order], error)
	ListOrders(ctx context.Context, status domain.OrderStatus, page domain.PageRequest) (domain.Page[domain.Order], error)
	GetOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error)
}

type OrdersHandler struct {
	ordersService OrdersService
	validate      *validator.Validate
	timeout       time.Duration
}

// The order workflow calls the payment gateway, so it gets a longer budget
// than plain reads.
func NewOrdersHandler(ordersService OrdersService) *OrdersHandler {
	return &OrdersHandler{
		ordersService: ordersService,
		validate:      newValidator(),
		timeout:       30 * time.Second,
	}
}

type CreateOrderInput struct {
	AddressID       uuid.UUID `json:"address_id" validate:"required"`
	PaymentMethodID string    `json:"payment_method_id" validate:"required,max=255"`
	CouponCode      string    `json:"coupon_code" validate:"max=50"`
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending completed cancelled"`
}

func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var request CreateOrderInput
	if err := bindAndValidate(c, h.validate, &request); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.CreateOrder(ctx, orders.CreateOrderRequest{
		UserID:          userID,
		AddressID:       request.AddressID,
		PaymentMethodID: request.PaymentMethodID,
		CouponCode:      request.CouponCode,
		IdempotencyKey:  c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *OrdersHandler) ListMyOrders(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.ordersService.ListMyOrders(ctx, userID, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(page))
}

// ListOrders is the admin listing, optionally filtered by ?status=.
func (h *OrdersHandler) ListOrders(c echo.Context) error {
	var status domain.OrderStatus
	if s := c.QueryParam("status"); s != "" {
		parsed, err := domain.ParseOrderStatus(s)
		if err != nil {
			return err
		}
		status = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.ordersService.ListOrders(ctx, status, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(page))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, userID, isAdmin(c), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) CancelOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.CancelOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var request UpdateStatusInput
	if err := bindAndValidate(c, h.validate, &request); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, orderID, domain.OrderStatus(request.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}
