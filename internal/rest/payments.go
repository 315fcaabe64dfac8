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

type PaymentsService interface {
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, couponCode string) (domain.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, intentID string) (domain.PaymentIntent, error)
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, userID uuid.UUID, paymentMethodID string) (domain.PaymentMethod, error)
	RemovePaymentMethod(ctx context.Context, userID uuid.UUID, paymentMethodID string) error
}

type PaymentsHandler struct {
	paymentsService PaymentsService
	validate        *validator.Validate
	timeout         time.Duration
}

func NewPaymentsHandler(paymentsService PaymentsService) *PaymentsHandler {
	return &PaymentsHandler{
		paymentsService: paymentsService,
		validate:        newValidator(),
		timeout:         20 * time.Second,
	}
}

type PaymentIntentInput struct {
	CouponCode string `json:"coupon_code" validate:"max=50"`
}

type ConfirmPaymentInput struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,max=255"`
}

type PaymentMethodInput struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,max=255"`
}

func (h *PaymentsHandler) CreatePaymentIntent(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var request PaymentIntentInput
	if err := bindAndValidate(c, h.validate, &request); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	intent, err := h.paymentsService.CreatePaymentIntent(ctx, userID, request.CouponCode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(intent))
}

func (h *PaymentsHandler) ConfirmPayment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var request ConfirmPaymentInput
	if err := bindAndValidate(c, h.validate, &request); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	intent, err := h.paymentsService.ConfirmPayment(ctx, userID, request.PaymentIntentID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(intent))
}

func (h *PaymentsHandler) ListPaymentMethods(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	methods, err := h.paymentsService.ListPaymentMethods(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(methods))
}

func (h *PaymentsHandler) AddPaymentMethod(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var request PaymentMethodInput
	if err := bindAndValidate(c, h.validate, &request); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	method, err := h.paymentsService.AddPaymentMethod(ctx, userID, request.PaymentMethodID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(method))
}

func (h *PaymentsHandler) RemovePaymentMethod(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.paymentsService.RemovePaymentMethod(ctx, userID, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Payment method removed"))
}
