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

type AddressService interface {
	CreateAddress(ctx context.Context, address domain.Address) (domain.Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Address], error)
	GetAddress(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
	UpdateAddress(ctx context.Context, address domain.Address) (domain.Address, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
}

type AddressHandler struct {
	addressService AddressService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewAddressHandler(addressService AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      newValidator(),
		timeout:        defaultTimeout,
	}
}

type AddressRequest struct {
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"max=30"`
	IsDefault  bool   `json:"is_default"`
}

func (r AddressRequest) toDomain(userID uuid.UUID) domain.Address {
	return domain.Address{
		UserID:     userID,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

func (h *AddressHandler) ListAddresses(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	addresses, err := h.addressService.ListAddresses(ctx, userID, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(addresses))
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req AddressRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, err := h.addressService.CreateAddress(ctx, req.toDomain(userID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(address))
}

func (h *AddressHandler) GetAddress(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, err := h.addressService.GetAddress(ctx, userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(address))
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req AddressRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address := req.toDomain(userID)
	address.ID = id
	updated, err := h.addressService.UpdateAddress(ctx, address)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.addressService.DeleteAddress(ctx, userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Address deleted"))
}

func (h *AddressHandler) SetDefaultAddress(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, err := h.addressService.SetDefaultAddress(ctx, userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(address))
}
