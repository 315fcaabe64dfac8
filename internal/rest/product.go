package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)
	GetProductByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      newValidator(),
		timeout:        defaultTimeout,
	}
}

// ProductRequest is used for both create and update. Price is checked by
// the service since validator tags do not apply to decimals.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

func (r ProductRequest) toDomain() domain.Product {
	return domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
		ImageURL:    r.ImageURL,
	}
}

// productFilter reads category_id, search, min_price, max_price and in_stock.
func productFilter(c echo.Context) (domain.ProductFilter, error) {
	var filter domain.ProductFilter

	if v := c.QueryParam("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, domain.NewValidationError("invalid category_id", map[string]any{"category_id": "must be a valid id"})
		}
		filter.CategoryID = &id
	}

	for name, dst := range map[string]**decimal.Decimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		v := c.QueryParam(name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, domain.NewValidationError("invalid "+name, map[string]any{name: "must be a number"})
		}
		*dst = &d
	}

	filter.Search = c.QueryParam("search")
	filter.InStock, _ = strconv.ParseBool(c.QueryParam("in_stock"))

	return filter, nil
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.GetAllProducts(ctx, filter, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product := req.toDomain()
	created, err := h.productService.CreateProduct(ctx, &product)
	if err != nil {
		return err
	}

	logger.Info("Product created", "product_id", created.ID)
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product := req.toDomain()
	product.ID = id
	updated, err := h.productService.UpdateProduct(ctx, &product)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Product deleted successfully"))
}
