package rest

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const defaultTimeout = 10 * time.Second

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, v *validator.Validate, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid request body", nil)
	}

	if err := v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.NewValidationError("invalid request body", nil)
		}

		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describe(fe)
		}
		return domain.NewValidationError("request validation failed", details)
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.NewUnauthorizedError("user not authenticated")
	}
	return id, nil
}

func currentToken(c echo.Context) string {
	token, _ := c.Get("token").(string)
	return token
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return strings.EqualFold(role, domain.RoleAdmin)
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid "+name, map[string]any{name: "must be a valid id"})
	}
	return id, nil
}

func pageFromQuery(c echo.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return domain.NewPageRequest(page, limit)
}
