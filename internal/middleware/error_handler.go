package middleware

import (
	"net/http"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"

	jsonres "toutaunclicla/pkg/response"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
)

// Failed order preconditions are client errors (400); only duplicates and
// status races are conflicts.
var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindInsufficientStock: http.StatusBadRequest,
	domain.KindEmptyCart:         http.StatusBadRequest,
	domain.KindCouponExpired:     http.StatusBadRequest,
	domain.KindInvalidAddress:    http.StatusBadRequest,
	domain.KindPaymentFailed:     http.StatusBadRequest,
	domain.KindUnauthorized:      http.StatusUnauthorized,
	domain.KindForbidden:         http.StatusForbidden,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindConflict:          http.StatusConflict,
	domain.KindInvalidTransition: http.StatusConflict,
	domain.KindInternal:          http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler as the JSON error
// envelope. Internal failures are logged with the request id and hidden from
// the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	var (
		status int
		body   jsonres.ErrorBody
	)

	var de *domain.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &de) && de.Kind != domain.KindInternal:
		status = StatusFor(de.Kind)
		var details any
		if len(de.Details) > 0 {
			details = de.Details
		}
		body = jsonres.Error(string(de.Kind), de.Message, details)

	case errors.As(err, &he):
		status = he.Code
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		body = jsonres.Error(httpKind(he.Code), message, nil)

	default:
		status = http.StatusInternalServerError
		logger.Error("Unhandled error", err, "request_id", requestID, "method", c.Request().Method, "path", c.Path())
		body = jsonres.Error(string(domain.KindInternal), "internal server error", nil)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("Failed to write error response", err, "request_id", requestID)
	}
}

func httpKind(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domain.KindValidation)
	case http.StatusUnauthorized:
		return string(domain.KindUnauthorized)
	case http.StatusForbidden:
		return string(domain.KindForbidden)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return string(domain.KindNotFound)
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	return string(domain.KindInternal)
}
