package middleware

import (
	"net/http"
	"time"

	"toutaunclicla/domain"

	jsonres "toutaunclicla/pkg/response"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// AuthRateLimiter limits each client IP to perSecond requests with the given
// burst. Idle visitors are forgotten after three minutes.
func AuthRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, jsonres.Error(
				string(domain.KindForbidden), "Unable to identify client", nil,
			))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, jsonres.Error(
				"RATE_LIMITED", "Too many requests", nil,
			))
		},
	})
}
