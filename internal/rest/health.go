package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthz pings every dependency and answers 503 when one is down.
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	res := HealthStatus{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK

	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			res.Checks[name] = err.Error()
			res.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}

	return c.JSON(code, res)
}
