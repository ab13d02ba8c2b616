package routes

import (
	"context"
	"net/http"
	"time"

	"nailbook/cmd/internal/utils"

	"github.com/labstack/echo/v4"
)

// HealthCheck is a named dependency probed by GET /api/health.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type DefaultHealthRoute struct {
	Checks []HealthCheck
	Now    func() time.Time
}

func NewHealthDefault(checks ...HealthCheck) *DefaultHealthRoute {
	return &DefaultHealthRoute{Checks: checks, Now: time.Now}
}

func (h *DefaultHealthRoute) GetHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Timestamp: utils.FormatEpoch(h.Now().UnixMilli())}
	status := http.StatusOK

	for _, check := range h.Checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		err := check.Check(ctx)
		cancel()

		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(h.Checks))
		}
		if err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	return c.JSON(status, &resp)
}
