package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const checkTimeout = 3 * time.Second

// Check probes one dependency for readiness.
type Check struct {
	Component string
	Probe     func(ctx context.Context) error
}

type HealthCheck struct {
	Component   string `json:"component"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type HealthResponse struct {
	Status   string        `json:"status"`
	Checks   []HealthCheck `json:"checks"`
	Duration string        `json:"duration"`
}

type HealthHandler struct {
	Checks []Check
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHandler) Ready(c echo.Context) error {
	start := time.Now()
	resp := HealthResponse{Status: "Healthy", Checks: make([]HealthCheck, 0, len(h.Checks))}

	for _, chk := range h.Checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
		err := chk.Probe(ctx)
		cancel()

		hc := HealthCheck{Component: chk.Component, Status: "Healthy"}
		if err != nil {
			hc.Status = "Unhealthy"
			hc.Description = err.Error()
			resp.Status = "Unhealthy"
		}
		resp.Checks = append(resp.Checks, hc)
	}
	resp.Duration = time.Since(start).String()

	if resp.Status != "Healthy" {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
