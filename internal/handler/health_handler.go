package handler

import (
	"leadsync/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler exposes the health monitor over HTTP
type HealthHandler struct {
	service service.HealthService
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(service service.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Check godoc
// @Summary Aggregate health check
// @Description Probes HubSpot, the database, the rate limiter and the sync queue
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Success 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := h.service.Check(c.Context())

	status := fiber.StatusOK
	if resp.Status == service.HealthStatusUnhealthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}

// Metrics godoc
// @Summary Sync metrics
// @Description Rolling sync counters, success rate and rate-limit utilization
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} dto.SyncMetricsResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /health/metrics [get]
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.service.Metrics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(metrics)
}
