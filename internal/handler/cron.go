package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/alerting"
)

// CronHandler exposes the batch jobs to an external scheduler.
type CronHandler struct {
	aggregator *alerting.Aggregator
}

// NewCronHandler creates a new CronHandler.
func NewCronHandler(aggregator *alerting.Aggregator) *CronHandler {
	return &CronHandler{aggregator: aggregator}
}

// Weather runs the weather alert sweep across all gardens.
func (h *CronHandler) Weather(c echo.Context) error {
	report := h.aggregator.RunWeather(c.Request().Context())
	return JSON(c, http.StatusOK, report)
}

// Sensors polls registered sensors and evaluates thresholds.
func (h *CronHandler) Sensors(c echo.Context) error {
	report := h.aggregator.RunSensors(c.Request().Context())
	return JSON(c, http.StatusOK, report)
}

// Maintenance notifies owners of due maintenance tasks.
func (h *CronHandler) Maintenance(c echo.Context) error {
	report := h.aggregator.RunMaintenance(c.Request().Context())
	return JSON(c, http.StatusOK, report)
}
