package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/cache"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/govee"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/secretbox"
	"github.com/verdanthq/verdant/internal/service"
)

// GoveeHandler handles vendor credentials, sensor registration, and
// reading history.
type GoveeHandler struct {
	govee   *repository.GoveeRepository
	zones   *repository.ZoneRepository
	client  *govee.Client
	secrets *secretbox.Box
	cache   *cache.Cache
	access  *service.AccessService
}

// NewGoveeHandler creates a new GoveeHandler.
func NewGoveeHandler(repo *repository.GoveeRepository, zones *repository.ZoneRepository, client *govee.Client, secrets *secretbox.Box, readings *cache.Cache, access *service.AccessService) *GoveeHandler {
	return &GoveeHandler{govee: repo, zones: zones, client: client, secrets: secrets, cache: readings, access: access}
}

type putCredentialRequest struct {
	APIKey string `json:"api_key" validate:"required,min=10"`
}

// PutCredential verifies a vendor API key against the vendor and stores
// it encrypted. The plaintext key is never persisted or echoed back.
func (h *GoveeHandler) PutCredential(c echo.Context) error {
	userID, _ := GetUserID(c)

	var req putCredentialRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.client.Devices(ctx, req.APIKey); err != nil {
		return fmt.Errorf("%w: vendor rejected the API key", domain.ErrInvalidInput)
	}

	enc, err := h.secrets.Encrypt(req.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt api key: %w", err)
	}
	if err := h.govee.UpsertCredential(ctx, userID, enc); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]bool{"configured": true})
}

// GetCredential reports whether a key is on file, never the key itself.
func (h *GoveeHandler) GetCredential(c echo.Context) error {
	userID, _ := GetUserID(c)

	cred, err := h.govee.Credential(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return JSON(c, http.StatusOK, map[string]any{"configured": false})
		}
		return err
	}
	return JSON(c, http.StatusOK, map[string]any{
		"configured": true,
		"updated_at": cred.UpdatedAt,
	})
}

// DiscoverDevices lists the devices visible to the caller's vendor
// account, for picking which ones to bind to zones.
func (h *GoveeHandler) DiscoverDevices(c echo.Context) error {
	userID, _ := GetUserID(c)

	ctx := c.Request().Context()
	apiKey, err := h.apiKeyFor(c, userID)
	if err != nil {
		return err
	}

	devices, err := h.client.Devices(ctx, apiKey)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, devices, len(devices))
}

// ListSensors returns the sensors registered to a zone.
func (h *GoveeHandler) ListSensors(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	zctx, err := h.zones.Context(ctx, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	sensors, err := h.govee.ListDevicesByZone(ctx, zoneID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, sensors, len(sensors))
}

type registerSensorRequest struct {
	Device      string   `json:"device" validate:"required"`
	Model       string   `json:"model" validate:"required"`
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	TempMin     *float64 `json:"temp_min,omitempty"`
	TempMax     *float64 `json:"temp_max,omitempty"`
	HumidityMin *float64 `json:"humidity_min,omitempty" validate:"omitempty,gte=0,lte=100"`
	HumidityMax *float64 `json:"humidity_max,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// RegisterSensor binds a vendor device to a zone. Registering the same
// device twice for one user is a conflict.
func (h *GoveeHandler) RegisterSensor(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	zctx, err := h.zones.Context(ctx, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	var req registerSensorRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := validateThresholds(req.TempMin, req.TempMax, req.HumidityMin, req.HumidityMax); err != nil {
		return err
	}

	sensor, err := h.govee.CreateDevice(ctx, domain.GoveeDevice{
		ZoneID:      zoneID,
		UserID:      userID,
		Device:      req.Device,
		Model:       req.Model,
		Name:        req.Name,
		TempMin:     req.TempMin,
		TempMax:     req.TempMax,
		HumidityMin: req.HumidityMin,
		HumidityMax: req.HumidityMax,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, sensor)
}

type updateSensorRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	ZoneID      *int64   `json:"zone_id,omitempty"`
	TempMin     *float64 `json:"temp_min,omitempty"`
	TempMax     *float64 `json:"temp_max,omitempty"`
	HumidityMin *float64 `json:"humidity_min,omitempty" validate:"omitempty,gte=0,lte=100"`
	HumidityMax *float64 `json:"humidity_max,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateSensor renames a sensor, moves it between zones, or adjusts its
// alert thresholds.
func (h *GoveeHandler) UpdateSensor(c echo.Context) error {
	userID, _ := GetUserID(c)
	sensorID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	before, err := h.ownedSensor(c, sensorID, userID)
	if err != nil {
		return err
	}

	var req updateSensorRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated := *before
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.ZoneID != nil {
		zctx, err := h.zones.Context(ctx, *req.ZoneID)
		if err != nil {
			return err
		}
		if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
			return err
		}
		updated.ZoneID = *req.ZoneID
	}
	if req.TempMin != nil {
		updated.TempMin = req.TempMin
	}
	if req.TempMax != nil {
		updated.TempMax = req.TempMax
	}
	if req.HumidityMin != nil {
		updated.HumidityMin = req.HumidityMin
	}
	if req.HumidityMax != nil {
		updated.HumidityMax = req.HumidityMax
	}
	if err := validateThresholds(updated.TempMin, updated.TempMax, updated.HumidityMin, updated.HumidityMax); err != nil {
		return err
	}

	sensor, err := h.govee.UpdateDevice(ctx, updated)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, sensor)
}

// DeleteSensor unbinds a sensor and drops its reading history.
func (h *GoveeHandler) DeleteSensor(c echo.Context) error {
	userID, _ := GetUserID(c)
	sensorID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.ownedSensor(c, sensorID, userID); err != nil {
		return err
	}

	if err := h.govee.DeleteDevice(c.Request().Context(), sensorID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReadings returns a sensor's stored reading history, newest first.
func (h *GoveeHandler) ListReadings(c echo.Context) error {
	userID, _ := GetUserID(c)
	sensorID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.ownedSensor(c, sensorID, userID); err != nil {
		return err
	}

	readings, err := h.govee.ListReadings(c.Request().Context(), sensorID, queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, readings, len(readings))
}

// LatestReading returns a sensor's most recent reading, served from
// cache when the poller has populated it.
func (h *GoveeHandler) LatestReading(c echo.Context) error {
	userID, _ := GetUserID(c)
	sensorID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.ownedSensor(c, sensorID, userID); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if cached, err := h.cache.LatestReading(ctx, sensorID); err == nil && cached != nil {
		return JSON(c, http.StatusOK, cached)
	}

	reading, err := h.govee.LatestReading(ctx, sensorID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, reading)
}

func (h *GoveeHandler) ownedSensor(c echo.Context, sensorID, userID int64) (*domain.GoveeDevice, error) {
	sensor, err := h.govee.FindDeviceByID(c.Request().Context(), sensorID)
	if err != nil {
		return nil, err
	}
	if sensor.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return sensor, nil
}

func (h *GoveeHandler) apiKeyFor(c echo.Context, userID int64) (string, error) {
	cred, err := h.govee.Credential(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: no vendor API key on file", domain.ErrInvalidInput)
		}
		return "", err
	}
	return h.secrets.Decrypt(cred.APIKeyEnc)
}
