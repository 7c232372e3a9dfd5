package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdanthq/verdant/internal/changelog"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/service"
	"github.com/verdanthq/verdant/internal/vpd"
)

// ZoneHandler handles zones and their climate endpoint.
type ZoneHandler struct {
	zones   *repository.ZoneRepository
	rooms   *repository.RoomRepository
	govee   *repository.GoveeRepository
	access  *service.AccessService
	changes *changelog.Tracker
}

// NewZoneHandler creates a new ZoneHandler.
func NewZoneHandler(zones *repository.ZoneRepository, rooms *repository.RoomRepository, govee *repository.GoveeRepository, access *service.AccessService, changes *changelog.Tracker) *ZoneHandler {
	return &ZoneHandler{zones: zones, rooms: rooms, govee: govee, access: access, changes: changes}
}

// List returns a room's zones.
func (h *ZoneHandler) List(c echo.Context) error {
	userID, _ := GetUserID(c)
	roomID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	room, err := h.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, room.GardenID, userID); err != nil {
		return err
	}

	zones, err := h.zones.ListByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, zones, len(zones))
}

type createZoneRequest struct {
	Name        string             `json:"name" validate:"required,min=1,max=100"`
	ZoneType    *string            `json:"zone_type,omitempty" validate:"omitempty,max=50"`
	GrowthStage domain.GrowthStage `json:"growth_stage,omitempty" validate:"omitempty,oneof=seedling vegetative flowering"`
	TempMin     *float64           `json:"temp_min,omitempty"`
	TempMax     *float64           `json:"temp_max,omitempty"`
	HumidityMin *float64           `json:"humidity_min,omitempty" validate:"omitempty,gte=0,lte=100"`
	HumidityMax *float64           `json:"humidity_max,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func validateThresholds(tempMin, tempMax, humidityMin, humidityMax *float64) error {
	if tempMin != nil && tempMax != nil && *tempMin > *tempMax {
		return &domain.ValidationError{Field: "temp_min", Message: "must not exceed temp_max"}
	}
	if humidityMin != nil && humidityMax != nil && *humidityMin > *humidityMax {
		return &domain.ValidationError{Field: "humidity_min", Message: "must not exceed humidity_max"}
	}
	return nil
}

// Create adds a zone to a room.
func (h *ZoneHandler) Create(c echo.Context) error {
	userID, _ := GetUserID(c)
	roomID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	room, err := h.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, room.GardenID, userID); err != nil {
		return err
	}

	var req createZoneRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := validateThresholds(req.TempMin, req.TempMax, req.HumidityMin, req.HumidityMax); err != nil {
		return err
	}

	zone, err := h.zones.Create(ctx, domain.Zone{
		RoomID:      roomID,
		Name:        req.Name,
		ZoneType:    req.ZoneType,
		GrowthStage: req.GrowthStage,
		TempMin:     req.TempMin,
		TempMax:     req.TempMax,
		HumidityMin: req.HumidityMin,
		HumidityMax: req.HumidityMax,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, zone)
}

// Get returns one zone.
func (h *ZoneHandler) Get(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	zone, zctx, err := h.zoneWithContext(c, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, zctx.GardenID, userID); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, zone)
}

type updateZoneRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	ZoneType    *string             `json:"zone_type,omitempty" validate:"omitempty,max=50"`
	GrowthStage *domain.GrowthStage `json:"growth_stage,omitempty" validate:"omitempty,oneof=seedling vegetative flowering"`
	TempMin     *float64            `json:"temp_min,omitempty"`
	TempMax     *float64            `json:"temp_max,omitempty"`
	HumidityMin *float64            `json:"humidity_min,omitempty" validate:"omitempty,gte=0,lte=100"`
	HumidityMax *float64            `json:"humidity_max,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Update applies a partial update to a zone. Thresholds are replaced as
// sent; omitting a threshold keeps its current value.
func (h *ZoneHandler) Update(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	before, zctx, err := h.zoneWithContext(c, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	var req updateZoneRequest
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
	if req.ZoneType != nil {
		updated.ZoneType = req.ZoneType
	}
	if req.GrowthStage != nil {
		updated.GrowthStage = *req.GrowthStage
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

	zone, err := h.zones.Update(ctx, updated)
	if err != nil {
		return err
	}

	h.changes.Record(ctx, "zone", zone.ID, zone.Name, zctx.Path(), userID,
		changelog.DiffZone(*before, *zone))

	return JSON(c, http.StatusOK, zone)
}

// Delete removes a zone.
func (h *ZoneHandler) Delete(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	_, zctx, err := h.zoneWithContext(c, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireEditor(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	if err := h.zones.Delete(ctx, zoneID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type vpdResponse struct {
	ZoneID       int64              `json:"zone_id"`
	GrowthStage  domain.GrowthStage `json:"growth_stage"`
	VPD          *float64           `json:"vpd,omitempty"`
	Status       vpd.Status         `json:"status"`
	TemperatureC *float64           `json:"temperature_c,omitempty"`
	HumidityPct  *float64           `json:"humidity_pct,omitempty"`
	RecordedAt   *time.Time         `json:"recorded_at,omitempty"`
}

// VPD computes vapor pressure deficit for a zone from its most recent
// sensor reading and classifies it against the growth-stage band.
func (h *ZoneHandler) VPD(c echo.Context) error {
	userID, _ := GetUserID(c)
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	zone, zctx, err := h.zoneWithContext(c, zoneID)
	if err != nil {
		return err
	}
	if err := h.access.RequireViewer(ctx, zctx.GardenID, userID); err != nil {
		return err
	}

	reading, err := h.latestZoneReading(c, zoneID)
	if err != nil {
		return err
	}
	if reading == nil {
		return fmt.Errorf("%w: zone has no sensor readings", domain.ErrNotFound)
	}

	recordedAt := reading.RecordedAt
	resp := vpdResponse{
		ZoneID:       zone.ID,
		GrowthStage:  zone.GrowthStage,
		Status:       vpd.StatusCritical,
		TemperatureC: reading.TemperatureC,
		HumidityPct:  reading.HumidityPct,
		RecordedAt:   &recordedAt,
	}
	if value, ok := vpd.FromReading(reading.TemperatureC, reading.HumidityPct); ok {
		resp.VPD = &value
		resp.Status = vpd.Classify(value, zone.GrowthStage)
	}

	return JSON(c, http.StatusOK, resp)
}

func (h *ZoneHandler) zoneWithContext(c echo.Context, zoneID int64) (*domain.Zone, *repository.ZoneContext, error) {
	ctx := c.Request().Context()
	zone, err := h.zones.FindByID(ctx, zoneID)
	if err != nil {
		return nil, nil, err
	}
	zctx, err := h.zones.Context(ctx, zoneID)
	if err != nil {
		return nil, nil, err
	}
	return zone, zctx, nil
}

// latestZoneReading picks the newest stored reading across the zone's
// registered sensors.
func (h *ZoneHandler) latestZoneReading(c echo.Context, zoneID int64) (*domain.GoveeReading, error) {
	ctx := c.Request().Context()
	devices, err := h.govee.ListDevicesByZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	var latest *domain.GoveeReading
	for _, device := range devices {
		reading, err := h.govee.LatestReading(ctx, device.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if latest == nil || reading.RecordedAt.After(latest.RecordedAt) {
			latest = reading
		}
	}
	return latest, nil
}
