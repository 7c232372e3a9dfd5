package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verdanthq/verdant/internal/cache"
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/govee"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/units"
	"github.com/verdanthq/verdant/internal/weather"
)

// Repeated alerts inside these windows are treated as still active
// rather than duplicated.
const (
	weatherLookback     = 4 * time.Hour
	sensorLookback      = 4 * time.Hour
	maintenanceLookback = 24 * time.Hour
)

// GardenSource lists gardens eligible for weather checks.
type GardenSource interface {
	ListWithPostalCode(ctx context.Context) ([]domain.Garden, error)
}

// PlantSource lists weather-sensitive plants per garden.
type PlantSource interface {
	ListWeatherSensitiveByGarden(ctx context.Context, gardenID int64) ([]repository.SensitivePlant, error)
}

// TaskSource lists due maintenance tasks.
type TaskSource interface {
	ListDueTasks(ctx context.Context, cutoff time.Time) ([]repository.DueTask, error)
}

// DeviceStore provides registered sensor devices, their credentials,
// and reading persistence.
type DeviceStore interface {
	ListDevices(ctx context.Context) ([]domain.GoveeDevice, error)
	Credential(ctx context.Context, userID int64) (*domain.GoveeCredential, error)
	CreateReading(ctx context.Context, reading domain.GoveeReading) (*domain.GoveeReading, error)
}

// ZoneSource resolves zones for threshold lookups.
type ZoneSource interface {
	FindByID(ctx context.Context, id int64) (*domain.Zone, error)
}

// NotificationStore persists notifications and answers dedup queries.
type NotificationStore interface {
	Create(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	ExistsSince(ctx context.Context, userID int64, typ domain.NotificationType, metaFilter any, since time.Time) (bool, error)
}

// WeatherSource fetches conditions for a postal code.
type WeatherSource interface {
	ConditionsFor(ctx context.Context, postalCode string) (*weather.Conditions, error)
}

// SensorSource fetches current device state from the vendor.
type SensorSource interface {
	DeviceState(ctx context.Context, apiKey, device, model string) (*govee.State, error)
}

// KeyOpener decrypts stored vendor API keys.
type KeyOpener interface {
	Decrypt(ciphertext string) (string, error)
}

// Notifier pushes freshly created notifications to connected clients.
type Notifier interface {
	Notify(userID int64, n *domain.Notification)
}

// Deps wires an Aggregator.
type Deps struct {
	Gardens       GardenSource
	Plants        PlantSource
	Tasks         TaskSource
	Devices       DeviceStore
	Zones         ZoneSource
	Notifications NotificationStore
	Weather       WeatherSource
	Sensors       SensorSource
	Secrets       KeyOpener
	Cache         *cache.Cache
	Notifier      Notifier
	Logger        *slog.Logger
}

// Aggregator runs the weather, sensor, and maintenance batch jobs.
// Jobs are invoked externally (cron routes); each runs to completion in
// one call, and a failure on one entity is recorded in the run report
// without aborting the rest of the batch.
type Aggregator struct {
	deps Deps
	now  func() time.Time
}

// NewAggregator creates an Aggregator.
func NewAggregator(deps Deps) *Aggregator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Aggregator{deps: deps, now: time.Now}
}

// RunReport summarizes one batch invocation. Errors are keyed by the
// entity that failed ("garden:3", "device:7").
type RunReport struct {
	RunID      string            `json:"run_id"`
	Job        string            `json:"job"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Checked    int               `json:"checked"`
	Created    int               `json:"created"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func (a *Aggregator) newReport(job string) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		Job:       job,
		StartedAt: a.now(),
		Errors:    map[string]string{},
	}
}

func (r *RunReport) finish(now time.Time) *RunReport {
	r.FinishedAt = now
	return r
}

// RunWeather evaluates weather conditions for every garden with a
// postal code against its sensitive plants.
func (a *Aggregator) RunWeather(ctx context.Context) *RunReport {
	report := a.newReport("weather")

	gardens, err := a.deps.Gardens.ListWithPostalCode(ctx)
	if err != nil {
		report.Errors["gardens"] = err.Error()
		return report.finish(a.now())
	}

	for _, garden := range gardens {
		report.Checked++
		if err := a.weatherForGarden(ctx, garden, report); err != nil {
			report.Errors[fmt.Sprintf("garden:%d", garden.ID)] = err.Error()
			a.deps.Logger.Error("weather check failed",
				"garden_id", garden.ID, "error", err)
		}
	}
	return report.finish(a.now())
}

func (a *Aggregator) weatherForGarden(ctx context.Context, garden domain.Garden, report *RunReport) error {
	cond, err := a.conditions(ctx, *garden.PostalCode)
	if err != nil {
		return err
	}

	active, forecast := ClassifyConditions(cond)
	if len(active) == 0 && len(forecast) == 0 {
		return nil
	}

	plants, err := a.deps.Plants.ListWeatherSensitiveByGarden(ctx, garden.ID)
	if err != nil {
		return err
	}

	for _, plant := range plants {
		if err := a.alertPlant(ctx, plant, domain.NotificationWeatherAlert,
			relevantTo(plant.Plant, active), report); err != nil {
			report.Errors[fmt.Sprintf("plant:%d", plant.ID)] = err.Error()
			continue
		}
		if err := a.alertPlant(ctx, plant, domain.NotificationWeatherForecastAlert,
			relevantTo(plant.Plant, forecast), report); err != nil {
			report.Errors[fmt.Sprintf("plant:%d", plant.ID)] = err.Error()
		}
	}
	return nil
}

// conditions consults the cache before the upstream API. Cache errors
// degrade to a live fetch.
func (a *Aggregator) conditions(ctx context.Context, postalCode string) (*weather.Conditions, error) {
	if cached, err := a.deps.Cache.Conditions(ctx, postalCode); err == nil && cached != nil {
		return cached, nil
	}

	cond, err := a.deps.Weather.ConditionsFor(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	if err := a.deps.Cache.SetConditions(ctx, postalCode, cond); err != nil {
		a.deps.Logger.Warn("cache weather conditions", "postal_code", postalCode, "error", err)
	}
	return cond, nil
}

func (a *Aggregator) alertPlant(ctx context.Context, plant repository.SensitivePlant, typ domain.NotificationType, cats []domain.AlertCategory, report *RunReport) error {
	if len(cats) == 0 {
		return nil
	}

	cutoff := a.now().Add(-weatherLookback)
	var fresh []domain.AlertCategory
	for _, cat := range cats {
		exists, err := a.deps.Notifications.ExistsSince(ctx, plant.OwnerID, typ,
			map[string]any{"plant_id": plant.ID, "alert_types": []domain.AlertCategory{cat}},
			cutoff)
		if err != nil {
			return err
		}
		if !exists {
			fresh = append(fresh, cat)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	title := fmt.Sprintf("Weather alert for %s", plant.Name)
	message := fmt.Sprintf("Active weather hazards (%s) near %s may affect %s.",
		joinCategories(fresh), plant.GardenName, plant.Name)
	if typ == domain.NotificationWeatherForecastAlert {
		title = fmt.Sprintf("Weather forecast alert for %s", plant.Name)
		message = fmt.Sprintf("Forecast conditions (%s) near %s may affect %s.",
			joinCategories(fresh), plant.GardenName, plant.Name)
	}

	n := domain.Notification{
		UserID:  plant.OwnerID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if err := n.EncodeMeta(domain.WeatherAlertMeta{
		AlertTypes: fresh,
		PlantID:    plant.ID,
		PlantName:  plant.Name,
		ZoneID:     plant.ZoneID,
		ZoneName:   plant.ZoneName,
		GardenID:   plant.GardenID,
		GardenName: plant.GardenName,
	}); err != nil {
		return err
	}

	created, err := a.deps.Notifications.Create(ctx, n)
	if err != nil {
		return err
	}
	report.Created++
	a.push(created)
	return nil
}

// RunSensors polls every registered device, stores the reading, and
// alerts on threshold violations.
func (a *Aggregator) RunSensors(ctx context.Context) *RunReport {
	report := a.newReport("sensors")

	devices, err := a.deps.Devices.ListDevices(ctx)
	if err != nil {
		report.Errors["devices"] = err.Error()
		return report.finish(a.now())
	}

	// Decrypted API keys, one vendor call chain per user.
	keys := map[int64]string{}

	for _, device := range devices {
		report.Checked++
		if err := a.pollDevice(ctx, device, keys, report); err != nil {
			report.Errors[fmt.Sprintf("device:%d", device.ID)] = err.Error()
			a.deps.Logger.Error("device poll failed",
				"device_id", device.ID, "error", err)
		}
	}
	return report.finish(a.now())
}

func (a *Aggregator) pollDevice(ctx context.Context, device domain.GoveeDevice, keys map[int64]string, report *RunReport) error {
	key, ok := keys[device.UserID]
	if !ok {
		cred, err := a.deps.Devices.Credential(ctx, device.UserID)
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}
		key, err = a.deps.Secrets.Decrypt(cred.APIKeyEnc)
		if err != nil {
			return fmt.Errorf("decrypt credential: %w", err)
		}
		keys[device.UserID] = key
	}

	state, err := a.deps.Sensors.DeviceState(ctx, key, device.Device, device.Model)
	if err != nil {
		return err
	}
	if !state.Online {
		return fmt.Errorf("device offline")
	}

	var tempC *float64
	if state.TemperatureF != nil {
		c := units.FToC(*state.TemperatureF)
		tempC = &c
	}

	reading, err := a.deps.Devices.CreateReading(ctx, domain.GoveeReading{
		DeviceID:     device.ID,
		TemperatureC: tempC,
		HumidityPct:  state.HumidityPct,
		BatteryPct:   state.BatteryPct,
	})
	if err != nil {
		return err
	}
	if err := a.deps.Cache.SetLatestReading(ctx, *reading); err != nil {
		a.deps.Logger.Warn("cache reading", "device_id", device.ID, "error", err)
	}

	zone, err := a.deps.Zones.FindByID(ctx, device.ZoneID)
	if err != nil {
		return fmt.Errorf("load zone: %w", err)
	}

	cats := EvaluateReading(tempC, state.HumidityPct,
		Bounds{Min: device.TempMin, Max: device.TempMax},
		Bounds{Min: device.HumidityMin, Max: device.HumidityMax})
	cats = mergeCategories(cats, EvaluateReading(tempC, state.HumidityPct,
		Bounds{Min: zone.TempMin, Max: zone.TempMax},
		Bounds{Min: zone.HumidityMin, Max: zone.HumidityMax}))
	if len(cats) == 0 {
		return nil
	}

	cutoff := a.now().Add(-sensorLookback)
	var fresh []domain.AlertCategory
	for _, cat := range cats {
		exists, err := a.deps.Notifications.ExistsSince(ctx, device.UserID,
			domain.NotificationSensorAlert,
			map[string]any{"device_id": device.ID, "alert_types": []domain.AlertCategory{cat}},
			cutoff)
		if err != nil {
			return err
		}
		if !exists {
			fresh = append(fresh, cat)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	n := domain.Notification{
		UserID: device.UserID,
		Type:   domain.NotificationSensorAlert,
		Title:  fmt.Sprintf("Sensor alert for %s", device.Name),
		Message: fmt.Sprintf("Readings in %s are out of range (%s).",
			zone.Name, joinCategories(fresh)),
	}
	if err := n.EncodeMeta(domain.SensorAlertMeta{
		AlertTypes:  fresh,
		DeviceID:    device.ID,
		DeviceName:  device.Name,
		ZoneID:      zone.ID,
		ZoneName:    zone.Name,
		Temperature: tempC,
		Humidity:    state.HumidityPct,
	}); err != nil {
		return err
	}

	created, err := a.deps.Notifications.Create(ctx, n)
	if err != nil {
		return err
	}
	report.Created++
	a.push(created)
	return nil
}

// RunMaintenance reminds owners about tasks due now or earlier.
func (a *Aggregator) RunMaintenance(ctx context.Context) *RunReport {
	report := a.newReport("maintenance")

	tasks, err := a.deps.Tasks.ListDueTasks(ctx, a.now())
	if err != nil {
		report.Errors["tasks"] = err.Error()
		return report.finish(a.now())
	}

	cutoff := a.now().Add(-maintenanceLookback)
	for _, task := range tasks {
		report.Checked++

		exists, err := a.deps.Notifications.ExistsSince(ctx, task.OwnerID,
			domain.NotificationMaintenanceDue,
			map[string]any{"task_id": task.ID}, cutoff)
		if err != nil {
			report.Errors[fmt.Sprintf("task:%d", task.ID)] = err.Error()
			continue
		}
		if exists {
			continue
		}

		n := domain.Notification{
			UserID: task.OwnerID,
			Type:   domain.NotificationMaintenanceDue,
			Title:  fmt.Sprintf("Maintenance due: %s", task.Title),
			Message: fmt.Sprintf("%s for %s was due %s.",
				task.Title, task.EquipmentName, task.NextDueDate.Format("2006-01-02")),
		}
		if err := n.EncodeMeta(domain.MaintenanceMeta{
			TaskID:        task.ID,
			TaskTitle:     task.Title,
			EquipmentID:   task.EquipmentID,
			EquipmentName: task.EquipmentName,
			DueDate:       task.NextDueDate,
		}); err != nil {
			report.Errors[fmt.Sprintf("task:%d", task.ID)] = err.Error()
			continue
		}

		created, err := a.deps.Notifications.Create(ctx, n)
		if err != nil {
			report.Errors[fmt.Sprintf("task:%d", task.ID)] = err.Error()
			continue
		}
		report.Created++
		a.push(created)
	}
	return report.finish(a.now())
}

func (a *Aggregator) push(n *domain.Notification) {
	if a.deps.Notifier != nil {
		a.deps.Notifier.Notify(n.UserID, n)
	}
}

func joinCategories(cats []domain.AlertCategory) string {
	parts := make([]string, len(cats))
	for i, cat := range cats {
		parts[i] = string(cat)
	}
	return strings.Join(parts, ", ")
}

func mergeCategories(a, b []domain.AlertCategory) []domain.AlertCategory {
	seen := map[domain.AlertCategory]bool{}
	var out []domain.AlertCategory
	for _, cat := range append(a, b...) {
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}
