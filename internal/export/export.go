// Package export builds a ZIP archive of a garden's data as CSV files,
// streamed straight to the response writer.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/repository"
)

// GardenSource resolves the garden being exported.
type GardenSource interface {
	FindByID(ctx context.Context, id int64) (*domain.Garden, error)
}

// RoomSource lists a garden's rooms.
type RoomSource interface {
	ListByGarden(ctx context.Context, gardenID int64) ([]domain.Room, error)
}

// ZoneSource lists zones per room.
type ZoneSource interface {
	ListByRoom(ctx context.Context, roomID int64) ([]domain.Zone, error)
}

// PlantSource lists plants per zone.
type PlantSource interface {
	ListByZone(ctx context.Context, zoneID int64) ([]domain.Plant, error)
}

// SeedSource lists a garden's seed inventory.
type SeedSource interface {
	ListByGarden(ctx context.Context, gardenID int64) ([]domain.Seed, error)
}

// LogSource lists activity log entries.
type LogSource interface {
	List(ctx context.Context, userID int64, filter repository.LogFilter) ([]domain.LogEntry, error)
}

// ReadingSource lists sensor devices and their readings.
type ReadingSource interface {
	ListDevicesByZone(ctx context.Context, zoneID int64) ([]domain.GoveeDevice, error)
	ListReadings(ctx context.Context, deviceID int64, limit int) ([]domain.GoveeReading, error)
}

// readingsPerDevice caps the history included per sensor.
const readingsPerDevice = 1000

// Deps are the data sources an Exporter reads from.
type Deps struct {
	Gardens  GardenSource
	Rooms    RoomSource
	Zones    ZoneSource
	Plants   PlantSource
	Seeds    SeedSource
	Logs     LogSource
	Readings ReadingSource
}

// Exporter assembles garden archives.
type Exporter struct {
	deps Deps
}

// New creates an Exporter.
func New(deps Deps) *Exporter {
	return &Exporter{deps: deps}
}

// Filename suggests an archive name for a garden export.
func Filename(garden *domain.Garden, now time.Time) string {
	return fmt.Sprintf("garden-%d-export-%s.zip", garden.ID, now.Format("2006-01-02"))
}

// WriteArchive streams a ZIP of the garden's zones, plants, seeds,
// activity logs, and sensor readings to w. Log entries are scoped to
// the requesting user, matching what the log listing endpoint returns.
func (e *Exporter) WriteArchive(ctx context.Context, w io.Writer, gardenID, userID int64) error {
	garden, err := e.deps.Gardens.FindByID(ctx, gardenID)
	if err != nil {
		return err
	}

	rooms, err := e.deps.Rooms.ListByGarden(ctx, garden.ID)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	// Collect the zone tree once; every section below walks it.
	type zoneRow struct {
		room domain.Room
		zone domain.Zone
	}
	var zones []zoneRow
	for _, room := range rooms {
		zs, err := e.deps.Zones.ListByRoom(ctx, room.ID)
		if err != nil {
			return fmt.Errorf("list zones for room %d: %w", room.ID, err)
		}
		for _, z := range zs {
			zones = append(zones, zoneRow{room: room, zone: z})
		}
	}

	archive := zip.NewWriter(w)

	err = writeCSV(archive, "zones.csv",
		[]string{"id", "room", "name", "zone_type", "growth_stage", "temp_min", "temp_max", "humidity_min", "humidity_max"},
		func(out *csv.Writer) error {
			for _, row := range zones {
				z := row.zone
				if err := out.Write([]string{
					formatID(z.ID), row.room.Name, z.Name, strOrEmpty(z.ZoneType), string(z.GrowthStage),
					floatOrEmpty(z.TempMin), floatOrEmpty(z.TempMax),
					floatOrEmpty(z.HumidityMin), floatOrEmpty(z.HumidityMax),
				}); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = writeCSV(archive, "plants.csv",
		[]string{"id", "zone", "name", "species", "growth_stage", "planted_at", "heat_sensitive", "frost_sensitive", "wind_sensitive", "flood_sensitive", "notes"},
		func(out *csv.Writer) error {
			for _, row := range zones {
				plants, err := e.deps.Plants.ListByZone(ctx, row.zone.ID)
				if err != nil {
					return fmt.Errorf("list plants for zone %d: %w", row.zone.ID, err)
				}
				for _, p := range plants {
					if err := out.Write([]string{
						formatID(p.ID), row.zone.Name, p.Name, strOrEmpty(p.Species), string(p.GrowthStage),
						dateOrEmpty(p.PlantedAt),
						formatBool(p.HeatSensitive), formatBool(p.FrostSensitive),
						formatBool(p.WindSensitive), formatBool(p.FloodSensitive),
						strOrEmpty(p.Notes),
					}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = writeCSV(archive, "seeds.csv",
		[]string{"id", "name", "species", "vendor", "quantity", "acquired_at", "notes"},
		func(out *csv.Writer) error {
			seeds, err := e.deps.Seeds.ListByGarden(ctx, garden.ID)
			if err != nil {
				return fmt.Errorf("list seeds: %w", err)
			}
			for _, s := range seeds {
				if err := out.Write([]string{
					formatID(s.ID), s.Name, strOrEmpty(s.Species), strOrEmpty(s.Vendor),
					strconv.Itoa(s.Quantity), dateOrEmpty(s.AcquiredAt), strOrEmpty(s.Notes),
				}); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = writeCSV(archive, "logs.csv",
		[]string{"id", "zone", "plant_id", "activity", "note", "logged_at"},
		func(out *csv.Writer) error {
			for _, row := range zones {
				zoneID := row.zone.ID
				entries, err := e.deps.Logs.List(ctx, userID, repository.LogFilter{ZoneID: &zoneID})
				if err != nil {
					return fmt.Errorf("list logs for zone %d: %w", zoneID, err)
				}
				for _, entry := range entries {
					plantID := ""
					if entry.PlantID != nil {
						plantID = formatID(*entry.PlantID)
					}
					if err := out.Write([]string{
						formatID(entry.ID), row.zone.Name, plantID, string(entry.Activity),
						strOrEmpty(entry.Note), entry.LoggedAt.Format(time.RFC3339),
					}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = writeCSV(archive, "readings.csv",
		[]string{"device", "zone", "recorded_at", "temperature_c", "humidity_pct", "battery_pct"},
		func(out *csv.Writer) error {
			for _, row := range zones {
				devices, err := e.deps.Readings.ListDevicesByZone(ctx, row.zone.ID)
				if err != nil {
					return fmt.Errorf("list devices for zone %d: %w", row.zone.ID, err)
				}
				for _, device := range devices {
					readings, err := e.deps.Readings.ListReadings(ctx, device.ID, readingsPerDevice)
					if err != nil {
						return fmt.Errorf("list readings for device %d: %w", device.ID, err)
					}
					for _, r := range readings {
						if err := out.Write([]string{
							device.Name, row.zone.Name, r.RecordedAt.Format(time.RFC3339),
							floatOrEmpty(r.TemperatureC), floatOrEmpty(r.HumidityPct), floatOrEmpty(r.BatteryPct),
						}); err != nil {
							return err
						}
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	return archive.Close()
}

func writeCSV(archive *zip.Writer, name string, header []string, body func(out *csv.Writer) error) error {
	f, err := archive.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	out := csv.NewWriter(f)
	if err := out.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := body(out); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
