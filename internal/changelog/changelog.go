// Package changelog records field-level diffs on updates of tracked
// entities. Recording is best-effort: a failure here never fails or
// rolls back the update that triggered it.
package changelog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/verdanthq/verdant/internal/domain"
)

// Store persists audit entries.
type Store interface {
	Create(ctx context.Context, entry domain.ChangeLog) error
}

// Tracker diffs and records entity changes.
type Tracker struct {
	store  Store
	logger *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, logger: logger}
}

// Record persists a change entry if any fields differ. Errors are
// logged and swallowed.
func (t *Tracker) Record(ctx context.Context, entityType string, entityID int64, entityName, path string, userID int64, changes []domain.FieldChange) {
	if len(changes) == 0 {
		return
	}

	raw, err := json.Marshal(changes)
	if err != nil {
		t.logger.Error("marshal change log", "entity_type", entityType, "entity_id", entityID, "error", err)
		return
	}

	entry := domain.ChangeLog{
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Changes:    raw,
		Path:       path,
		UserID:     userID,
	}
	if err := t.store.Create(ctx, entry); err != nil {
		t.logger.Error("record change log", "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}

// DiffZone compares the tracked zone fields.
func DiffZone(old, updated domain.Zone) []domain.FieldChange {
	var changes []domain.FieldChange
	changes = appendChange(changes, "name", old.Name, updated.Name)
	changes = appendChange(changes, "zone_type", strVal(old.ZoneType), strVal(updated.ZoneType))
	changes = appendChange(changes, "growth_stage", string(old.GrowthStage), string(updated.GrowthStage))
	changes = appendChange(changes, "temp_min", floatVal(old.TempMin), floatVal(updated.TempMin))
	changes = appendChange(changes, "temp_max", floatVal(old.TempMax), floatVal(updated.TempMax))
	changes = appendChange(changes, "humidity_min", floatVal(old.HumidityMin), floatVal(updated.HumidityMin))
	changes = appendChange(changes, "humidity_max", floatVal(old.HumidityMax), floatVal(updated.HumidityMax))
	return changes
}

// DiffPlant compares the tracked plant fields.
func DiffPlant(old, updated domain.Plant) []domain.FieldChange {
	var changes []domain.FieldChange
	changes = appendChange(changes, "name", old.Name, updated.Name)
	changes = appendChange(changes, "species", strVal(old.Species), strVal(updated.Species))
	changes = appendChange(changes, "growth_stage", string(old.GrowthStage), string(updated.GrowthStage))
	changes = appendChange(changes, "heat_sensitive", boolVal(old.HeatSensitive), boolVal(updated.HeatSensitive))
	changes = appendChange(changes, "frost_sensitive", boolVal(old.FrostSensitive), boolVal(updated.FrostSensitive))
	changes = appendChange(changes, "wind_sensitive", boolVal(old.WindSensitive), boolVal(updated.WindSensitive))
	changes = appendChange(changes, "flood_sensitive", boolVal(old.FloodSensitive), boolVal(updated.FloodSensitive))
	return changes
}

// DiffRoom compares the tracked room fields.
func DiffRoom(old, updated domain.Room) []domain.FieldChange {
	var changes []domain.FieldChange
	changes = appendChange(changes, "name", old.Name, updated.Name)
	changes = appendChange(changes, "room_type", strVal(old.RoomType), strVal(updated.RoomType))
	return changes
}

// DiffGarden compares the tracked garden fields.
func DiffGarden(old, updated domain.Garden) []domain.FieldChange {
	var changes []domain.FieldChange
	changes = appendChange(changes, "name", old.Name, updated.Name)
	changes = appendChange(changes, "description", strVal(old.Description), strVal(updated.Description))
	changes = appendChange(changes, "postal_code", strVal(old.PostalCode), strVal(updated.PostalCode))
	return changes
}

func appendChange(changes []domain.FieldChange, field, oldValue, newValue string) []domain.FieldChange {
	if oldValue == newValue {
		return changes
	}
	return append(changes, domain.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatVal(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func boolVal(b bool) string {
	return fmt.Sprintf("%t", b)
}
