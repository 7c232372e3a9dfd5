package changelog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/domain"
)

type fakeStore struct {
	entries []domain.ChangeLog
	err     error
}

func (f *fakeStore) Create(_ context.Context, entry domain.ChangeLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func f64(v float64) *float64 { return &v }

func TestDiffZone(t *testing.T) {
	old := domain.Zone{Name: "Bench A", TempMax: f64(28)}
	updated := domain.Zone{Name: "Bench A", TempMax: f64(30), GrowthStage: domain.StageFlowering}

	changes := DiffZone(old, updated)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.FieldChange{Field: "growth_stage", OldValue: "", NewValue: "flowering"}, changes[0])
	assert.Equal(t, domain.FieldChange{Field: "temp_max", OldValue: "28", NewValue: "30"}, changes[1])
}

func TestDiffZone_NoChanges(t *testing.T) {
	zone := domain.Zone{Name: "Bench A", TempMax: f64(28)}
	assert.Empty(t, DiffZone(zone, zone))
}

func TestRecord_PersistsEntry(t *testing.T) {
	store := &fakeStore{}
	tracker := NewTracker(store, slog.Default())

	tracker.Record(context.Background(), "zone", 5, "Bench A", "Backyard / Tent / Bench A", 7,
		[]domain.FieldChange{{Field: "name", OldValue: "A", NewValue: "B"}})

	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, "zone", entry.EntityType)
	assert.Equal(t, int64(5), entry.EntityID)
	assert.Equal(t, "Backyard / Tent / Bench A", entry.Path)

	decoded, err := entry.FieldChanges()
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "name", decoded[0].Field)
}

func TestRecord_SkipsEmptyDiff(t *testing.T) {
	store := &fakeStore{}
	tracker := NewTracker(store, slog.Default())

	tracker.Record(context.Background(), "zone", 5, "Bench A", "", 7, nil)
	assert.Empty(t, store.entries)
}

func TestRecord_SwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	tracker := NewTracker(store, slog.Default())

	// Must not panic or propagate.
	tracker.Record(context.Background(), "zone", 5, "Bench A", "", 7,
		[]domain.FieldChange{{Field: "name", OldValue: "A", NewValue: "B"}})
}

func TestDiffPlant_SensitivityFlags(t *testing.T) {
	old := domain.Plant{Name: "Tomato"}
	updated := domain.Plant{Name: "Tomato", HeatSensitive: true}

	changes := DiffPlant(old, updated)
	require.Len(t, changes, 1)
	assert.Equal(t, "heat_sensitive", changes[0].Field)
	assert.Equal(t, "false", changes[0].OldValue)
	assert.Equal(t, "true", changes[0].NewValue)
}
