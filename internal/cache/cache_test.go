package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/weather"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestLatestReading_RoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	temp := 24.5
	rh := 55.0
	reading := domain.GoveeReading{
		DeviceID:     7,
		RecordedAt:   time.Now().Truncate(time.Second),
		TemperatureC: &temp,
		HumidityPct:  &rh,
	}

	require.NoError(t, c.SetLatestReading(ctx, reading))

	got, err := c.LatestReading(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, reading.DeviceID, got.DeviceID)
	assert.InDelta(t, temp, *got.TemperatureC, 1e-9)
	assert.InDelta(t, rh, *got.HumidityPct, 1e-9)
}

func TestLatestReading_Miss(t *testing.T) {
	c, _ := setupCache(t)

	got, err := c.LatestReading(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestReading_Expires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLatestReading(ctx, domain.GoveeReading{DeviceID: 3}))
	mr.FastForward(2 * time.Hour)

	got, err := c.LatestReading(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConditions_RoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	cond := &weather.Conditions{
		Point:  weather.Point{Latitude: 40.71, Longitude: -74.0},
		Alerts: []weather.Alert{{Event: "Heat Advisory"}},
	}
	require.NoError(t, c.SetConditions(ctx, "10001", cond))

	got, err := c.Conditions(ctx, "10001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cond.Point, got.Point)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "Heat Advisory", got.Alerts[0].Event)
}

func TestNilCache_NoOps(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.NoError(t, c.SetLatestReading(ctx, domain.GoveeReading{DeviceID: 1}))
	got, err := c.LatestReading(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Close())
}
