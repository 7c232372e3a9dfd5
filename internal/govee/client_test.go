package govee

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestDevices(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/devices", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Govee-API-Key"))
		fmt.Fprint(w, `{"data":{"devices":[
			{"device":"AA:BB:CC","model":"H5075","deviceName":"Tent sensor","controllable":false,"retrievable":true}
		]}}`)
	}))

	devices, err := client.Devices(context.Background(), "test-key")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "AA:BB:CC", devices[0].Device)
	assert.Equal(t, "H5075", devices[0].Model)
	assert.True(t, devices[0].Retrievable)
}

func TestDevices_BadKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Devices(context.Background(), "bad-key")
	assert.ErrorContains(t, err, "unexpected status 401")
}

func TestDeviceState(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/devices/state", r.URL.Path)
		assert.Equal(t, "AA:BB:CC", r.URL.Query().Get("device"))
		assert.Equal(t, "H5075", r.URL.Query().Get("model"))
		fmt.Fprint(w, `{"data":{"properties":[
			{"online":true},
			{"temperature":78.8},
			{"humidity":55.2},
			{"battery":90}
		]}}`)
	}))

	state, err := client.DeviceState(context.Background(), "test-key", "AA:BB:CC", "H5075")
	require.NoError(t, err)

	assert.True(t, state.Online)
	require.NotNil(t, state.TemperatureF)
	assert.InDelta(t, 78.8, *state.TemperatureF, 1e-9)
	require.NotNil(t, state.HumidityPct)
	assert.InDelta(t, 55.2, *state.HumidityPct, 1e-9)
	require.NotNil(t, state.BatteryPct)
	assert.InDelta(t, 90, *state.BatteryPct, 1e-9)
}

func TestDeviceState_WrappedValues(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{"properties":[
			{"online":true},
			{"temperature":{"value":72.5}},
			{"humidity":{"value":48}}
		]}}`)
	}))

	state, err := client.DeviceState(context.Background(), "test-key", "AA:BB:CC", "H5075")
	require.NoError(t, err)

	require.NotNil(t, state.TemperatureF)
	assert.InDelta(t, 72.5, *state.TemperatureF, 1e-9)
	require.NotNil(t, state.HumidityPct)
	assert.InDelta(t, 48, *state.HumidityPct, 1e-9)
	assert.Nil(t, state.BatteryPct)
}

func TestDeviceState_MissingFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{"properties":[{"online":false}]}}`)
	}))

	state, err := client.DeviceState(context.Background(), "test-key", "AA:BB:CC", "H5075")
	require.NoError(t, err)

	assert.False(t, state.Online)
	assert.Nil(t, state.TemperatureF)
	assert.Nil(t, state.HumidityPct)
}
