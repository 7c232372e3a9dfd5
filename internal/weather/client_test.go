package weather

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

func newTestServers(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/us/97201", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"places":[{"latitude":"45.4978","longitude":"-122.6937"}]}`)
	})
	mux.HandleFunc("/us/00000", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"places":[]}`)
	})
	mux.HandleFunc("/points/45.4978,-122.6937", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"properties":{"forecast":"%s/gridpoints/PQR/112,100/forecast"}}`, srv.URL)
	})
	mux.HandleFunc("/gridpoints/PQR/112,100/forecast", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"properties":{"periods":[
			{"name":"Today","temperature":98,"temperatureUnit":"F","windSpeed":"10 to 20 mph","shortForecast":"Sunny","isDaytime":true,"probabilityOfPrecipitation":{"value":null}},
			{"name":"Tonight","temperature":60,"temperatureUnit":"F","windSpeed":"5 mph","shortForecast":"Showers","isDaytime":false,"probabilityOfPrecipitation":{"value":80}}
		]}}`)
	})
	mux.HandleFunc("/alerts/active", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "45.4978,-122.6937", r.URL.Query().Get("point"))
		fmt.Fprint(w, `{"features":[{"properties":{"event":"Excessive Heat Warning","severity":"Extreme","headline":"Heat through Friday"}}]}`)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, srv.URL, 5*time.Second), srv
}

func TestConditionsFor(t *testing.T) {
	client, _ := newTestServers(t)

	cond, err := client.ConditionsFor(context.Background(), "97201")
	require.NoError(t, err)

	assert.InDelta(t, 45.4978, cond.Point.Latitude, 1e-6)
	assert.InDelta(t, -122.6937, cond.Point.Longitude, 1e-6)

	require.Len(t, cond.Periods, 2)
	assert.Equal(t, 98, cond.Periods[0].Temperature)
	assert.Equal(t, "10 to 20 mph", cond.Periods[0].WindSpeed)
	assert.Zero(t, cond.Periods[0].PrecipChance, "null precipitation parses as zero")
	assert.Equal(t, 80, cond.Periods[1].PrecipChance)

	require.Len(t, cond.Alerts, 1)
	assert.Equal(t, "Excessive Heat Warning", cond.Alerts[0].Event)
	assert.WithinDuration(t, time.Now(), cond.FetchedAt, time.Minute)
}

func TestGeocode_NoPlaces(t *testing.T) {
	client, _ := newTestServers(t)

	_, err := client.Geocode(context.Background(), "00000")
	assert.ErrorContains(t, err, "no places found")
}

func TestGeocode_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, srv.URL, 5*time.Second)
	_, err := client.Geocode(context.Background(), "97201")
	assert.ErrorContains(t, err, "unexpected status 503")
}
