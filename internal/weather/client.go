// Package weather talks to an NWS-style forecast API: postal code is
// geocoded to a point, the point resolves to a gridpoint forecast, and
// active alerts are looked up by point.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches forecasts and active alerts. Base URLs are
// configurable so tests can point at a local server.
type Client struct {
	weatherBase string
	geocodeBase string
	http        *http.Client
}

// NewClient creates a weather client. A nil httpClient uses a default
// with the given timeout.
func NewClient(weatherBase, geocodeBase string, timeout time.Duration) *Client {
	return &Client{
		weatherBase: weatherBase,
		geocodeBase: geocodeBase,
		http:        &http.Client{Timeout: timeout},
	}
}

// Point is a geographic coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// ForecastPeriod is one entry of a gridpoint forecast.
type ForecastPeriod struct {
	Name          string `json:"name"`
	Temperature   int    `json:"temperature"`
	TempUnit      string `json:"temperatureUnit"`
	WindSpeed     string `json:"windSpeed"`
	ShortForecast string `json:"shortForecast"`
	IsDaytime     bool   `json:"isDaytime"`
	PrecipChance  int    `json:"-"`
}

// Alert is an active hazard advisory for a point.
type Alert struct {
	Event       string `json:"event"`
	Severity    string `json:"severity"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}

// Conditions bundles everything the alerting jobs need for one location.
type Conditions struct {
	Point     Point
	Periods   []ForecastPeriod
	Alerts    []Alert
	FetchedAt time.Time
}

// Geocode resolves a US postal code to a point.
func (c *Client) Geocode(ctx context.Context, postalCode string) (Point, error) {
	var payload struct {
		Places []struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"places"`
	}
	u := fmt.Sprintf("%s/us/%s", c.geocodeBase, url.PathEscape(postalCode))
	if err := c.getJSON(ctx, u, nil, &payload); err != nil {
		return Point{}, fmt.Errorf("geocode %s: %w", postalCode, err)
	}
	if len(payload.Places) == 0 {
		return Point{}, fmt.Errorf("geocode %s: no places found", postalCode)
	}

	lat, err := strconv.ParseFloat(payload.Places[0].Latitude, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode %s: parse latitude: %w", postalCode, err)
	}
	lon, err := strconv.ParseFloat(payload.Places[0].Longitude, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode %s: parse longitude: %w", postalCode, err)
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}

// ForecastURL resolves a point to its gridpoint forecast URL.
func (c *Client) ForecastURL(ctx context.Context, p Point) (string, error) {
	var payload struct {
		Properties struct {
			Forecast string `json:"forecast"`
		} `json:"properties"`
	}
	u := fmt.Sprintf("%s/points/%.4f,%.4f", c.weatherBase, p.Latitude, p.Longitude)
	if err := c.getJSON(ctx, u, nil, &payload); err != nil {
		return "", fmt.Errorf("resolve point: %w", err)
	}
	if payload.Properties.Forecast == "" {
		return "", fmt.Errorf("resolve point: no forecast url")
	}
	return payload.Properties.Forecast, nil
}

// Forecast fetches the forecast periods from a gridpoint URL.
func (c *Client) Forecast(ctx context.Context, forecastURL string) ([]ForecastPeriod, error) {
	var payload struct {
		Properties struct {
			Periods []struct {
				ForecastPeriod
				ProbabilityOfPrecipitation struct {
					Value *int `json:"value"`
				} `json:"probabilityOfPrecipitation"`
			} `json:"periods"`
		} `json:"properties"`
	}
	if err := c.getJSON(ctx, forecastURL, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	periods := make([]ForecastPeriod, 0, len(payload.Properties.Periods))
	for _, p := range payload.Properties.Periods {
		period := p.ForecastPeriod
		if p.ProbabilityOfPrecipitation.Value != nil {
			period.PrecipChance = *p.ProbabilityOfPrecipitation.Value
		}
		periods = append(periods, period)
	}
	return periods, nil
}

// ActiveAlerts fetches active hazard advisories for a point.
func (c *Client) ActiveAlerts(ctx context.Context, p Point) ([]Alert, error) {
	var payload struct {
		Features []struct {
			Properties Alert `json:"properties"`
		} `json:"features"`
	}
	u := fmt.Sprintf("%s/alerts/active", c.weatherBase)
	q := url.Values{"point": {fmt.Sprintf("%.4f,%.4f", p.Latitude, p.Longitude)}}
	if err := c.getJSON(ctx, u, q, &payload); err != nil {
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}

	alerts := make([]Alert, 0, len(payload.Features))
	for _, f := range payload.Features {
		alerts = append(alerts, f.Properties)
	}
	return alerts, nil
}

// ConditionsFor runs the full postal-code lookup chain.
func (c *Client) ConditionsFor(ctx context.Context, postalCode string) (*Conditions, error) {
	point, err := c.Geocode(ctx, postalCode)
	if err != nil {
		return nil, err
	}

	forecastURL, err := c.ForecastURL(ctx, point)
	if err != nil {
		return nil, err
	}

	periods, err := c.Forecast(ctx, forecastURL)
	if err != nil {
		return nil, err
	}

	alerts, err := c.ActiveAlerts(ctx, point)
	if err != nil {
		return nil, err
	}

	return &Conditions{
		Point:     point,
		Periods:   periods,
		Alerts:    alerts,
		FetchedAt: time.Now(),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	if query != nil {
		rawURL = rawURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", "verdant-weather/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
