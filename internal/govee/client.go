// Package govee talks to the Govee developer API for device discovery
// and state polling. Requests carry a per-user API key.
package govee

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client calls the vendor device API. The base URL is configurable so
// tests can point at a local server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Govee API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Device is a vendor device registration.
type Device struct {
	Device       string `json:"device"`
	Model        string `json:"model"`
	DeviceName   string `json:"deviceName"`
	Controllable bool   `json:"controllable"`
	Retrievable  bool   `json:"retrievable"`
}

// State is a point-in-time device reading. The vendor reports
// temperature in Fahrenheit.
type State struct {
	Online       bool
	TemperatureF *float64
	HumidityPct  *float64
	BatteryPct   *float64
}

// Devices lists the devices registered to the API key's account.
func (c *Client) Devices(ctx context.Context, apiKey string) ([]Device, error) {
	var payload struct {
		Data struct {
			Devices []Device `json:"devices"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, apiKey, c.baseURL+"/v1/devices", nil, &payload); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return payload.Data.Devices, nil
}

// DeviceState fetches the current state of one device.
func (c *Client) DeviceState(ctx context.Context, apiKey, device, model string) (*State, error) {
	var payload struct {
		Data struct {
			Properties []map[string]json.RawMessage `json:"properties"`
		} `json:"data"`
	}
	q := url.Values{"device": {device}, "model": {model}}
	if err := c.getJSON(ctx, apiKey, c.baseURL+"/v1/devices/state", q, &payload); err != nil {
		return nil, fmt.Errorf("fetch state for %s: %w", device, err)
	}

	// Properties arrive as a list of single-key objects.
	state := &State{}
	for _, prop := range payload.Data.Properties {
		for key, raw := range prop {
			switch key {
			case "online":
				var online bool
				if json.Unmarshal(raw, &online) == nil {
					state.Online = online
				}
			case "temperature":
				if v, ok := parseNumber(raw); ok {
					state.TemperatureF = &v
				}
			case "humidity":
				if v, ok := parseNumber(raw); ok {
					state.HumidityPct = &v
				}
			case "battery":
				if v, ok := parseNumber(raw); ok {
					state.BatteryPct = &v
				}
			}
		}
	}
	return state, nil
}

// Some firmware versions report numeric properties as objects with a
// "value" field instead of bare numbers.
func parseNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var wrapped struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Value, true
	}
	return 0, false
}

func (c *Client) getJSON(ctx context.Context, apiKey, rawURL string, query url.Values, out any) error {
	if query != nil {
		rawURL = rawURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Govee-API-Key", apiKey)

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
