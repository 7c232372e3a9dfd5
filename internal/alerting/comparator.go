// Package alerting evaluates sensor readings and weather conditions
// against configured thresholds and produces deduplicated notifications.
package alerting

import (
	"strconv"
	"strings"

	"github.com/verdanthq/verdant/internal/domain"
)

// Bounds is a nullable min/max threshold pair. A nil bound never alerts
// for that side; comparisons are inclusive.
type Bounds struct {
	Min *float64
	Max *float64
}

// Check classifies a reading against the bounds.
func (b Bounds) Check(value float64) (belowMin, aboveMax bool) {
	if b.Min != nil && value <= *b.Min {
		belowMin = true
	}
	if b.Max != nil && value >= *b.Max {
		aboveMax = true
	}
	return belowMin, aboveMax
}

// Configured reports whether either bound is set.
func (b Bounds) Configured() bool {
	return b.Min != nil || b.Max != nil
}

// EvaluateReading maps a temperature/humidity reading against bounds to
// hazard categories: temperature extremes become heat/frost, humidity
// extremes become flood/drought.
func EvaluateReading(tempC, humidityPct *float64, temp, humidity Bounds) []domain.AlertCategory {
	var cats []domain.AlertCategory
	if tempC != nil {
		below, above := temp.Check(*tempC)
		if above {
			cats = append(cats, domain.AlertHeat)
		}
		if below {
			cats = append(cats, domain.AlertFrost)
		}
	}
	if humidityPct != nil {
		below, above := humidity.Check(*humidityPct)
		if above {
			cats = append(cats, domain.AlertFlood)
		}
		if below {
			cats = append(cats, domain.AlertDrought)
		}
	}
	return cats
}

// Forecast-derived hazard cutoffs. Forecast temperatures arrive in
// Fahrenheit from the upstream API.
const (
	forecastHeatF     = 95
	forecastFrostF    = 32
	forecastWindMPH   = 20
	forecastPrecipPct = 70
)

// classifyEvent maps an advisory event name to a hazard category.
func classifyEvent(event string) (domain.AlertCategory, bool) {
	e := strings.ToLower(event)
	switch {
	case strings.Contains(e, "heat"):
		return domain.AlertHeat, true
	case strings.Contains(e, "frost"), strings.Contains(e, "freeze"),
		strings.Contains(e, "cold"), strings.Contains(e, "wind chill"):
		return domain.AlertFrost, true
	case strings.Contains(e, "flood"):
		return domain.AlertFlood, true
	case strings.Contains(e, "drought"):
		return domain.AlertDrought, true
	case strings.Contains(e, "wind"), strings.Contains(e, "gale"), strings.Contains(e, "hurricane"):
		return domain.AlertWind, true
	case strings.Contains(e, "rain"), strings.Contains(e, "storm"):
		return domain.AlertHeavyRain, true
	default:
		return "", false
	}
}

// parseWindMPH extracts the top speed from strings like "10 mph" or
// "15 to 25 mph".
func parseWindMPH(s string) (float64, bool) {
	fields := strings.Fields(s)
	best := 0.0
	found := false
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			if v > best {
				best = v
			}
			found = true
		}
	}
	return best, found
}

// relevantTo filters hazard categories down to those a plant has opted
// into via its sensitivity flags. Drought advisories apply to any
// weather-sensitive plant.
func relevantTo(plant domain.Plant, cats []domain.AlertCategory) []domain.AlertCategory {
	var out []domain.AlertCategory
	for _, cat := range cats {
		switch cat {
		case domain.AlertHeat:
			if plant.HeatSensitive {
				out = append(out, cat)
			}
		case domain.AlertFrost:
			if plant.FrostSensitive {
				out = append(out, cat)
			}
		case domain.AlertWind:
			if plant.WindSensitive {
				out = append(out, cat)
			}
		case domain.AlertFlood, domain.AlertHeavyRain:
			if plant.FloodSensitive {
				out = append(out, cat)
			}
		case domain.AlertDrought:
			if plant.WeatherSensitive() {
				out = append(out, cat)
			}
		}
	}
	return out
}
