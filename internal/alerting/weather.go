package alerting

import (
	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/weather"
)

// ClassifyConditions splits the hazards present in a weather lookup
// into those backed by an active advisory and those derived from the
// forecast periods.
func ClassifyConditions(cond *weather.Conditions) (active, forecast []domain.AlertCategory) {
	seen := map[domain.AlertCategory]bool{}
	for _, alert := range cond.Alerts {
		if cat, ok := classifyEvent(alert.Event); ok && !seen[cat] {
			seen[cat] = true
			active = append(active, cat)
		}
	}

	seenForecast := map[domain.AlertCategory]bool{}
	add := func(cat domain.AlertCategory) {
		// An active advisory supersedes the forecast signal for the
		// same hazard.
		if !seen[cat] && !seenForecast[cat] {
			seenForecast[cat] = true
			forecast = append(forecast, cat)
		}
	}

	for _, period := range cond.Periods {
		if period.TempUnit == "F" || period.TempUnit == "" {
			if float64(period.Temperature) >= forecastHeatF {
				add(domain.AlertHeat)
			}
			if float64(period.Temperature) <= forecastFrostF {
				add(domain.AlertFrost)
			}
		}
		if mph, ok := parseWindMPH(period.WindSpeed); ok && mph >= forecastWindMPH {
			add(domain.AlertWind)
		}
		if period.PrecipChance >= forecastPrecipPct {
			add(domain.AlertHeavyRain)
		}
	}
	return active, forecast
}
