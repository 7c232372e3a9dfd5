package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verdanthq/verdant/internal/domain"
	"github.com/verdanthq/verdant/internal/weather"
)

func f64(v float64) *float64 { return &v }

func TestBoundsCheck_InclusiveBoundary(t *testing.T) {
	b := Bounds{Min: f64(10), Max: f64(30)}

	_, above := b.Check(30)
	assert.True(t, above, "reading equal to max must flag")

	below, _ := b.Check(10)
	assert.True(t, below, "reading equal to min must flag")

	below, above = b.Check(20)
	assert.False(t, below)
	assert.False(t, above)
}

func TestBoundsCheck_NilBoundsNeverFlag(t *testing.T) {
	b := Bounds{}
	below, above := b.Check(1000)
	assert.False(t, below)
	assert.False(t, above)
	assert.False(t, b.Configured())
}

func TestEvaluateReading(t *testing.T) {
	temp := Bounds{Max: f64(30)}
	humidity := Bounds{Min: f64(40), Max: f64(70)}

	cats := EvaluateReading(f64(31), f64(55), temp, humidity)
	assert.Equal(t, []domain.AlertCategory{domain.AlertHeat}, cats)

	cats = EvaluateReading(f64(30), f64(55), temp, humidity)
	assert.Equal(t, []domain.AlertCategory{domain.AlertHeat}, cats, "boundary is inclusive")

	cats = EvaluateReading(f64(25), f64(80), temp, humidity)
	assert.Equal(t, []domain.AlertCategory{domain.AlertFlood}, cats)

	cats = EvaluateReading(f64(25), f64(30), temp, humidity)
	assert.Equal(t, []domain.AlertCategory{domain.AlertDrought}, cats)

	cats = EvaluateReading(nil, nil, temp, humidity)
	assert.Empty(t, cats, "missing readings never flag")
}

func TestClassifyEvent(t *testing.T) {
	cases := map[string]domain.AlertCategory{
		"Excessive Heat Warning": domain.AlertHeat,
		"Frost Advisory":         domain.AlertFrost,
		"Freeze Watch":           domain.AlertFrost,
		"High Wind Warning":      domain.AlertWind,
		"Flood Warning":          domain.AlertFlood,
		"Severe Thunderstorm":    domain.AlertHeavyRain,
	}
	for event, want := range cases {
		got, ok := classifyEvent(event)
		assert.True(t, ok, event)
		assert.Equal(t, want, got, event)
	}

	_, ok := classifyEvent("Air Quality Alert")
	assert.False(t, ok)
}

func TestParseWindMPH(t *testing.T) {
	v, ok := parseWindMPH("10 mph")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	v, ok = parseWindMPH("15 to 25 mph")
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)

	_, ok = parseWindMPH("calm")
	assert.False(t, ok)
}

func TestRelevantTo_FiltersOnSensitivityFlags(t *testing.T) {
	plant := domain.Plant{HeatSensitive: true, FloodSensitive: true}
	cats := []domain.AlertCategory{
		domain.AlertHeat, domain.AlertFrost, domain.AlertWind,
		domain.AlertHeavyRain, domain.AlertDrought,
	}

	got := relevantTo(plant, cats)
	assert.Equal(t, []domain.AlertCategory{
		domain.AlertHeat, domain.AlertHeavyRain, domain.AlertDrought,
	}, got)

	assert.Empty(t, relevantTo(domain.Plant{}, cats),
		"a plant with no flags never receives weather alerts")
}

func TestClassifyConditions(t *testing.T) {
	cond := &weather.Conditions{
		Alerts: []weather.Alert{{Event: "Heat Advisory"}},
		Periods: []weather.ForecastPeriod{
			{Temperature: 98, TempUnit: "F", WindSpeed: "25 mph", PrecipChance: 80},
			{Temperature: 30, TempUnit: "F", WindSpeed: "5 mph"},
		},
	}

	active, forecast := ClassifyConditions(cond)
	assert.Equal(t, []domain.AlertCategory{domain.AlertHeat}, active)
	// Heat comes from the advisory, so the forecast contributes the rest.
	assert.ElementsMatch(t, []domain.AlertCategory{
		domain.AlertWind, domain.AlertHeavyRain, domain.AlertFrost,
	}, forecast)
}
