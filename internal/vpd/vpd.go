// Package vpd computes vapor pressure deficit, a combined
// temperature/humidity plant-stress metric, and classifies readings
// against growth-stage target bands.
package vpd

import (
	"math"

	"github.com/verdanthq/verdant/internal/domain"
)

// SVP returns saturation vapor pressure in kPa for a temperature in
// Celsius, using the Magnus formula.
func SVP(tempC float64) float64 {
	return 0.6112 * math.Exp(17.67*tempC/(tempC+243.5))
}

// VPD returns vapor pressure deficit in kPa.
func VPD(tempC, humidityPct float64) float64 {
	return SVP(tempC) * (1 - humidityPct/100)
}

// FromReading computes VPD from nullable sensor fields. Missing inputs
// yield (NaN, false) rather than a panic.
func FromReading(tempC, humidityPct *float64) (float64, bool) {
	if tempC == nil || humidityPct == nil {
		return math.NaN(), false
	}
	return VPD(*tempC, *humidityPct), true
}

// Status classifies a VPD value relative to a growth-stage band.
type Status string

const (
	StatusOptimal  Status = "optimal"
	StatusLow      Status = "low"
	StatusHigh     Status = "high"
	StatusCritical Status = "critical"
)

// Band is a target VPD range in kPa.
type Band struct {
	Min float64
	Max float64
}

var stageBands = map[domain.GrowthStage]Band{
	domain.StageSeedling:   {Min: 0.4, Max: 0.8},
	domain.StageVegetative: {Min: 0.8, Max: 1.2},
	domain.StageFlowering:  {Min: 1.2, Max: 1.6},
}

var defaultBand = Band{Min: 0.8, Max: 1.2}

// BandFor returns the target band for a growth stage, falling back to
// the vegetative band for unknown or empty stages.
func BandFor(stage domain.GrowthStage) Band {
	if band, ok := stageBands[stage]; ok {
		return band
	}
	return defaultBand
}

// Classify maps a VPD value to a status for the given growth stage.
// Band boundaries are inclusive; values beyond 1.5x the band ceiling are
// critical rather than merely high. NaN input is critical.
func Classify(value float64, stage domain.GrowthStage) Status {
	if math.IsNaN(value) {
		return StatusCritical
	}
	band := BandFor(stage)
	switch {
	case value < band.Min:
		return StatusLow
	case value <= band.Max:
		return StatusOptimal
	case value > band.Max*1.5:
		return StatusCritical
	default:
		return StatusHigh
	}
}
