// Package units provides stateless conversions for temperature, volume,
// and length. Volume and length convert through a single pivot unit so
// every conversion round-trips exactly up to floating-point tolerance.
package units

import "fmt"

// Temperature units.
const (
	Celsius    = "C"
	Fahrenheit = "F"
)

// Volume units.
const (
	Milliliter = "ml"
	Liter      = "l"
	Gallon     = "gal"
	FluidOunce = "floz"
)

// Length units.
const (
	Centimeter = "cm"
	Inch       = "in"
	Meter      = "m"
	Foot       = "ft"
)

// Milliliters per unit.
var volumeToML = map[string]float64{
	Milliliter: 1,
	Liter:      1000,
	Gallon:     3785.41,
	FluidOunce: 29.5735,
}

// Centimeters per unit.
var lengthToCM = map[string]float64{
	Centimeter: 1,
	Inch:       2.54,
	Meter:      100,
	Foot:       30.48,
}

// ConvertTemperature converts between Celsius and Fahrenheit.
func ConvertTemperature(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	switch {
	case from == Celsius && to == Fahrenheit:
		return value*9/5 + 32, nil
	case from == Fahrenheit && to == Celsius:
		return (value - 32) * 5 / 9, nil
	default:
		return 0, fmt.Errorf("unsupported temperature conversion %q to %q", from, to)
	}
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 { return c*9/5 + 32 }

// FToC converts Fahrenheit to Celsius.
func FToC(f float64) float64 { return (f - 32) * 5 / 9 }

// ConvertVolume converts between volume units via a milliliter pivot.
func ConvertVolume(value float64, from, to string) (float64, error) {
	fromML, ok := volumeToML[from]
	if !ok {
		return 0, fmt.Errorf("unsupported volume unit %q", from)
	}
	toML, ok := volumeToML[to]
	if !ok {
		return 0, fmt.Errorf("unsupported volume unit %q", to)
	}
	return value * fromML / toML, nil
}

// ConvertLength converts between length units via a centimeter pivot.
func ConvertLength(value float64, from, to string) (float64, error) {
	fromCM, ok := lengthToCM[from]
	if !ok {
		return 0, fmt.Errorf("unsupported length unit %q", from)
	}
	toCM, ok := lengthToCM[to]
	if !ok {
		return 0, fmt.Errorf("unsupported length unit %q", to)
	}
	return value * fromCM / toCM, nil
}
