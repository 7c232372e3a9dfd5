package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTemperature_RoundTrip(t *testing.T) {
	for _, v := range []float64{-40, 0, 21.5, 37, 100} {
		f, err := ConvertTemperature(v, Celsius, Fahrenheit)
		require.NoError(t, err)
		back, err := ConvertTemperature(f, Fahrenheit, Celsius)
		require.NoError(t, err)
		assert.InDelta(t, v, back, 1e-9)
	}

	// -40 is the fixed point of the affine transform.
	f, err := ConvertTemperature(-40, Celsius, Fahrenheit)
	require.NoError(t, err)
	assert.InDelta(t, -40, f, 1e-9)
}

func TestConvertTemperature_Unsupported(t *testing.T) {
	_, err := ConvertTemperature(1, Celsius, "K")
	assert.Error(t, err)
}

func TestConvertVolume(t *testing.T) {
	got, err := ConvertVolume(1, Gallon, Milliliter)
	require.NoError(t, err)
	assert.InDelta(t, 3785.41, got, 1e-9)

	got, err = ConvertVolume(1, FluidOunce, Milliliter)
	require.NoError(t, err)
	assert.InDelta(t, 29.5735, got, 1e-9)

	got, err = ConvertVolume(2500, Milliliter, Liter)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-9)
}

func TestConvertVolume_RoundTrip(t *testing.T) {
	unitsList := []string{Milliliter, Liter, Gallon, FluidOunce}
	for _, from := range unitsList {
		for _, to := range unitsList {
			out, err := ConvertVolume(3.7, from, to)
			require.NoError(t, err)
			back, err := ConvertVolume(out, to, from)
			require.NoError(t, err)
			assert.InDelta(t, 3.7, back, 1e-9, "%s -> %s", from, to)
		}
	}
}

func TestConvertLength(t *testing.T) {
	got, err := ConvertLength(1, Inch, Centimeter)
	require.NoError(t, err)
	assert.InDelta(t, 2.54, got, 1e-9)

	got, err = ConvertLength(1, Foot, Inch)
	require.NoError(t, err)
	assert.InDelta(t, 12, got, 1e-9)

	got, err = ConvertLength(150, Centimeter, Meter)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-9)
}

func TestConvertLength_RoundTrip(t *testing.T) {
	unitsList := []string{Centimeter, Inch, Meter, Foot}
	for _, from := range unitsList {
		for _, to := range unitsList {
			out, err := ConvertLength(42.0, from, to)
			require.NoError(t, err)
			back, err := ConvertLength(out, to, from)
			require.NoError(t, err)
			assert.InDelta(t, 42.0, back, 1e-9, "%s -> %s", from, to)
		}
	}
}

func TestConvertLength_Unsupported(t *testing.T) {
	_, err := ConvertLength(1, "furlong", Meter)
	assert.Error(t, err)
}
