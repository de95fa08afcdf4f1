package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceDetails(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(Rates{Places: PlacesRate{DetailsPer1K: 20.0}})

	tests := []struct {
		name string
		n    int
		want float64
	}{
		{name: "zero", n: 0, want: 0},
		{name: "negative", n: -5, want: 0},
		{name: "single", n: 1, want: 0.02},
		{name: "thousand", n: 1000, want: 20.0},
		{name: "partial", n: 250, want: 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, calc.PlaceDetails(tt.n), 1e-9)
		})
	}
}

func TestDefaultRates(t *testing.T) {
	t.Parallel()
	rates := DefaultRates()
	assert.Greater(t, rates.Places.DetailsPer1K, 0.0)

	calc := NewCalculator(rates)
	assert.InDelta(t, rates.Places.DetailsPer1K, calc.PlaceDetails(1000), 1e-9)
}
