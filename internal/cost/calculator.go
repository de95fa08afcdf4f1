package cost

// Rates holds per-API pricing configuration.
type Rates struct {
	Places PlacesRate
}

// PlacesRate holds Places Details pricing.
type PlacesRate struct {
	DetailsPer1K float64 // USD per 1000 requests
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// PlaceDetails computes the cost of n Places Details requests.
func (c *Calculator) PlaceDetails(n int) float64 {
	if n <= 0 {
		return 0
	}
	return (float64(n) / 1000) * c.rates.Places.DetailsPer1K
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Places: PlacesRate{DetailsPer1K: 17.00},
	}
}
