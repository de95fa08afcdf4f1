package model

// LatLng is a WGS84 coordinate as returned by the Places API.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place holds the validated subset of a Places Details result.
type Place struct {
	FormattedAddress string `json:"formatted_address"`
	Name             string `json:"name"`
	Location         LatLng `json:"location"`
}
