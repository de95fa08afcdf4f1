// Package feature maps place details onto GeoJSON features.
//
// Every feature carries the same property schema:
//
//	{"Location": {"Address": "<formatted address>"}, "Title": "<place name>"}
//
// Location groups "where" metadata; Title is the "what".
package feature

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/places-geojson/internal/model"
)

// Property keys of the output schema.
const (
	PropLocation = "Location"
	PropAddress  = "Address"
	PropTitle    = "Title"
)

// ToFeature converts a place into a Point feature at [lng, lat].
// Coordinates pass through unmodified.
func ToFeature(p model.Place) *geojson.Feature {
	return &geojson.Feature{
		Geometry: geom.NewPointFlat(geom.XY, []float64{p.Location.Lng, p.Location.Lat}),
		Properties: map[string]any{
			PropLocation: map[string]any{
				PropAddress: p.FormattedAddress,
			},
			PropTitle: p.Name,
		},
	}
}

// NewCollection wraps features, in order, in a FeatureCollection.
func NewCollection(features []*geojson.Feature) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(features)),
	}
	fc.Features = append(fc.Features, features...)
	return fc
}

// Title returns the Title property of f, or "" if absent.
func Title(f *geojson.Feature) string {
	s, _ := f.Properties[PropTitle].(string)
	return s
}

// Address returns the nested Location.Address property of f, or "" if absent.
func Address(f *geojson.Feature) string {
	loc, _ := f.Properties[PropLocation].(map[string]any)
	s, _ := loc[PropAddress].(string)
	return s
}

// Encode writes fc as UTF-8 JSON followed by a newline.
func Encode(w io.Writer, fc *geojson.FeatureCollection, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "feature: encode collection")
	}
	return nil
}
