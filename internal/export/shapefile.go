// Package export writes feature collections in formats other than GeoJSON.
package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/places-geojson/internal/feature"
)

// DBF character fields hold at most 254 bytes.
const dbfStringLen = 254

// Attribute columns of the exported shapefile.
const (
	FieldTitle   = "TITLE"
	FieldAddress = "ADDRESS"
)

// ShapefilePath normalizes basePath to the .shp file name go-shp expects.
func ShapefilePath(basePath string) string {
	return strings.TrimSuffix(basePath, ".shp") + ".shp"
}

// shapefileExts are the files that make up one shapefile.
var shapefileExts = []string{".shp", ".shx", ".dbf"}

// WriteShapefile writes fc as a POINT shapefile (.shp, .shx, .dbf) next to basePath.
// Every feature must have a point geometry. The files are built in a temporary
// directory and moved into place only once all of them are complete.
func WriteShapefile(basePath string, fc *geojson.FeatureCollection) error {
	stem := strings.TrimSuffix(basePath, ".shp")
	if stem == "" {
		return eris.New("export: shapefile path is required")
	}

	points := make([]*geom.Point, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok {
			return eris.Errorf("export: feature %d has %T geometry, want point", i, f.Geometry)
		}
		points[i] = pt
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(stem), "."+filepath.Base(stem)+"-shp-*")
	if err != nil {
		return eris.Wrap(err, "export: create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	tmpStem := filepath.Join(tmpDir, filepath.Base(stem))
	if err := writeShapes(tmpStem, fc, points); err != nil {
		return err
	}

	// go-shp names the attribute table "<name>dbf", without the dot.
	if err := os.Rename(tmpStem+"dbf", tmpStem+".dbf"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrap(err, "export: rename dbf")
	}

	return moveShapefile(tmpStem, stem)
}

func writeShapes(stem string, fc *geojson.FeatureCollection, points []*geom.Point) error {
	w, err := shp.Create(stem+".shp", shp.POINT)
	if err != nil {
		return eris.Wrap(err, "export: create shapefile")
	}
	defer w.Close()

	if err := w.SetFields([]shp.Field{
		shp.StringField(FieldTitle, dbfStringLen),
		shp.StringField(FieldAddress, dbfStringLen),
	}); err != nil {
		return eris.Wrap(err, "export: set fields")
	}

	for i, f := range fc.Features {
		row := int(w.Write(&shp.Point{X: points[i].X(), Y: points[i].Y()}))
		if err := w.WriteAttribute(row, 0, truncate(feature.Title(f), dbfStringLen)); err != nil {
			return eris.Wrapf(err, "export: write %s of feature %d", FieldTitle, i)
		}
		if err := w.WriteAttribute(row, 1, truncate(feature.Address(f), dbfStringLen)); err != nil {
			return eris.Wrapf(err, "export: write %s of feature %d", FieldAddress, i)
		}
	}

	return nil
}

// moveShapefile renames every component from src to dst. On failure the
// components already moved are removed so no partial shapefile is left behind.
func moveShapefile(src, dst string) error {
	var moved []string
	for _, ext := range shapefileExts {
		if err := os.Rename(src+ext, dst+ext); err != nil {
			for _, m := range moved {
				_ = os.Remove(m)
			}
			return eris.Wrapf(err, "export: move %s", ext)
		}
		moved = append(moved, dst+ext)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
