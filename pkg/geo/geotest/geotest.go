// Package geotest holds a small boundary file for tests. Province names follow
// the ASCII spelling of the public boundary datasets so that joins against the
// datasettest tables exercise the normalizer.
package geotest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
)

// NameProperty is the feature property carrying the province name.
const NameProperty = "shapeName"

// GeoJSON contains:
//   - Ankara: square lon 32..33, lat 39..40
//   - Istanbul: multipolygon, lon 28..29 lat 41..42 and lon 29.5..30 lat 40.5..41
//   - Canakkale: square lon 26..27, lat 39..40 with a hole at 26.4..26.6, 39.4..39.6
//   - Bolu: square lon 31..32, lat 40..41, absent from the data tables
//   - a point feature that must be skipped
const GeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"shapeName": "Ankara", "shapeISO": "TR-06"},
     "geometry": {"type": "Polygon", "coordinates": [[[32,39],[33,39],[33,40],[32,40],[32,39]]]}},
    {"type": "Feature", "properties": {"shapeName": "Istanbul", "shapeISO": "TR-34"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[28,41],[29,41],[29,42],[28,42],[28,41]]],
       [[[29.5,40.5],[30,40.5],[30,41],[29.5,41],[29.5,40.5]]]]}},
    {"type": "Feature", "properties": {"shapeName": "Canakkale", "shapeISO": "TR-17"},
     "geometry": {"type": "Polygon", "coordinates": [
       [[26,39],[27,39],[27,40],[26,40],[26,39]],
       [[26.4,39.4],[26.6,39.4],[26.6,39.6],[26.4,39.6],[26.4,39.4]]]}},
    {"type": "Feature", "properties": {"shapeName": "Bolu", "shapeISO": "TR-14"},
     "geometry": {"type": "Polygon", "coordinates": [[[31,40],[32,40],[32,41],[31,41],[31,40]]]}},
    {"type": "Feature", "properties": {"shapeName": "Marker"},
     "geometry": {"type": "Point", "coordinates": [30,39]}}
  ]
}`

// Boundaries parses GeoJSON.
func Boundaries(t testing.TB) *geo.Boundaries {
	t.Helper()
	b, err := geo.ParseBoundaries([]byte(GeoJSON), NameProperty)
	if err != nil {
		t.Fatalf("parsing boundary fixture: %v", err)
	}
	return b
}

// WriteFile writes GeoJSON to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(GeoJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
