package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/provname"
)

// ErrNoFeatures is returned when a boundary file yields no usable polygons.
var ErrNoFeatures = errors.New("no polygon features")

// Feature is one named region of a boundary file.
type Feature struct {
	Name  string    // spelling used by the boundary file
	Key   string    // normalized join key
	Parts []Polygon // one per polygon of a multipolygon
}

// Contains reports whether pt (lon/lat) falls inside any part.
func (f *Feature) Contains(pt Point) bool {
	for _, p := range f.Parts {
		if p.Contains(pt) {
			return true
		}
	}
	return false
}

// Bounds returns the bounding box of every part.
func (f *Feature) Bounds() Bounds {
	b := EmptyBounds()
	for _, p := range f.Parts {
		b = b.Union(p.Outer.Bounds())
	}
	return b
}

// Area returns the planar area in square degrees.
func (f *Feature) Area() float64 {
	a := 0.0
	for _, p := range f.Parts {
		a += p.Area()
	}
	return a
}

// Centroid returns the centroid of the largest part, used for labels.
func (f *Feature) Centroid() Point {
	best, bestArea := Point{}, -1.0
	for _, p := range f.Parts {
		if a := p.Area(); a > bestArea {
			best, bestArea = p.Outer.Centroid(), a
		}
	}
	return best
}

// DistanceTo returns the distance from pt to the nearest edge of any part.
func (f *Feature) DistanceTo(pt Point) float64 {
	d := math.Inf(1)
	for _, p := range f.Parts {
		d = math.Min(d, p.Outer.DistanceTo(pt))
	}
	return d
}

// Boundaries is an immutable collection of named features.
type Boundaries struct {
	Features   []*Feature
	bounds     Bounds
	byKey      map[string]*Feature
	collisions []Collision
}

// Collision records a feature whose name normalizes to the key of a
// differently spelled feature read earlier.
type Collision struct {
	Key          string
	Name         string
	ConflictWith string
}

// LoadBoundaries reads a GeoJSON FeatureCollection from path, naming each
// feature by the given property.
func LoadBoundaries(path, nameProperty string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundaries: %w", err)
	}
	b, err := ParseBoundaries(data, nameProperty)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return b, nil
}

// ParseBoundaries decodes GeoJSON bytes. Features with the same name are
// merged into one. A differently spelled name that normalizes to an existing
// key is kept as a separate feature and recorded as a collision; the key
// keeps resolving to the first feature. Features without a name or polygonal
// geometry are skipped.
func ParseBoundaries(data []byte, nameProperty string) (*Boundaries, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decoding feature collection: %w", err)
	}

	b := &Boundaries{bounds: EmptyBounds(), byKey: make(map[string]*Feature)}
	byName := make(map[string]*Feature)
	for _, gf := range fc.Features {
		name, _ := gf.Properties[nameProperty].(string)
		name = strings.TrimSpace(name)
		key := provname.Normalize(name)
		if key == "" {
			continue
		}
		parts := polygons(gf.Geometry)
		if len(parts) == 0 {
			continue
		}
		f, ok := byName[name]
		if !ok {
			f = &Feature{Name: name, Key: key}
			byName[name] = f
			b.Features = append(b.Features, f)
			if first, taken := b.byKey[key]; taken {
				b.collisions = append(b.collisions, Collision{Key: key, Name: name, ConflictWith: first.Name})
			} else {
				b.byKey[key] = f
			}
		}
		f.Parts = append(f.Parts, parts...)
		b.bounds = b.bounds.Union(f.Bounds())
	}
	if len(b.Features) == 0 {
		return nil, ErrNoFeatures
	}
	return b, nil
}

func polygons(g geom.T) []Polygon {
	switch g := g.(type) {
	case *geom.Polygon:
		if p, ok := polygon(g); ok {
			return []Polygon{p}
		}
	case *geom.MultiPolygon:
		var out []Polygon
		for i := 0; i < g.NumPolygons(); i++ {
			if p, ok := polygon(g.Polygon(i)); ok {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func polygon(g *geom.Polygon) (Polygon, bool) {
	if g.NumLinearRings() == 0 {
		return Polygon{}, false
	}
	p := Polygon{Outer: ring(g.LinearRing(0))}
	if p.Outer.IsEmpty() {
		return Polygon{}, false
	}
	for i := 1; i < g.NumLinearRings(); i++ {
		p.Holes = append(p.Holes, ring(g.LinearRing(i)))
	}
	return p, true
}

func ring(lr *geom.LinearRing) Ring {
	coords := lr.Coords()
	pts := make([]Point, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, Point{X: c.X(), Y: c.Y()})
	}
	return Ring{Vertices: pts}
}

// Collisions returns the features whose distinct names share a key.
func (b *Boundaries) Collisions() []Collision {
	return b.collisions
}

// Bounds returns the bounding box of every feature in lon/lat.
func (b *Boundaries) Bounds() Bounds {
	return b.bounds
}

// Lookup returns the feature for a normalized key.
func (b *Boundaries) Lookup(key string) (*Feature, bool) {
	f, ok := b.byKey[key]
	return f, ok
}

// Keys returns every feature key, sorted.
func (b *Boundaries) Keys() []string {
	keys := make([]string, 0, len(b.byKey))
	for k := range b.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FeatureAt returns the feature containing pt. When no feature contains it,
// the nearest feature within tolerance degrees is returned, so clicks on a
// border or a simplified coastline still resolve.
func (b *Boundaries) FeatureAt(pt Point, tolerance float64) (*Feature, bool) {
	var nearest *Feature
	best := tolerance
	for _, f := range b.Features {
		fb := f.Bounds()
		if fb.Contains(pt) && f.Contains(pt) {
			return f, true
		}
		if tolerance <= 0 {
			continue
		}
		if d := f.DistanceTo(pt); d <= best {
			nearest, best = f, d
		}
	}
	return nearest, nearest != nil
}
