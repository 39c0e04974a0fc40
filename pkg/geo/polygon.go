package geo

import "math"

// Ring is a closed ring of vertices. The closing vertex may or may not be
// repeated; all methods treat the ring as implicitly closed.
type Ring struct {
	Vertices []Point
}

// NewRing creates a ring from a list of vertices.
func NewRing(pts ...Point) Ring {
	return Ring{Vertices: pts}
}

// IsEmpty returns true if the ring has fewer than 3 vertices.
func (r Ring) IsEmpty() bool {
	return len(r.Vertices) < 3
}

// SignedArea returns the signed area using the shoelace formula.
// Positive for counterclockwise winding, negative for clockwise.
func (r Ring) SignedArea() float64 {
	n := len(r.Vertices)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += r.Vertices[i].X * r.Vertices[j].Y
		area -= r.Vertices[j].X * r.Vertices[i].Y
	}
	return area / 2
}

// Area returns the unsigned area of the ring.
func (r Ring) Area() float64 {
	return math.Abs(r.SignedArea())
}

// Centroid returns the area centroid of the ring.
func (r Ring) Centroid() Point {
	n := len(r.Vertices)
	if n == 0 {
		return Point{}
	}
	a := r.SignedArea()
	if n < 3 || math.Abs(a) < 1e-12 {
		// Degenerate: return average.
		sum := Point{}
		for _, v := range r.Vertices {
			sum = sum.Add(v)
		}
		return sum.Scale(1.0 / float64(n))
	}
	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := r.Vertices[i].X*r.Vertices[j].Y - r.Vertices[j].X*r.Vertices[i].Y
		cx += (r.Vertices[i].X + r.Vertices[j].X) * cross
		cy += (r.Vertices[i].Y + r.Vertices[j].Y) * cross
	}
	f := 1.0 / (6.0 * a)
	return Point{cx * f, cy * f}
}

// Contains returns true if the point is inside the ring using ray casting.
func (r Ring) Contains(pt Point) bool {
	n := len(r.Vertices)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := r.Vertices[i]
		vj := r.Vertices[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) &&
			pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// DistanceTo returns the distance from pt to the nearest edge of the ring.
func (r Ring) DistanceTo(pt Point) float64 {
	n := len(r.Vertices)
	if n == 0 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		a, b := r.Vertices[i], r.Vertices[(i+1)%n]
		if d := pt.Distance(nearestOnSegment(pt, a, b)); d < best {
			best = d
		}
	}
	return best
}

// Bounds returns the axis-aligned bounding box of the ring.
func (r Ring) Bounds() Bounds {
	b := EmptyBounds()
	for _, v := range r.Vertices {
		b = b.Extend(v)
	}
	return b
}

// Polygon is an outer ring with optional holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Area returns the outer area minus the hole areas.
func (p Polygon) Area() float64 {
	a := p.Outer.Area()
	for _, h := range p.Holes {
		a -= h.Area()
	}
	return a
}

// Contains reports whether pt lies inside the outer ring and outside every
// hole.
func (p Polygon) Contains(pt Point) bool {
	if !p.Outer.Contains(pt) {
		return false
	}
	for _, h := range p.Holes {
		if h.Contains(pt) {
			return false
		}
	}
	return true
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// EmptyBounds returns a box that any Extend call replaces.
func EmptyBounds() Bounds {
	return Bounds{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// Extend returns the box grown to include pt.
func (b Bounds) Extend(pt Point) Bounds {
	b.Min.X = math.Min(b.Min.X, pt.X)
	b.Min.Y = math.Min(b.Min.Y, pt.Y)
	b.Max.X = math.Max(b.Max.X, pt.X)
	b.Max.Y = math.Max(b.Max.Y, pt.Y)
	return b
}

// Union returns the box covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Contains reports whether pt lies within the box.
func (b Bounds) Contains(pt Point) bool {
	return pt.X >= b.Min.X && pt.X <= b.Max.X && pt.Y >= b.Min.Y && pt.Y <= b.Max.Y
}

// Width returns the X extent.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the Y extent.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }
