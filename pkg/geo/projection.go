package geo

import "math"

// Projection maps lon/lat to image pixels with an equirectangular projection
// scaled by the cosine of the central latitude. Pixel Y grows downward.
type Projection struct {
	Width, Height float64
	scale         float64 // pixels per projected degree
	kx            float64 // cos(mid latitude)
	origin        Point   // projected min corner
	offset        Point   // pixel offset that centres the drawing
}

// Fit returns a projection placing bounds inside a width x height image with
// margin pixels on each side, preserving aspect ratio.
func Fit(bounds Bounds, width, height, margin float64) Projection {
	p := Projection{Width: width, Height: height, kx: 1, scale: 1}
	if bounds.IsEmpty() {
		return p
	}
	mid := (bounds.Min.Y + bounds.Max.Y) / 2
	p.kx = math.Cos(mid * math.Pi / 180)
	if p.kx <= 0 {
		p.kx = 1
	}
	w := bounds.Width() * p.kx
	h := bounds.Height()
	availW := math.Max(width-2*margin, 1)
	availH := math.Max(height-2*margin, 1)
	switch {
	case w > 0 && h > 0:
		p.scale = math.Min(availW/w, availH/h)
	case w > 0:
		p.scale = availW / w
	case h > 0:
		p.scale = availH / h
	}
	p.origin = Point{bounds.Min.X * p.kx, bounds.Min.Y}
	p.offset = Point{
		X: (width - w*p.scale) / 2,
		Y: (height - h*p.scale) / 2,
	}
	return p
}

// Project converts lon/lat to pixel coordinates.
func (p Projection) Project(pt Point) Point {
	x := (pt.X*p.kx-p.origin.X)*p.scale + p.offset.X
	y := (pt.Y-p.origin.Y)*p.scale + p.offset.Y
	return Point{X: x, Y: p.Height - y}
}

// Unproject converts pixel coordinates back to lon/lat.
func (p Projection) Unproject(px Point) Point {
	x := ((px.X-p.offset.X)/p.scale + p.origin.X) / p.kx
	y := (p.Height-px.Y-p.offset.Y)/p.scale + p.origin.Y
	return Point{X: x, Y: y}
}

// PixelTolerance converts a distance in pixels to degrees of latitude.
func (p Projection) PixelTolerance(px float64) float64 {
	return px / p.scale
}
