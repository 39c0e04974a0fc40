package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
)

// pxToPt converts image pixels to vg points at the default raster DPI, so a
// w x h pixel map encodes as a w x h pixel PNG and an SVG of the same CSS size.
const pxToPt = 72.0 / 96.0

const (
	mapMargin   = 8.0  // px around the boundaries
	legendBand  = 56.0 // px reserved under the map
	clickRadius = 4.0  // px tolerance for clicks just outside a feature
	classes     = 6
)

// MapView is the fixed frame the choropleth is drawn in. The same frame turns
// click coordinates back into features.
type MapView struct {
	Width, Height float64 // px
	Projection    geo.Projection
	boundaries    *geo.Boundaries
}

// NewMapView fits the boundaries into a width x height pixel image.
func NewMapView(b *geo.Boundaries, width, height float64) *MapView {
	return &MapView{
		Width:      width,
		Height:     height,
		Projection: geo.Fit(b.Bounds(), width, height-legendBand, mapMargin),
		boundaries: b,
	}
}

// FeatureAt resolves a pixel position on the rendered map.
func (m *MapView) FeatureAt(px geo.Point) (*geo.Feature, bool) {
	ll := m.Projection.Unproject(px)
	return m.boundaries.FeatureAt(ll, m.Projection.PixelTolerance(clickRadius))
}

// FeatureAtDisplayed resolves a click on the map shown displayedWidth pixels
// wide. Browsers report image-input clicks in on-screen pixels, so the
// position is scaled back to the map's natural size first. A non-positive
// width means the map was shown at its natural size.
func (m *MapView) FeatureAtDisplayed(px geo.Point, displayedWidth float64) (*geo.Feature, bool) {
	if displayedWidth > 0 {
		px = px.Scale(m.Width / displayedWidth)
	}
	return m.FeatureAt(px)
}

func (m *MapView) point(px geo.Point) vg.Point {
	return vg.Point{
		X: vg.Length(px.X * pxToPt),
		Y: vg.Length((m.Height - px.Y) * pxToPt),
	}
}

// ColorScale bins values into a sequential palette between Min and Max.
type ColorScale struct {
	Min, Max float64
	Colors   []color.Color
}

// NewColorScale returns the OrRd scale for a map layer.
func NewColorScale(layer *analytics.MapLayer) (ColorScale, error) {
	pal, err := brewer.GetPalette(brewer.TypeSequential, "OrRd", classes)
	if err != nil {
		return ColorScale{}, fmt.Errorf("loading palette: %w", err)
	}
	return ColorScale{Min: layer.Min, Max: layer.Max, Colors: pal.Colors()}, nil
}

// Class returns the bin index for v.
func (s ColorScale) Class(v float64) int {
	n := len(s.Colors)
	if s.Max <= s.Min {
		return 0
	}
	i := int(math.Floor((v - s.Min) / (s.Max - s.Min) * float64(n)))
	return max(0, min(n-1, i))
}

// Color returns the fill for v.
func (s ColorScale) Color(v float64) color.Color {
	return s.Colors[s.Class(v)]
}

// Edges returns the len(Colors)+1 bin boundaries.
func (s ColorScale) Edges() []float64 {
	n := len(s.Colors)
	out := make([]float64, n+1)
	for i := range out {
		out[i] = s.Min + (s.Max-s.Min)*float64(i)/float64(n)
	}
	return out
}

// Choropleth draws layer in the given format ("svg" or "png"). The feature
// whose key equals selected gets a heavier outline.
func (m *MapView) Choropleth(w io.Writer, format string, layer *analytics.MapLayer, selected string) error {
	scale, err := NewColorScale(layer)
	if err != nil {
		return err
	}
	cw, err := draw.NewFormattedCanvas(vg.Length(m.Width*pxToPt), vg.Length(m.Height*pxToPt), format)
	if err != nil {
		return fmt.Errorf("creating %s canvas: %w", format, err)
	}
	dc := draw.New(cw)

	var highlight *geo.Feature
	for _, f := range m.boundaries.Features {
		fill := noDataColor
		if v, ok := layer.Value(f.Key); ok && v.HasData {
			fill = scale.Color(v.Value)
		}
		m.drawFeature(dc, f, fill, outlineColor, 0.6)
		if f.Key == selected {
			highlight = f
		}
	}
	if highlight != nil {
		m.drawFeature(dc, highlight, nil, selectedColor, 2)
	}
	m.drawLegend(dc, scale, layer)

	if _, err := cw.WriteTo(w); err != nil {
		return fmt.Errorf("writing map: %w", err)
	}
	return nil
}

func (m *MapView) drawFeature(dc draw.Canvas, f *geo.Feature, fill, stroke color.Color, width float64) {
	for _, part := range f.Parts {
		var path vg.Path
		m.appendRing(&path, part.Outer)
		for _, h := range part.Holes {
			m.appendRing(&path, h)
		}
		if fill != nil {
			dc.SetColor(fill)
			dc.Fill(path)
		}
		dc.SetColor(stroke)
		dc.SetLineWidth(vg.Points(width))
		dc.Stroke(path)
	}
}

func (m *MapView) appendRing(path *vg.Path, r geo.Ring) {
	for i, v := range r.Vertices {
		pt := m.point(m.Projection.Project(v))
		if i == 0 {
			path.Move(pt)
		} else {
			path.Line(pt)
		}
	}
	path.Close()
}

func (m *MapView) drawLegend(dc draw.Canvas, scale ColorScale, layer *analytics.MapLayer) {
	sty := labelStyle(9)
	barW := m.Width * 0.6
	left := (m.Width - barW) / 2
	top := m.Height - legendBand + 18
	boxH := 10.0
	boxW := barW / float64(len(scale.Colors))

	title := fmt.Sprintf("Residential electricity demand (%s) in %s (%s)", layer.Unit, layer.Year, layer.Scenario)
	dc.FillText(sty, m.point(geo.Pt(m.Width/2, top-10)), title)

	for i, c := range scale.Colors {
		x := left + float64(i)*boxW
		dc.FillPolygon(c, []vg.Point{
			m.point(geo.Pt(x, top)),
			m.point(geo.Pt(x+boxW, top)),
			m.point(geo.Pt(x+boxW, top+boxH)),
			m.point(geo.Pt(x, top+boxH)),
		})
	}
	for i, e := range scale.Edges() {
		x := left + float64(i)*boxW
		dc.FillText(sty, m.point(geo.Pt(x, top+boxH+10)), fmt.Sprintf("%.0f", e))
	}
}

func labelStyle(size float64) text.Style {
	sty := plot.New().Legend.TextStyle
	sty.Font.Size = vg.Points(size)
	sty.Color = color.Black
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter
	return sty
}
