package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
)

// Chart sizes used by the dashboard.
const (
	ChartWidth  = 7 * vg.Inch
	ChartHeight = 3.5 * vg.Inch
)

// NationalChart plots the national totals with the selected scenario
// highlighted and the others muted and dashed.
func NationalChart(v *analytics.NationalView, selected string) (*plot.Plot, error) {
	p := newPlot("Total residential demand in Turkey", v.Unit)

	if v.Historical != nil {
		if err := addLine(p, *v.Historical, SeriesColor(analytics.HistoricalSeries), 2, false); err != nil {
			return nil, err
		}
	}
	// Muted scenarios first so the selected one is drawn on top.
	for _, s := range v.Scenarios {
		if s.Name == selected {
			continue
		}
		if err := addLine(p, s, muted(SeriesColor(s.Name)), 1, true); err != nil {
			return nil, err
		}
	}
	if s, ok := v.Scenario(selected); ok {
		if err := addLine(p, s, SeriesColor(s.Name), 2.5, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ProvinceChart plots every series of a province in its shared unit.
func ProvinceChart(v *analytics.ProvinceView, title string) (*plot.Plot, error) {
	if title == "" {
		title = v.Name
	}
	p := newPlot(fmt.Sprintf("Demand in %s", title), v.Unit)
	for _, s := range v.Series {
		width := 1.5
		if s.Name == analytics.HistoricalSeries {
			width = 2
		}
		if err := addLine(p, s, SeriesColor(s.Name), width, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// EmptyChart returns a titled plot with no data, used when a province has
// no rows.
func EmptyChart(title, message string) *plot.Plot {
	p := newPlot(title, analytics.GWh)
	p.X.Label.Text = message
	p.HideAxes()
	return p
}

// WriteChart encodes p as svg or png.
func WriteChart(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(ChartWidth, ChartHeight, format)
	if err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

func newPlot(title, unit string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = fmt.Sprintf("Electricity (%s)", unit)
	p.X.Tick.Marker = plot.TickerFunc(yearTicks)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, s analytics.Series, c color.Color, width float64, dashed bool) error {
	if len(s.Points) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(s.Points))
	for i, pt := range s.Points {
		xys[i].X = float64(pt.Year)
		xys[i].Y = pt.Value
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("series %s: %w", s.Name, err)
	}
	line.Color = c
	line.Width = vg.Points(width)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	p.Add(line)
	p.Legend.Add(s.Name, line)
	return nil
}

// yearTicks labels whole years every five years, with minor ticks between.
func yearTicks(lo, hi float64) []plot.Tick {
	var ticks []plot.Tick
	for y := math.Ceil(lo); y <= hi; y++ {
		t := plot.Tick{Value: y}
		if int(y)%5 == 0 {
			t.Label = strconv.Itoa(int(y))
		}
		ticks = append(ticks, t)
	}
	return ticks
}
