package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/config"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
)

// gwhPerTWh converts between the two units.
const gwhPerTWh = 1000

// IncompleteYear is the partial historical year. It is never displayed,
// whatever the configured exclusions say.
const IncompleteYear = "2024"

// Options controls year windows and the unit rule.
type Options struct {
	HistoricalStartYear int
	ProjectionStartYear int
	ExcludedYears       []string
	TWhThresholdGWh     float64 // province values switch to TWh when every value exceeds this
	MapYear             string
}

// DefaultOptions returns the options used by the published dashboard.
func DefaultOptions() Options {
	return OptionsFrom(config.Default())
}

// OptionsFrom extracts the display options from a config.
func OptionsFrom(c *config.Config) Options {
	d := c.Display
	return Options{
		HistoricalStartYear: d.HistoricalStartYear,
		ProjectionStartYear: d.ProjectionStartYear,
		ExcludedYears:       append([]string(nil), d.ExcludedHistoricalYears...),
		TWhThresholdGWh:     d.TWhThresholdGWh,
		MapYear:             d.MapYear,
	}
}

func (o Options) excluded(year string) bool {
	if year == IncompleteYear {
		return true
	}
	for _, y := range o.ExcludedYears {
		if y == year {
			return true
		}
	}
	return false
}

// yearFilter decides which year columns of a table are kept.
type yearFilter func(label string, year int) bool

func (o Options) historicalYears() yearFilter {
	return func(label string, year int) bool {
		return year >= o.HistoricalStartYear && !o.excluded(label)
	}
}

func (o Options) projectionYears() yearFilter {
	return func(_ string, year int) bool {
		return year >= o.ProjectionStartYear
	}
}

func allYears(string, int) bool { return true }

// columns returns the kept year columns of t in ascending year order.
func columns(t *dataset.Table, keep yearFilter) []Point {
	var out []Point
	for _, label := range t.Years {
		y, err := strconv.Atoi(label)
		if err != nil || !keep(label, y) {
			continue
		}
		out = append(out, Point{Year: y})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// NationalSeries sums every row of t per year and converts GWh to TWh.
func NationalSeries(t *dataset.Table) Series {
	return nationalSeries(t, allYears)
}

// HistoricalNational is NationalSeries over the historical table restricted
// to displayable years.
func HistoricalNational(t *dataset.Table, opt Options) Series {
	s := nationalSeries(t, opt.historicalYears())
	s.Name = HistoricalSeries
	return s
}

func nationalSeries(t *dataset.Table, keep yearFilter) Series {
	s := Series{Name: t.Name, Points: columns(t, keep)}
	for i := range s.Points {
		label := strconv.Itoa(s.Points[i].Year)
		sum := 0.0
		for _, r := range t.Rows() {
			sum += r.Values[label]
		}
		s.Points[i].Value = sum / gwhPerTWh
	}
	return s
}

// National builds the national chart data for every scenario in the catalog.
func National(c *dataset.Catalog, opt Options) *NationalView {
	v := &NationalView{Unit: TWh}
	if h := c.Historical(); h != nil {
		s := HistoricalNational(h, opt)
		v.Historical = &s
	}
	for _, id := range c.ScenarioIDs() {
		t, _ := c.Scenario(id)
		v.Scenarios = append(v.Scenarios, NationalSeries(t))
	}
	return v
}

// Province assembles the combined table for one normalized key: the
// historical series followed by every scenario. The unit is chosen once for
// the whole table.
//
// A key missing from every table returns dataset.ErrNotFound. An ambiguous
// key in any table returns dataset.ErrAmbiguousKey. A key missing from only
// some tables omits those series and lists them in Missing.
func Province(c *dataset.Catalog, key string, opt Options) (*ProvinceView, error) {
	v := &ProvinceView{Key: key}

	add := func(t *dataset.Table, name string, keep yearFilter) error {
		row, err := t.Lookup(key)
		switch {
		case errors.Is(err, dataset.ErrNotFound):
			v.Missing = append(v.Missing, name)
			return nil
		case err != nil:
			return err
		}
		if v.Name == "" {
			v.Name = row.Name
		}
		s := Series{Name: name, Points: columns(t, keep)}
		for i := range s.Points {
			s.Points[i].Value = row.Values[strconv.Itoa(s.Points[i].Year)]
		}
		v.Series = append(v.Series, s)
		return nil
	}

	if h := c.Historical(); h != nil {
		if err := add(h, HistoricalSeries, opt.historicalYears()); err != nil {
			return nil, err
		}
	}
	for _, id := range c.ScenarioIDs() {
		t, _ := c.Scenario(id)
		if err := add(t, string(id), opt.projectionYears()); err != nil {
			return nil, err
		}
	}
	if len(v.Series) == 0 {
		return nil, fmt.Errorf("%w: %q in any table", dataset.ErrNotFound, key)
	}
	// Prefer the projection tables' spelling over the historical one.
	if name, err := c.DisplayName(key); err == nil {
		v.Name = name
	}

	v.Unit = GWh
	if lo, ok := v.min(); ok && lo > opt.TWhThresholdGWh {
		v.Unit = TWh
		for i, s := range v.Series {
			v.Series[i] = s.scaled(1.0 / gwhPerTWh)
		}
	}
	return v, nil
}

func (v *ProvinceView) min() (float64, bool) {
	m, found := math.Inf(1), false
	for _, s := range v.Series {
		if sm, ok := s.Min(); ok {
			m, found = math.Min(m, sm), true
		}
	}
	return m, found
}

// Map joins the scenario's value for opt.MapYear onto every boundary
// feature. Features without a row, or with an ambiguous key, have
// HasData false.
func Map(c *dataset.Catalog, id dataset.ScenarioID, b *geo.Boundaries, opt Options) (*MapLayer, error) {
	t, err := c.Scenario(id)
	if err != nil {
		return nil, err
	}
	layer := &MapLayer{Scenario: string(id), Year: opt.MapYear, Unit: GWh}
	first := true
	for _, f := range b.Features {
		mv := MapValue{Key: f.Key, Name: f.Name}
		if row, err := t.Lookup(f.Key); err == nil {
			mv.Value, mv.HasData = row.Value(opt.MapYear)
		}
		if mv.HasData {
			if first || mv.Value < layer.Min {
				layer.Min = mv.Value
			}
			if first || mv.Value > layer.Max {
				layer.Max = mv.Value
			}
			first = false
		}
		layer.Values = append(layer.Values, mv)
	}
	return layer, nil
}
