package analytics

// Unit labels for demand values.
const (
	GWh = "GWh"
	TWh = "TWh"
)

// HistoricalSeries is the series name used for the historical table.
const HistoricalSeries = "Historical"

// Point is one year of a series.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is an ordered run of yearly values for one scenario or for the
// historical record.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Min returns the smallest value and false when the series is empty.
func (s Series) Min() (float64, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	m := s.Points[0].Value
	for _, p := range s.Points[1:] {
		if p.Value < m {
			m = p.Value
		}
	}
	return m, true
}

// At returns the value for year.
func (s Series) At(year int) (float64, bool) {
	for _, p := range s.Points {
		if p.Year == year {
			return p.Value, true
		}
	}
	return 0, false
}

// Years returns the years of the series in order.
func (s Series) Years() []int {
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Year
	}
	return out
}

func (s Series) scaled(f float64) Series {
	out := Series{Name: s.Name, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = Point{Year: p.Year, Value: p.Value * f}
	}
	return out
}

// NationalView holds the national totals in TWh.
type NationalView struct {
	Unit       string   `json:"unit"`
	Historical *Series  `json:"historical,omitempty"`
	Scenarios  []Series `json:"scenarios"`
}

// Scenario returns the series named id.
func (v *NationalView) Scenario(id string) (Series, bool) {
	for _, s := range v.Scenarios {
		if s.Name == id {
			return s, true
		}
	}
	return Series{}, false
}

// ProvinceView is the combined table shown for one province. All series
// share Unit.
type ProvinceView struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Unit    string   `json:"unit"`
	Series  []Series `json:"series"`
	Missing []string `json:"missing,omitempty"` // tables without a row for Key
}

// Column returns the series named name.
func (v *ProvinceView) Column(name string) (Series, bool) {
	for _, s := range v.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// Columns returns the series names in display order.
func (v *ProvinceView) Columns() []string {
	out := make([]string, len(v.Series))
	for i, s := range v.Series {
		out[i] = s.Name
	}
	return out
}

// MapValue is the choropleth value for one boundary feature.
type MapValue struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	HasData bool    `json:"has_data"`
}

// MapLayer holds the value of every boundary feature for one scenario and
// year.
type MapLayer struct {
	Scenario string     `json:"scenario"`
	Year     string     `json:"year"`
	Unit     string     `json:"unit"`
	Values   []MapValue `json:"values"`
	Min      float64    `json:"min"`
	Max      float64    `json:"max"`
}

// Value returns the entry for key.
func (m *MapLayer) Value(key string) (MapValue, bool) {
	for _, v := range m.Values {
		if v.Key == key {
			return v, true
		}
	}
	return MapValue{}, false
}
