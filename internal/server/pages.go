package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gonum.org/v1/plot"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/render"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/session"
)

//go:embed templates/*.html
var templates embed.FS

func parsePage() (*template.Template, error) {
	t, err := template.ParseFS(templates, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}
	return t, nil
}

type scenarioOption struct {
	dataset.Scenario
	Selected bool
}

type pageData struct {
	State       session.State
	Version     string
	Scenarios   []scenarioOption
	Province    *analytics.ProvinceView
	ProvinceErr string
	MapWidth    int
	MapHeight   int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r)

	data := pageData{
		State:     st,
		Version:   st.Key + "-" + string(st.Scenario),
		MapWidth:  MapWidth,
		MapHeight: MapHeight,
	}
	for _, id := range s.catalog.ScenarioIDs() {
		data.Scenarios = append(data.Scenarios, scenarioOption{Scenario: dataset.Describe(id), Selected: id == st.Scenario})
	}
	v, err := analytics.Province(s.catalog, st.Key, s.opts)
	if err != nil {
		data.ProvinceErr = lookupMessage(st.Province, err)
	} else {
		data.Province = v
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.log.Error("rendering dashboard", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func lookupMessage(name string, err error) string {
	switch {
	case errors.Is(err, dataset.ErrAmbiguousKey):
		return fmt.Sprintf("%s matches more than one province in the data; see /api/report.", name)
	case errors.Is(err, dataset.ErrNotFound):
		return fmt.Sprintf("No demand data for %s.", name)
	default:
		return err.Error()
	}
}

func contentType(format string) string {
	if format == "png" {
		return "image/png"
	}
	return "image/svg+xml"
}

func (s *Server) writeImage(w http.ResponseWriter, format string, draw func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.log.Error("rendering image", zap.String("format", format), zap.Error(err))
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	st := s.current(r)
	format := mux.Vars(r)["format"]

	layer, err := analytics.Map(s.catalog, st.Scenario, s.boundaries, s.opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.metrics.Render("map", format)
	s.writeImage(w, format, func(buf *bytes.Buffer) error {
		return s.mapView.Choropleth(buf, format, layer, st.Key)
	})
}

func (s *Server) handleNationalChart(w http.ResponseWriter, r *http.Request) {
	st := s.current(r)
	format := mux.Vars(r)["format"]

	p, err := render.NationalChart(analytics.National(s.catalog, s.opts), string(st.Scenario))
	if err != nil {
		s.log.Error("national chart", zap.Error(err))
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	s.metrics.Render("national", format)
	s.writeImage(w, format, func(buf *bytes.Buffer) error {
		return render.WriteChart(buf, p, format)
	})
}

func (s *Server) handleProvinceChart(w http.ResponseWriter, r *http.Request) {
	st := s.current(r)
	format := mux.Vars(r)["format"]

	var p *plot.Plot
	v, err := analytics.Province(s.catalog, st.Key, s.opts)
	if err == nil {
		p, err = render.ProvinceChart(v, st.Province)
	}
	if err != nil {
		s.log.Debug("province chart without data", zap.String("province", st.Province), zap.Error(err))
		p = render.EmptyChart("Demand in "+st.Province, lookupMessage(st.Province, err))
	}
	s.metrics.Render("province", format)
	s.writeImage(w, format, func(buf *bytes.Buffer) error {
		return render.WriteChart(buf, p, format)
	})
}

// handleSelectProvince accepts either the click position of the map image
// input (map.x, map.y, with the displayed width in map_width) or a province
// name.
func (s *Server) handleSelectProvince(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.PostForm.Get("province"))
	if xs, ys := r.PostForm.Get("map.x"), r.PostForm.Get("map.y"); xs != "" && ys != "" {
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			http.Error(w, "bad click coordinates", http.StatusBadRequest)
			return
		}
		// map_width is the on-screen width of the map when the page scaled it.
		var shown float64
		if ws := r.PostForm.Get("map_width"); ws != "" {
			v, err := strconv.ParseFloat(ws, 64)
			if err != nil {
				http.Error(w, "bad map width", http.StatusBadRequest)
				return
			}
			shown = v
		}
		f, ok := s.mapView.FeatureAtDisplayed(geo.Pt(x, y), shown)
		if !ok {
			// Click outside every province keeps the selection.
			s.metrics.Selection("province", false)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		name = f.Name
	}
	if name == "" {
		s.metrics.Selection("province", false)
		http.Error(w, "province is required", http.StatusBadRequest)
		return
	}

	st := s.updateSession(w, r, func(st session.State) session.State {
		return st.SelectProvince(name)
	})
	s.metrics.Selection("province", true)
	s.log.Debug("province selected", zap.String("province", st.Province), zap.String("key", st.Key))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelectScenario(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, err := dataset.ParseScenario(r.PostForm.Get("scenario"))
	if err == nil && !s.catalog.HasScenario(id) {
		err = fmt.Errorf("%w: %s", dataset.ErrUnknownScenario, id)
	}
	if err != nil {
		s.metrics.Selection("scenario", false)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.updateSession(w, r, func(st session.State) session.State {
		return st.SelectScenario(id)
	})
	s.metrics.Selection("scenario", true)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
