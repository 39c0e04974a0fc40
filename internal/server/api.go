package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/export"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/provname"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// lookupStatus maps lookup errors to HTTP statuses.
func lookupStatus(err error) int {
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrAmbiguousKey):
		return http.StatusConflict
	case errors.Is(err, dataset.ErrUnknownScenario):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type scenarioInfo struct {
	dataset.Scenario
	Loaded bool `json:"loaded"`
}

func (s *Server) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	var out []scenarioInfo
	for _, p := range dataset.Pathways() {
		out = append(out, scenarioInfo{Scenario: p, Loaded: s.catalog.HasScenario(p.ID)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNational(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analytics.National(s.catalog, s.opts))
}

type provinceInfo struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	HasBoundary bool     `json:"has_boundary"`
	Tables      []string `json:"tables"`
}

// handleProvinces lists every key known to any table or the boundary file.
func (s *Server) handleProvinces(w http.ResponseWriter, _ *http.Request) {
	byKey := map[string]*provinceInfo{}
	get := func(key, name string) *provinceInfo {
		p, ok := byKey[key]
		if !ok {
			p = &provinceInfo{Key: key, Name: name, Tables: []string{}}
			byKey[key] = p
		}
		return p
	}
	for _, t := range s.catalog.Tables() {
		for _, key := range t.Keys() {
			row, _ := t.Lookup(key)
			p := get(key, row.Name)
			p.Tables = append(p.Tables, t.Name)
		}
	}
	for _, f := range s.boundaries.Features {
		get(f.Key, f.Name).HasBoundary = true
	}

	out := make([]*provinceInfo, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProvince(w http.ResponseWriter, r *http.Request) {
	key := provname.Normalize(mux.Vars(r)["name"])
	v, err := analytics.Province(s.catalog, key, s.opts)
	if err != nil {
		writeError(w, lookupStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	id := s.current(r).Scenario
	if q := r.URL.Query().Get("scenario"); q != "" {
		var err error
		if id, err = dataset.ParseScenario(q); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	layer, err := analytics.Map(s.catalog, id, s.boundaries, s.opts)
	if err != nil {
		writeError(w, lookupStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, layer)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.report)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.current(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"scenarios": len(s.catalog.ScenarioIDs()),
		"features":  len(s.boundaries.Features),
		"valid":     s.report.Valid,
	})
}

// handleExport downloads the session's scenario and province as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st := s.current(r)
	opt := export.Options{Scenario: st.Scenario, Province: st.Key, Analytics: s.opts}
	if _, err := analytics.Province(s.catalog, st.Key, s.opts); err != nil {
		opt.Province = ""
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, s.catalog, opt); err != nil {
		s.log.Error("export", zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="residential-demand-%s.xlsx"`, st.Scenario))
	w.Write(buf.Bytes())
}
