package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/config"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset/datasettest"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo/geotest"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/session"
)

type harness struct {
	t      *testing.T
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c := datasettest.Catalog(t)
	b := geotest.Boundaries(t)
	report := analytics.CheckJoins(b, c)

	srv, err := New(config.Default(), zap.NewNop(), c, b, report)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &harness{t: t, srv: srv, ts: ts, client: client}
}

func (h *harness) get(path string) *http.Response {
	h.t.Helper()
	resp, err := h.client.Get(h.ts.URL + path)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) post(path string, form url.Values) *http.Response {
	h.t.Helper()
	resp, err := h.client.PostForm(h.ts.URL+path, form)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) state() session.State {
	h.t.Helper()
	resp := h.get("/api/session")
	require.Equal(h.t, http.StatusOK, resp.StatusCode)
	var st session.State
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestIndexStartsWithDefaults(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	page := body(t, resp)
	assert.Contains(t, page, "Residential electricity demand in Turkey to 2050")
	assert.Contains(t, page, `value="SSP1" checked`)
	assert.Contains(t, page, "Values for Ankara are shown in TWh.")
	assert.Contains(t, page, "10.1016/j.energy.2024.133837")

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			found = true
		}
	}
	assert.True(t, found, "session cookie is issued")

	st := h.state()
	assert.Equal(t, session.State{Province: "Ankara", Key: "ankara", Scenario: dataset.SSP1}, st)
}

func TestSelectScenario(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	resp := h.post("/select/scenario", url.Values{"scenario": {"ssp3"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, dataset.SSP3, h.state().Scenario)

	resp = h.post("/select/scenario", url.Values{"scenario": {"SSP9"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, dataset.SSP3, h.state().Scenario)

	resp = h.get("/")
	assert.Contains(t, body(t, resp), `value="SSP3" checked`)
}

func TestSelectProvinceByMapClick(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	ist, ok := h.srv.boundaries.Lookup("istanbul")
	require.True(t, ok)
	px := h.srv.mapView.Projection.Project(ist.Centroid())

	resp := h.post("/select/province", url.Values{
		"map.x": {fmt.Sprintf("%.0f", px.X)},
		"map.y": {fmt.Sprintf("%.0f", px.Y)},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	st := h.state()
	assert.Equal(t, "Istanbul", st.Province, "boundary spelling is kept for display")
	assert.Equal(t, "istanbul", st.Key)

	resp = h.get("/api/provinces/" + url.PathEscape(st.Province))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSelectProvinceByScaledMapClick(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	// The page shrinks the map to its panel; clicks arrive in on-screen pixels.
	const shown = 645
	click := func(key string) {
		t.Helper()
		f, ok := h.srv.boundaries.Lookup(key)
		require.True(t, ok)
		px := h.srv.mapView.Projection.Project(f.Centroid()).Scale(float64(shown) / MapWidth)
		resp := h.post("/select/province", url.Values{
			"map.x":     {fmt.Sprintf("%.0f", px.X)},
			"map.y":     {fmt.Sprintf("%.0f", px.Y)},
			"map_width": {fmt.Sprint(shown)},
		})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	click("istanbul")
	assert.Equal(t, "istanbul", h.state().Key)
	click("ankara")
	assert.Equal(t, "ankara", h.state().Key)

	resp := h.post("/select/province", url.Values{"map.x": {"10"}, "map.y": {"10"}, "map_width": {"wide"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectProvinceClickOutsideKeepsSelection(t *testing.T) {
	h := newHarness(t)
	h.get("/")

	resp := h.post("/select/province", url.Values{"map.x": {"1"}, "map.y": {"1"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "Ankara", h.state().Province)

	resp = h.post("/select/province", url.Values{"map.x": {"left"}, "map.y": {"1"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectProvinceByName(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/select/province", url.Values{"province": {" ÇANAKKALE "}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	st := h.state()
	assert.Equal(t, "ÇANAKKALE", st.Province)
	assert.Equal(t, "canakkale", st.Key)

	resp = h.post("/select/province", url.Values{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProvinceWithoutDataRendersNotice(t *testing.T) {
	h := newHarness(t)
	h.post("/select/province", url.Values{"province": {"Bolu"}})

	page := body(t, h.get("/"))
	assert.Contains(t, page, "No demand data for Bolu.")

	resp := h.get("/charts/province.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Demand in Bolu")
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newHarness(t)
	a.post("/select/scenario", url.Values{"scenario": {"SSP5"}})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &harness{t: t, srv: a.srv, ts: a.ts, client: &http.Client{Jar: jar, CheckRedirect: a.client.CheckRedirect}}

	assert.Equal(t, dataset.SSP5, a.state().Scenario)
	assert.Equal(t, dataset.SSP1, other.state().Scenario)
}

func TestReadOnlyRoutesDoNotStartSessions(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/map.svg", "/charts/national.svg", "/charts/province.svg", "/api/map", "/api/session", "/export.xlsx"} {
		resp := h.get(path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Empty(t, resp.Cookies(), path)
	}
	assert.Equal(t, 0, h.srv.sessions.Len())

	h.get("/")
	assert.Equal(t, 1, h.srv.sessions.Len())
	h.get("/map.svg")
	assert.Equal(t, 1, h.srv.sessions.Len())
}

func TestImages(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		path, contentType, marker string
	}{
		{"/map.svg", "image/svg+xml", "<svg"},
		{"/map.png", "image/png", "\x89PNG"},
		{"/charts/national.svg", "image/svg+xml", "<svg"},
		{"/charts/province.png", "image/png", "\x89PNG"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp := h.get(tc.path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tc.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
			assert.Contains(t, body(t, resp), tc.marker)
		})
	}

	assert.Equal(t, http.StatusNotFound, h.get("/map.gif").StatusCode)
}

func TestAPIProvince(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/api/provinces/" + url.PathEscape("İSTANBUL"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v analytics.ProvinceView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "İstanbul", v.Name)
	assert.Equal(t, "TWh", v.Unit)
	assert.Equal(t, []string{"Historical", "SSP1", "SSP2", "SSP3", "SSP4", "SSP5"}, v.Columns())

	resp = h.get("/api/provinces/atlantis")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "not found")
}

func TestAPIProvinces(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/api/provinces")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []provinceInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))

	keys := make([]string, len(list))
	for i, p := range list {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"ankara", "bolu", "canakkale", "istanbul", "kilis"}, keys)
	assert.True(t, list[0].HasBoundary)
	assert.Len(t, list[0].Tables, 6)
	assert.Empty(t, list[1].Tables, "bolu has only a boundary")
	assert.False(t, list[4].HasBoundary, "kilis has only data")
}

func TestAPIMap(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/api/map?scenario=ssp2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var layer analytics.MapLayer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&layer))
	assert.Equal(t, "SSP2", layer.Scenario)
	assert.Len(t, layer.Values, 4)

	assert.Equal(t, http.StatusBadRequest, h.get("/api/map?scenario=SSP8").StatusCode)
}

func TestAPIMisc(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/api/scenarios")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var scenarios []scenarioInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scenarios))
	require.Len(t, scenarios, 5)
	assert.True(t, scenarios[2].Loaded)

	resp = h.get("/api/national")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var nat analytics.NationalView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&nat))
	assert.Equal(t, "TWh", nat.Unit)
	require.NotNil(t, nat.Historical)
	assert.Equal(t, []int{2020, 2021, 2022, 2023}, nat.Historical.Years())

	resp = h.get("/api/report")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `"key":"bolu"`)

	resp = h.get("/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `"status":"ok"`)
}

func TestMetrics(t *testing.T) {
	h := newHarness(t)
	h.get("/api/national")
	h.post("/select/scenario", url.Values{"scenario": {"SSP2"}})

	resp := h.get("/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := body(t, resp)
	assert.Contains(t, out, `trdemand_http_requests_total{route="/api/national",status="200"} 1`)
	assert.Contains(t, out, `trdemand_selections_total{kind="scenario",outcome="ok"} 1`)
	assert.Contains(t, out, "trdemand_join_errors 5")
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.post("/select/scenario", url.Values{"scenario": {"SSP4"}})

	resp := h.get("/export.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "residential-demand-SSP4.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "SSP4 provinces")
	assert.Contains(t, f.GetSheetList(), "Province")
}

func TestNewFallsBackToFirstScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Display.DefaultScenario = "SSP9"
	c := dataset.NewCatalog(nil, datasettest.ScenarioTable(t, dataset.SSP2))

	srv, err := New(cfg, nil, c, geotest.Boundaries(t), nil)
	require.NoError(t, err)
	_, st := srv.sessions.Get("")
	assert.Equal(t, dataset.SSP2, st.Scenario)

	_, err = New(cfg, nil, dataset.NewCatalog(nil), geotest.Boundaries(t), nil)
	assert.Error(t, err)
}
