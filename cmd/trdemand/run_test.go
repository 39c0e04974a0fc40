package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo/geotest"
)

const projectYAML = `
data:
  dir: data
  scenarios:
    - {id: SSP1, file: SSP1.csv}
    - {id: SSP2, file: SSP2.csv}
  historical: historical.csv
  boundaries: boundaries.geojson
display:
  default_province: Ankara
  default_scenario: SSP2
`

func writeProject(t *testing.T) string {
	t.Helper()
	t.Setenv("TRDEMAND_DATA_DIR", "")
	t.Setenv("TRDEMAND_LOG_LEVEL", "")
	t.Setenv("TRDEMAND_LISTEN", "")

	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	files := map[string]string{
		"SSP1.csv":       "Provinces,2025,2050\nAnkara,5000,7500\nİstanbul,20000,30000\nÇanakkale,300,450\nBolu,400,500\n",
		"SSP2.csv":       "Provinces,2025,2050\nAnkara,5500,8000\nİstanbul,22000,33000\nÇanakkale,330,500\nBolu,420,520\n",
		"historical.csv": "Province,2020,2021,2022,2023,2024\nAnkara,4000,4100,4200,4300,99999\nIstanbul,16000,16200,16400,16600,99999\nCanakkale,240,250,260,270,99999\nBolu,300,310,320,330,99999\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(data, name), []byte(body), 0o644))
	}
	geotest.WriteFile(t, data, "boundaries.geojson")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.yaml"), []byte(projectYAML), 0o644))
	return dir
}

func TestLoadProject(t *testing.T) {
	p, err := loadProject(writeProject(t))
	require.NoError(t, err)

	assert.Len(t, p.catalog.ScenarioIDs(), 2)
	assert.Len(t, p.boundaries.Features, 4)
	assert.True(t, p.report.Valid, p.report.Summary)
}

func TestLoadProjectMissingBoundaries(t *testing.T) {
	dir := writeProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "data", "boundaries.geojson")))

	_, err := loadProject(dir)
	assert.Error(t, err)
}

func TestRunSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSummary(&buf, writeProject(t)))

	out := buf.String()
	assert.Contains(t, out, "Total residential demand in Turkey (TWh)")
	assert.Contains(t, out, "Historical")
	assert.Contains(t, out, "2023")
	assert.NotContains(t, out, "2024")
	// 5000 + 20000 + 300 + 400 GWh in 2025 under SSP1.
	assert.Contains(t, out, "25.70")
}

func TestRunProvince(t *testing.T) {
	dir := writeProject(t)

	var buf bytes.Buffer
	require.NoError(t, runProvince(&buf, dir, "ÇANAKKALE"))
	out := buf.String()
	assert.Contains(t, out, "Demand in Çanakkale (GWh)")
	assert.Contains(t, out, "450.00")

	buf.Reset()
	require.NoError(t, runProvince(&buf, dir, "istanbul"))
	assert.Contains(t, buf.String(), "(TWh)")

	assert.Error(t, runProvince(&buf, dir, "Atlantis"))
}

func TestRunExportAndCharts(t *testing.T) {
	dir := writeProject(t)
	out := t.TempDir()

	xlsx := filepath.Join(out, "demand.xlsx")
	require.NoError(t, runExport(dir, xlsx, "ssp2", "Ankara"))
	_, err := os.Stat(xlsx)
	assert.NoError(t, err)

	charts := filepath.Join(out, "charts")
	require.NoError(t, runCharts(dir, charts, "", ""))
	for _, name := range []string{"national.png", "province.png", "map.svg"} {
		info, err := os.Stat(filepath.Join(charts, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = newLogger("nonsense", "json")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "unknown levels fall back to info")
}
