package export_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset/datasettest"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/export"
)

func TestWorkbookSheets(t *testing.T) {
	f, err := export.Workbook(datasettest.Catalog(t), export.Options{
		Scenario:  dataset.SSP3,
		Province:  "ankara",
		Analytics: analytics.DefaultOptions(),
	})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"National", "SSP3 provinces", "Province", "Scenarios"}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetNational)
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "Historical (TWh)", "SSP1 (TWh)", "SSP2 (TWh)", "SSP3 (TWh)", "SSP4 (TWh)", "SSP5 (TWh)"}, rows[0])
	// 2020..2023 historical plus 2025..2050 projected.
	assert.Len(t, rows, 1+4+26)
	assert.Equal(t, "2020", rows[1][0])
	assert.Equal(t, "2025", rows[5][0])
	for _, r := range rows[1:] {
		assert.NotEqual(t, "2024", r[0])
	}

	rows, err = f.GetRows(export.ProvincesSheet(dataset.SSP3))
	require.NoError(t, err)
	require.Len(t, rows, 1+len(datasettest.Order))
	assert.Equal(t, []string{"Provinces", "Key", "2025"}, rows[0][:3])
	assert.Equal(t, []string{"İstanbul", "istanbul"}, rows[2][:2])

	rows, err = f.GetRows(export.SheetProvince)
	require.NoError(t, err)
	assert.Equal(t, "Ankara", rows[0][0])
	assert.Equal(t, "Historical (TWh)", rows[0][1])

	rows, err = f.GetRows(export.SheetScenarios)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestWorkbookWithoutProvince(t *testing.T) {
	f, err := export.Workbook(datasettest.Catalog(t), export.Options{
		Scenario:  dataset.SSP1,
		Analytics: analytics.DefaultOptions(),
	})
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), export.SheetProvince)
}

func TestWorkbookErrors(t *testing.T) {
	c := datasettest.Catalog(t)

	_, err := export.Workbook(c, export.Options{Scenario: "SSP7", Analytics: analytics.DefaultOptions()})
	assert.ErrorIs(t, err, dataset.ErrUnknownScenario)

	_, err = export.Workbook(c, export.Options{Scenario: dataset.SSP1, Province: "atlantis", Analytics: analytics.DefaultOptions()})
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestWriteAndSave(t *testing.T) {
	c := datasettest.Catalog(t)
	opt := export.Options{Scenario: dataset.SSP2, Province: "kilis", Analytics: analytics.DefaultOptions()}

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, c, opt))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(export.SheetProvince, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Historical (GWh)", v)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, export.Save(path, c, opt))
	g, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer g.Close()
	assert.Contains(t, g.GetSheetList(), export.ProvincesSheet(dataset.SSP2))
}
