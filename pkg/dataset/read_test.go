package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SSP1.xlsx")
	writeWorkbook(t, path, [][]any{
		{"Provinces", 2025, 2030},
		{"Ankara", 1200.5, 1300},
		{"Muğla", 400, 410.25},
	})

	header, records, err := ReadWorkbook(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Provinces", "2025", "2030"}, header)
	require.Len(t, records, 2)
	assert.Equal(t, "Muğla", records[1][0])

	tbl, report, err := ReadTable(path, "SSP1", "Provinces")
	require.NoError(t, err)
	assert.True(t, report.Valid)
	row, err := tbl.LookupName("MUGLA")
	require.NoError(t, err)
	assert.InDelta(t, 410.25, row.Values["2030"], 1e-9)
	assert.InDelta(t, 1200.5, mustRow(t, tbl, "ankara").Values["2025"], 1e-9)
}

func TestReadWorkbookMissingCellDropsRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "historical_electricity.xlsx")
	writeWorkbook(t, path, [][]any{
		{"Province", 2020, 2021},
		{"Adana", 100, 110},
		{"Hatay", 90},
	})

	tbl, _, err := ReadTable(path, "Historical", "Province")
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	_, err = tbl.Lookup("hatay")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadCSV(t *testing.T) {
	in := "\ufeffProvinces,2025,2030\nKocaeli, 900,950\nSakarya,300\n"
	header, records, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "Provinces", header[0])
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Sakarya", "300"}, records[1])
}

func TestReadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SSP2.csv")
	require.NoError(t, os.WriteFile(path, []byte("Provinces,2025\nEdirne,210\n"), 0o644))

	tbl, _, err := ReadTable(path, "SSP2", "Provinces")
	require.NoError(t, err)
	assert.Equal(t, "SSP2", tbl.Name)
	assert.Equal(t, 210.0, mustRow(t, tbl, "edirne").Values["2025"])
}

func TestReadTableUnsupported(t *testing.T) {
	_, _, err := ReadTable("table.ods", "SSP1", "Provinces")
	assert.Error(t, err)
}

func TestReadTableMissingFile(t *testing.T) {
	_, _, err := ReadTable(filepath.Join(t.TempDir(), "nope.xlsx"), "SSP1", "Provinces")
	assert.Error(t, err)
}

func mustRow(t *testing.T, tbl *Table, key string) Row {
	t.Helper()
	row, err := tbl.Lookup(key)
	require.NoError(t, err)
	return row
}
