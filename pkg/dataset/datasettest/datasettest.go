// Package datasettest builds small in-memory catalogs for tests.
package datasettest

import (
	"strconv"
	"testing"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
)

// Provinces maps the spreadsheet spelling of each fixture province to its
// 2025 demand in GWh under SSP1.
var Provinces = map[string]float64{
	"Ankara":    5000,
	"İstanbul":  20000,
	"Çanakkale": 300,
	"Kilis":     80,
}

// Order is the row order used in every fixture table.
var Order = []string{"Ankara", "İstanbul", "Çanakkale", "Kilis"}

// Historical2024 is planted in the 2024 column so tests can detect it
// leaking into a displayed series.
const Historical2024 = 1e9

// ScenarioFactor scales the SSP1 baseline for each scenario.
var ScenarioFactor = map[dataset.ScenarioID]float64{
	dataset.SSP1: 1.0,
	dataset.SSP2: 1.1,
	dataset.SSP3: 1.2,
	dataset.SSP4: 1.3,
	dataset.SSP5: 1.5,
}

// Projected returns the fixture value for a province, scenario and year.
func Projected(province string, id dataset.ScenarioID, year int) float64 {
	return Provinces[province] * ScenarioFactor[id] * (1 + 0.02*float64(year-2025))
}

// Past returns the fixture historical value for a province and year before 2024.
func Past(province string, year int) float64 {
	return Provinces[province] * (0.8 + 0.01*float64(year-2020))
}

// ScenarioTable builds one projection table with yearly columns 2025..2050.
func ScenarioTable(t testing.TB, id dataset.ScenarioID) *dataset.Table {
	t.Helper()
	header := []string{"Provinces"}
	for y := 2025; y <= 2050; y++ {
		header = append(header, strconv.Itoa(y))
	}
	var records [][]string
	for _, p := range Order {
		rec := []string{p}
		for y := 2025; y <= 2050; y++ {
			rec = append(rec, strconv.FormatFloat(Projected(p, id, y), 'f', -1, 64))
		}
		records = append(records, rec)
	}
	tbl, _, err := dataset.Build(string(id), "Provinces", header, records)
	if err != nil {
		t.Fatalf("building %s fixture: %v", id, err)
	}
	return tbl
}

// HistoricalTable builds the historical table with columns 2020..2024.
func HistoricalTable(t testing.TB) *dataset.Table {
	t.Helper()
	header := []string{"Province", "2020", "2021", "2022", "2023", "2024"}
	var records [][]string
	for _, p := range Order {
		rec := []string{p}
		for y := 2020; y <= 2023; y++ {
			rec = append(rec, strconv.FormatFloat(Past(p, y), 'f', -1, 64))
		}
		rec = append(rec, strconv.FormatFloat(Historical2024, 'f', -1, 64))
		records = append(records, rec)
	}
	tbl, _, err := dataset.Build("Historical", "Province", header, records)
	if err != nil {
		t.Fatalf("building historical fixture: %v", err)
	}
	return tbl
}

// Catalog returns a catalog with SSP1..SSP5 and the historical table.
func Catalog(t testing.TB) *dataset.Catalog {
	t.Helper()
	var tables []*dataset.Table
	for _, id := range []dataset.ScenarioID{dataset.SSP1, dataset.SSP2, dataset.SSP3, dataset.SSP4, dataset.SSP5} {
		tables = append(tables, ScenarioTable(t, id))
	}
	return dataset.NewCatalog(HistoricalTable(t), tables...)
}
