// Package export writes the dashboard's data to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
)

// Sheet names.
const (
	SheetNational  = "National"
	SheetProvince  = "Province"
	SheetScenarios = "Scenarios"
)

// Options selects what goes into the workbook.
type Options struct {
	Scenario  dataset.ScenarioID
	Province  string // normalized key; empty skips the province sheet
	Analytics analytics.Options
}

// ProvincesSheet returns the name of the per-province sheet for a scenario.
func ProvincesSheet(id dataset.ScenarioID) string {
	return fmt.Sprintf("%s provinces", id)
}

// Workbook builds the export. The caller must Close the returned file.
func Workbook(c *dataset.Catalog, opt Options) (*excelize.File, error) {
	t, err := c.Scenario(opt.Scenario)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	w := &writer{f: f, header: bold}

	if err := f.SetSheetName("Sheet1", SheetNational); err != nil {
		f.Close()
		return nil, err
	}
	w.national(analytics.National(c, opt.Analytics))
	w.provinces(ProvincesSheet(opt.Scenario), t)
	if opt.Province != "" {
		v, err := analytics.Province(c, opt.Province, opt.Analytics)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("province sheet: %w", err)
		}
		w.province(v)
	}
	w.scenarios()

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// Write builds the workbook and encodes it to out.
func Write(out io.Writer, c *dataset.Catalog, opt Options) error {
	f, err := Workbook(c, opt)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Save builds the workbook and stores it at path.
func Save(path string, c *dataset.Catalog, opt Options) error {
	f, err := Workbook(c, opt)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// writer keeps the first error so sheet builders stay linear.
type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

func (w *writer) row(sheet string, r int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *writer) headerRow(sheet string, values []any, width float64) {
	w.row(sheet, 1, values)
	if w.err != nil {
		return
	}
	if w.err = w.f.SetRowStyle(sheet, 1, 1, w.header); w.err != nil {
		return
	}
	last, err := excelize.ColumnNumberToName(len(values))
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetColWidth(sheet, "A", last, width); w.err != nil {
		return
	}
	w.err = w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// national writes one row per year with a column per series, in TWh.
func (w *writer) national(v *analytics.NationalView) {
	series := v.Scenarios
	if v.Historical != nil {
		series = append([]analytics.Series{*v.Historical}, series...)
	}
	w.table(SheetNational, "Year", series, v.Unit)
}

// province writes the combined table for one province in its display unit.
func (w *writer) province(v *analytics.ProvinceView) {
	w.sheet(SheetProvince)
	w.table(SheetProvince, v.Name, v.Series, v.Unit)
}

func (w *writer) table(sheet, corner string, series []analytics.Series, unit string) {
	header := []any{corner}
	for _, s := range series {
		header = append(header, fmt.Sprintf("%s (%s)", s.Name, unit))
	}
	w.headerRow(sheet, header, 16)

	years := unionYears(series)
	for i, y := range years {
		rec := []any{y}
		for _, s := range series {
			if v, ok := s.At(y); ok {
				rec = append(rec, v)
			} else {
				rec = append(rec, nil)
			}
		}
		w.row(sheet, i+2, rec)
	}
}

// provinces writes the raw scenario table in GWh with its normalized key.
func (w *writer) provinces(sheet string, t *dataset.Table) {
	w.sheet(sheet)
	header := []any{t.NameColumn, "Key"}
	for _, y := range t.Years {
		header = append(header, y)
	}
	w.headerRow(sheet, header, 12)
	for i, r := range t.Rows() {
		rec := []any{r.Name, r.Key}
		for _, y := range t.Years {
			rec = append(rec, r.Values[y])
		}
		w.row(sheet, i+2, rec)
	}
}

func (w *writer) scenarios() {
	w.sheet(SheetScenarios)
	w.headerRow(SheetScenarios, []any{"Scenario", "Title", "Description"}, 40)
	for i, s := range dataset.Pathways() {
		w.row(SheetScenarios, i+2, []any{string(s.ID), s.Title, s.Description})
	}
}

func unionYears(series []analytics.Series) []int {
	seen := map[int]bool{}
	var years []int
	for _, s := range series {
		for _, p := range s.Points {
			if !seen[p.Year] {
				seen[p.Year] = true
				years = append(years, p.Year)
			}
		}
	}
	sort.Ints(years)
	return years
}
