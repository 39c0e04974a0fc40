package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook returns the header and data records of the first sheet of an
// xlsx workbook. Cells are read unformatted so numeric headers come back as
// "2025" rather than a display string.
func ReadWorkbook(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("reading rows of %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("workbook %s is empty", path)
	}
	return rows[0], rows[1:], nil
}

// ReadCSV returns the header and data records of a comma-separated file.
// Records may have fewer fields than the header; missing fields count as
// empty cells.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV has no header row")
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, records[1:], nil
}

// ReadTable loads a table from an .xlsx or .csv file and builds its index.
func ReadTable(path, name, nameColumn string) (*Table, *validation.Report, error) {
	var (
		header  []string
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		header, records, err = ReadWorkbook(path)
	case ".csv":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening table: %w", err)
		}
		defer f.Close()
		header, records, err = ReadCSV(f)
	default:
		return nil, nil, fmt.Errorf("unsupported table format %q for %s", ext, path)
	}
	if err != nil {
		return nil, nil, err
	}
	return Build(name, nameColumn, header, records)
}
