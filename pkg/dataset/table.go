// Package dataset holds the province-by-year demand tables and the
// normalized-key index used to join them.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/provname"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
)

var (
	// ErrNotFound means no row in the table carries the requested key.
	ErrNotFound = errors.New("province not found")
	// ErrAmbiguousKey means two distinct raw names in one table fold to the
	// same key.
	ErrAmbiguousKey = errors.New("ambiguous province key")
)

// Row is one province in a table. Values are in GWh, keyed by year label.
type Row struct {
	Name   string             `json:"name"`
	Key    string             `json:"key"`
	Values map[string]float64 `json:"values"`
}

// Value returns the value for a year label.
func (r Row) Value(year string) (float64, bool) {
	v, ok := r.Values[year]
	return v, ok
}

// Table is an immutable province-by-year table.
type Table struct {
	Name       string
	NameColumn string
	// Years lists the year columns in header order.
	Years []string

	rows      []Row
	byName    map[string]string
	byKey     map[string]int
	ambiguous map[string][]string
	dropped   int
	dupes     int
}

// Build constructs a table from a header row and data records.
//
// The name column is located by header text. Every other column whose header
// is a year becomes a value column, the first one winning when two headers
// name the same year; remaining columns are ignored. Province
// names are trimmed. A repeated name keeps its first row. After
// de-duplication, rows with an empty name or any missing or non-numeric year
// value are dropped. Keys shared by distinct names are reported as errors and
// left unresolvable.
func Build(name, nameColumn string, header []string, records [][]string) (*Table, *validation.Report, error) {
	report := validation.NewReport()

	nameIdx := -1
	var years []yearCol
	yearSeen := make(map[string]bool)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == nameColumn {
			nameIdx = i
			continue
		}
		if label, ok := YearLabel(h); ok {
			if yearSeen[label] {
				report.AddInfo(validation.Result{
					Level:   validation.LevelLoad,
					Message: fmt.Sprintf("repeated year column %q ignored, first %s column kept", h, label),
					Source:  name,
				})
				continue
			}
			yearSeen[label] = true
			years = append(years, yearCol{i, label})
			continue
		}
		if h != "" {
			report.AddInfo(validation.Result{
				Level:   validation.LevelLoad,
				Message: fmt.Sprintf("ignoring non-year column %q", h),
				Source:  name,
			})
		}
	}
	if nameIdx < 0 {
		return nil, report, fmt.Errorf("table %s: name column %q not found in header", name, nameColumn)
	}
	if len(years) == 0 {
		return nil, report, fmt.Errorf("table %s: no year columns in header", name)
	}

	t := &Table{
		Name:       name,
		NameColumn: nameColumn,
		byName:     make(map[string]string),
		byKey:      make(map[string]int),
		ambiguous:  make(map[string][]string),
	}
	for _, y := range years {
		t.Years = append(t.Years, y.label)
	}

	seen := make(map[string]bool, len(records))
	for line, rec := range records {
		raw := strings.TrimSpace(cell(rec, nameIdx))

		if raw != "" {
			if seen[raw] {
				t.dupes++
				report.AddInfo(validation.Result{
					Level:    validation.LevelLoad,
					Message:  fmt.Sprintf("duplicate row for %s dropped (record %d)", raw, line+1),
					Source:   name,
					Province: raw,
				})
				continue
			}
			seen[raw] = true
		}

		values, missing := parseValues(rec, years)
		if raw == "" || missing != "" {
			t.dropped++
			msg := fmt.Sprintf("incomplete row dropped (record %d)", line+1)
			if missing != "" {
				msg = fmt.Sprintf("row for %s dropped: no value for %s", raw, missing)
			}
			report.AddInfo(validation.Result{
				Level:    validation.LevelLoad,
				Message:  msg,
				Source:   name,
				Province: raw,
			})
			continue
		}

		t.rows = append(t.rows, Row{
			Name:   raw,
			Key:    provname.Normalize(raw),
			Values: values,
		})
	}

	t.index(report)
	return t, report, nil
}

type yearCol struct {
	idx   int
	label string
}

func parseValues(rec []string, years []yearCol) (map[string]float64, string) {
	values := make(map[string]float64, len(years))
	for _, y := range years {
		v, ok := parseNumber(cell(rec, y.idx))
		if !ok {
			return nil, y.label
		}
		values[y.label] = v
	}
	return values, ""
}

func (t *Table) index(report *validation.Report) {
	names := make(map[string][]string)
	for i, r := range t.rows {
		t.byName[r.Name] = r.Key
		if _, ok := t.byKey[r.Key]; !ok {
			t.byKey[r.Key] = i
		}
		names[r.Key] = append(names[r.Key], r.Name)
	}
	keys := make([]string, 0, len(names))
	for key := range names {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		raws := names[key]
		if len(raws) < 2 {
			continue
		}
		delete(t.byKey, key)
		t.ambiguous[key] = raws
		report.AddError(validation.Result{
			Level:        validation.LevelLoad,
			Message:      fmt.Sprintf("names %s normalize to the same key %q", strings.Join(raws, ", "), key),
			Source:       t.Name,
			Key:          key,
			Province:     raws[0],
			ConflictWith: raws[1],
			Suggestions:  []string{"Rename one of the provinces in the source table"},
		})
	}
}

// Lookup returns the row for a normalized key.
func (t *Table) Lookup(key string) (Row, error) {
	if raws, ok := t.ambiguous[key]; ok {
		return Row{}, fmt.Errorf("%w: %q in %s matches %s", ErrAmbiguousKey, key, t.Name, strings.Join(raws, ", "))
	}
	i, ok := t.byKey[key]
	if !ok {
		return Row{}, fmt.Errorf("%w: %q in %s", ErrNotFound, key, t.Name)
	}
	return t.rows[i], nil
}

// LookupName normalizes a raw name and returns its row.
func (t *Table) LookupName(raw string) (Row, error) {
	return t.Lookup(provname.Normalize(raw))
}

// KeyFor returns the normalized key stored for a raw name as it appears in
// this table.
func (t *Table) KeyFor(raw string) (string, bool) {
	key, ok := t.byName[strings.TrimSpace(raw)]
	return key, ok
}

// Rows returns the retained rows in source order. Callers must not modify
// the returned rows.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of retained rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Keys returns every resolvable key, sorted.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.byKey))
	for k := range t.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dropped returns the number of incomplete and duplicate rows discarded.
func (t *Table) Dropped() (incomplete, duplicates int) {
	return t.dropped, t.dupes
}

// YearLabel reports whether a header cell names a year and returns its
// canonical four-digit label. Spreadsheet headers read back as "2025" or
// "2025.0" depending on the cell type.
func YearLabel(h string) (string, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(h, 64)
	if err != nil || f != math.Trunc(f) || f < 1000 || f > 9999 {
		return "", false
	}
	return strconv.Itoa(int(f)), true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
