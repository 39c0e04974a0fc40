package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
)

// CheckJoins reports every boundary feature whose key does not resolve in a
// data table, and every table row that no feature points at. Gaps in a
// scenario table are errors; gaps in the historical table are warnings
// because that table is optional. Boundary names that collide on one key
// are errors.
func CheckJoins(b *geo.Boundaries, c *dataset.Catalog) *validation.Report {
	report := validation.NewReport()
	for _, col := range b.Collisions() {
		report.AddError(validation.Result{
			Level:        validation.LevelJoin,
			Message:      fmt.Sprintf("boundary provinces %q and %q share key %q", col.ConflictWith, col.Name, col.Key),
			Source:       "boundaries",
			Province:     col.Name,
			Key:          col.Key,
			ConflictWith: col.ConflictWith,
		})
	}
	for _, t := range c.Tables() {
		historical := t == c.Historical()
		checkBoundaryKeys(b, t, historical, report)
		checkUnmappedRows(b, t, report)
	}
	return report
}

func checkBoundaryKeys(b *geo.Boundaries, t *dataset.Table, historical bool, report *validation.Report) {
	for _, f := range b.Features {
		if first, _ := b.Lookup(f.Key); first != f {
			// Collisions are reported once above.
			continue
		}
		_, err := t.Lookup(f.Key)
		if err == nil || errors.Is(err, dataset.ErrAmbiguousKey) {
			// Ambiguous keys were reported when the table was loaded.
			continue
		}
		r := validation.Result{
			Level:       validation.LevelJoin,
			Message:     fmt.Sprintf("boundary province %q (key %q) has no row in %s", f.Name, f.Key, t.Name),
			Source:      t.Name,
			Province:    f.Name,
			Key:         f.Key,
			Suggestions: similarKeys(f.Key, t.Keys()),
		}
		if historical {
			report.AddWarning(r)
		} else {
			report.AddError(r)
		}
	}
}

func checkUnmappedRows(b *geo.Boundaries, t *dataset.Table, report *validation.Report) {
	for _, key := range t.Keys() {
		if _, ok := b.Lookup(key); ok {
			continue
		}
		row, _ := t.Lookup(key)
		report.AddWarning(validation.Result{
			Level:       validation.LevelJoin,
			Message:     fmt.Sprintf("%s row %q (key %q) matches no boundary feature", t.Name, row.Name, key),
			Source:      t.Name,
			Province:    row.Name,
			Key:         key,
			Suggestions: similarKeys(key, b.Keys()),
		})
	}
}

// similarKeys proposes candidates sharing the first three letters of key.
func similarKeys(key string, keys []string) []string {
	if len(key) < 3 {
		return nil
	}
	var out []string
	for _, k := range keys {
		if k != key && strings.HasPrefix(k, key[:3]) {
			out = append(out, fmt.Sprintf("Did you mean %q?", k))
		}
	}
	return out
}
