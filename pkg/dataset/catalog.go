package dataset

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/config"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/provname"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
)

// Catalog is the full set of loaded tables: one per scenario plus the
// optional historical table. It is read-only once constructed.
type Catalog struct {
	order      []ScenarioID
	scenarios  map[ScenarioID]*Table
	historical *Table
}

// NewCatalog assembles a catalog. Each scenario table's Name is its
// scenario identifier. historical may be nil.
func NewCatalog(historical *Table, scenarios ...*Table) *Catalog {
	c := &Catalog{
		scenarios:  make(map[ScenarioID]*Table, len(scenarios)),
		historical: historical,
	}
	for _, t := range scenarios {
		id := ScenarioID(t.Name)
		if _, dup := c.scenarios[id]; dup {
			continue
		}
		c.order = append(c.order, id)
		c.scenarios[id] = t
	}
	return c
}

// ScenarioIDs returns the loaded scenario identifiers in display order.
func (c *Catalog) ScenarioIDs() []ScenarioID {
	out := make([]ScenarioID, len(c.order))
	copy(out, c.order)
	return out
}

// Scenario returns the table for a scenario.
func (c *Catalog) Scenario(id ScenarioID) (*Table, error) {
	t, ok := c.scenarios[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, id)
	}
	return t, nil
}

// HasScenario reports whether id was loaded.
func (c *Catalog) HasScenario(id ScenarioID) bool {
	_, ok := c.scenarios[id]
	return ok
}

// Historical returns the historical table, or nil when none was loaded.
func (c *Catalog) Historical() *Table {
	return c.historical
}

// Tables returns every table, scenarios first in display order.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, 0, len(c.order)+1)
	for _, id := range c.order {
		out = append(out, c.scenarios[id])
	}
	if c.historical != nil {
		out = append(out, c.historical)
	}
	return out
}

// DisplayName returns the spreadsheet spelling for a key, taken from the
// first table that resolves it.
func (c *Catalog) DisplayName(key string) (string, error) {
	var firstErr error
	for _, t := range c.Tables() {
		row, err := t.Lookup(key)
		if err == nil {
			return row.Name, nil
		}
		if firstErr == nil || errors.Is(err, ErrAmbiguousKey) {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return "", firstErr
}

// Resolve normalizes a raw name from any source and returns its key and
// spreadsheet spelling.
func (c *Catalog) Resolve(raw string) (key, name string, err error) {
	key = provname.Normalize(raw)
	name, err = c.DisplayName(key)
	return key, name, err
}

// Load reads every table named by the configuration.
//
// A scenario table that cannot be read is reported and skipped; Load fails
// only when no scenario table loads at all. A missing or unreadable
// historical table is a warning.
func Load(cfg *config.Config, log *zap.Logger) (*Catalog, *validation.Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	report := validation.NewReport()

	var scenarios []*Table
	for _, s := range cfg.Data.Scenarios {
		path := cfg.Path(s.File)
		t, r, err := ReadTable(path, s.ID, cfg.Data.ScenarioNameColumn)
		report.Merge(r)
		if err != nil {
			log.Error("scenario table not loaded", zap.String("scenario", s.ID), zap.String("path", path), zap.Error(err))
			report.AddError(validation.Result{
				Level:   validation.LevelLoad,
				Message: fmt.Sprintf("scenario %s not loaded: %v", s.ID, err),
				Source:  path,
			})
			continue
		}
		logTable(log, t)
		scenarios = append(scenarios, t)
	}
	if len(scenarios) == 0 {
		return nil, report, fmt.Errorf("no scenario table could be loaded")
	}

	var historical *Table
	if cfg.Data.Historical != "" {
		path := cfg.Path(cfg.Data.Historical)
		t, r, err := ReadTable(path, "Historical", cfg.Data.HistoricalNameColumn)
		report.Merge(r)
		if err != nil {
			log.Warn("historical table not loaded", zap.String("path", path), zap.Error(err))
			report.AddWarning(validation.Result{
				Level:   validation.LevelLoad,
				Message: fmt.Sprintf("historical table not loaded: %v", err),
				Source:  path,
			})
		} else {
			logTable(log, t)
			historical = t
		}
	}

	return NewCatalog(historical, scenarios...), report, nil
}

func logTable(log *zap.Logger, t *Table) {
	incomplete, dupes := t.Dropped()
	log.Info("table loaded",
		zap.String("table", t.Name),
		zap.Int("rows", t.Len()),
		zap.Strings("years", t.Years),
		zap.Int("dropped_incomplete", incomplete),
		zap.Int("dropped_duplicates", dupes))
}
