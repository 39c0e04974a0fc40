package validation

import (
	"fmt"
	"strconv"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/config"
)

// ValidateConfig checks a parsed Config for structural problems before any
// file is opened.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateScenarios(c, r)
	validateSources(c, r)
	validateDisplay(c, r)
	validateServer(c, r)

	return r
}

func validateScenarios(c *config.Config, r *Report) {
	if len(c.Data.Scenarios) == 0 {
		r.AddError(Result{
			Level:    LevelConfig,
			Message:  "data.scenarios must list at least one scenario table",
			Source:   "data.scenarios",
			Expected: "at least 1 scenario",
		})
		return
	}

	seen := make(map[string]int, len(c.Data.Scenarios))
	for i, s := range c.Data.Scenarios {
		path := fmt.Sprintf("data.scenarios[%d]", i)
		if s.ID == "" {
			r.AddError(Result{Level: LevelConfig, Message: "scenario id must not be empty", Source: path})
		}
		if s.File == "" {
			r.AddError(Result{Level: LevelConfig, Message: fmt.Sprintf("scenario %s has no file", s.ID), Source: path + ".file"})
		}
		if prev, ok := seen[s.ID]; ok && s.ID != "" {
			r.AddError(Result{
				Level:        LevelConfig,
				Message:      fmt.Sprintf("scenario id %s is listed twice", s.ID),
				Source:       path + ".id",
				ConflictWith: fmt.Sprintf("data.scenarios[%d].id", prev),
			})
			continue
		}
		seen[s.ID] = i
	}

	if _, ok := seen[c.Display.DefaultScenario]; !ok {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("default scenario %q is not a configured scenario", c.Display.DefaultScenario),
			Source:      "display.default_scenario",
			ActualValue: c.Display.DefaultScenario,
			Suggestions: []string{fmt.Sprintf("Use one of %v", c.ScenarioIDs())},
		})
	}
}

func validateSources(c *config.Config, r *Report) {
	if c.Data.Boundaries == "" {
		r.AddError(Result{Level: LevelConfig, Message: "data.boundaries is required", Source: "data.boundaries"})
	}
	if c.Data.Historical == "" {
		r.AddWarning(Result{
			Level:   LevelConfig,
			Message: "no historical table configured; charts will show projections only",
			Source:  "data.historical",
		})
	}
	if c.Data.ScenarioNameColumn == "" || c.Data.HistoricalNameColumn == "" {
		r.AddError(Result{Level: LevelConfig, Message: "province name columns must be set", Source: "data"})
	}
	if c.Data.BoundaryNameProperty == "" {
		r.AddError(Result{Level: LevelConfig, Message: "data.boundary_name_property must be set", Source: "data.boundary_name_property"})
	}
}

func validateDisplay(c *config.Config, r *Report) {
	d := c.Display
	if _, err := strconv.Atoi(d.MapYear); err != nil || len(d.MapYear) != 4 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "display.map_year must be a four-digit year",
			Source:      "display.map_year",
			ActualValue: d.MapYear,
			Expected:    "e.g. 2050",
		})
	}
	if d.ProjectionStartYear <= d.HistoricalStartYear {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("projection_start_year (%d) must be after historical_start_year (%d)", d.ProjectionStartYear, d.HistoricalStartYear),
			Source:      "display.projection_start_year",
			ActualValue: d.ProjectionStartYear,
		})
	}
	if d.TWhThresholdGWh <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "display.twh_threshold_gwh must be > 0",
			Source:      "display.twh_threshold_gwh",
			ActualValue: d.TWhThresholdGWh,
			Expected:    "> 0",
		})
	}
	if d.DefaultProvince == "" {
		r.AddError(Result{Level: LevelConfig, Message: "display.default_province must be set", Source: "display.default_province"})
	}
}

func validateServer(c *config.Config, r *Report) {
	if c.Server.SessionTTL <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "server.session_ttl must be positive",
			Source:      "server.session_ttl",
			ActualValue: c.Server.SessionTTL.String(),
		})
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("unknown log level %q, using info", c.Log.Level),
			Source:      "log.level",
			ActualValue: c.Log.Level,
		})
	}
}
