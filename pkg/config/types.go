package config

import (
	"path/filepath"
	"time"
)

// Config is the top-level dashboard configuration.
type Config struct {
	Data    DataDef    `yaml:"data" json:"data"`
	Display DisplayDef `yaml:"display" json:"display"`
	Server  ServerDef  `yaml:"server" json:"server"`
	Log     LogDef     `yaml:"log" json:"log"`

	// ProjectDir is the directory the config was loaded from. Relative data
	// paths resolve against it.
	ProjectDir string `yaml:"-" json:"project_dir"`
}

// DataDef locates the source tables and the boundary file.
type DataDef struct {
	Dir                  string        `yaml:"dir" json:"dir"`
	Scenarios            []ScenarioDef `yaml:"scenarios" json:"scenarios"`
	Historical           string        `yaml:"historical" json:"historical"`
	Boundaries           string        `yaml:"boundaries" json:"boundaries"`
	ScenarioNameColumn   string        `yaml:"scenario_name_column" json:"scenario_name_column"`
	HistoricalNameColumn string        `yaml:"historical_name_column" json:"historical_name_column"`
	BoundaryNameProperty string        `yaml:"boundary_name_property" json:"boundary_name_property"`
}

// ScenarioDef binds a scenario identifier to its workbook.
type ScenarioDef struct {
	ID   string `yaml:"id" json:"id"`
	File string `yaml:"file" json:"file"`
}

// DisplayDef holds the year windows and defaults used when rendering.
type DisplayDef struct {
	MapYear                 string   `yaml:"map_year" json:"map_year"`
	HistoricalStartYear     int      `yaml:"historical_start_year" json:"historical_start_year"`
	ProjectionStartYear     int      `yaml:"projection_start_year" json:"projection_start_year"`
	ExcludedHistoricalYears []string `yaml:"excluded_historical_years" json:"excluded_historical_years"`
	DefaultProvince         string   `yaml:"default_province" json:"default_province"`
	DefaultScenario         string   `yaml:"default_scenario" json:"default_scenario"`
	TWhThresholdGWh         float64  `yaml:"twh_threshold_gwh" json:"twh_threshold_gwh"`
}

type ServerDef struct {
	Listen     string        `yaml:"listen" json:"listen"`
	SessionTTL time.Duration `yaml:"session_ttl" json:"session_ttl"`
}

type LogDef struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Path resolves a data file name against the project and data directories.
// Absolute names are returned unchanged.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	dir := c.Data.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.ProjectDir, dir)
	}
	return filepath.Join(dir, name)
}

// ScenarioIDs returns the configured scenario identifiers in display order.
func (c *Config) ScenarioIDs() []string {
	ids := make([]string, 0, len(c.Data.Scenarios))
	for _, s := range c.Data.Scenarios {
		ids = append(ids, s.ID)
	}
	return ids
}
