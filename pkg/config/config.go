// Package config loads the dashboard configuration from dashboard.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in a project directory.
const FileName = "dashboard.yaml"

// Default returns the configuration matching the stock data layout:
// data/xlsx/SSP1..SSP5.xlsx, data/xlsx/historical_electricity.xlsx and the
// geoBoundaries ADM1 file.
func Default() *Config {
	scenarios := make([]ScenarioDef, 0, 5)
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("SSP%d", i)
		scenarios = append(scenarios, ScenarioDef{ID: id, File: filepath.Join("xlsx", id+".xlsx")})
	}
	return &Config{
		Data: DataDef{
			Dir:                  "data",
			Scenarios:            scenarios,
			Historical:           filepath.Join("xlsx", "historical_electricity.xlsx"),
			Boundaries:           "geoBoundaries-TUR-ADM1_simplified.geojson",
			ScenarioNameColumn:   "Provinces",
			HistoricalNameColumn: "Province",
			BoundaryNameProperty: "shapeName",
		},
		Display: DisplayDef{
			MapYear:                 "2050",
			HistoricalStartYear:     2020,
			ProjectionStartYear:     2025,
			ExcludedHistoricalYears: []string{"2024"},
			DefaultProvince:         "Ankara",
			DefaultScenario:         "SSP1",
			TWhThresholdGWh:         1000,
		},
		Server: ServerDef{
			Listen:     ":8501",
			SessionTTL: 12 * time.Hour,
		},
		Log: LogDef{
			Level:  "info",
			Format: "json",
		},
		ProjectDir: ".",
	}
}

// Load reads a configuration file. Fields absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg.ProjectDir = filepath.Dir(path)
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadProject loads the configuration for a project directory.
// It looks for dashboard.yaml and falls back to Default when the file does
// not exist.
func LoadProject(projectDir string) (*Config, error) {
	info, err := os.Stat(projectDir)
	if err != nil {
		return nil, fmt.Errorf("opening project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", projectDir)
	}

	cfg, err := Load(filepath.Join(projectDir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.ProjectDir = projectDir
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return cfg, err
}

// applyEnvOverrides applies TRDEMAND_* variables on top of the file.
func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("TRDEMAND_LISTEN")); v != "" {
		c.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("TRDEMAND_DATA_DIR")); v != "" {
		c.Data.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("TRDEMAND_LOG_LEVEL")); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}
