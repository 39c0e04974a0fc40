package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/internal/server"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/config"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/export"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/geo"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/provname"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/render"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
)

// project is everything loaded from a project directory.
type project struct {
	cfg        *config.Config
	log        *zap.Logger
	catalog    *dataset.Catalog
	boundaries *geo.Boundaries
	report     *validation.Report
}

// newLogger builds a zap logger; format "console" selects the development
// encoder, anything else JSON.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	if format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// openProject loads a project with the logger its configuration asks for.
func openProject(path string) (*project, error) {
	cfg, err := config.LoadProject(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := newLogger(level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return load(cfg, log)
}

// loadProject loads a project for a one-shot command.
func loadProject(path string) (*project, error) {
	cfg, err := config.LoadProject(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return load(cfg, quiet())
}

// load reads the tables and boundaries and merges every report. Only an
// invalid configuration, no readable scenario table or an unreadable boundary
// file stop it.
func load(cfg *config.Config, log *zap.Logger) (*project, error) {
	report := validation.ValidateConfig(cfg)
	if !report.Valid {
		return &project{cfg: cfg, log: log, report: report}, fmt.Errorf("invalid configuration: %s", report.Summary)
	}

	catalog, loadReport, err := dataset.Load(cfg, log)
	report.Merge(loadReport)
	if err != nil {
		return &project{cfg: cfg, log: log, report: report}, err
	}

	boundaries, err := geo.LoadBoundaries(cfg.Path(cfg.Data.Boundaries), cfg.Data.BoundaryNameProperty)
	if err != nil {
		return &project{cfg: cfg, log: log, catalog: catalog, report: report}, err
	}
	log.Info("boundaries loaded", zap.Int("features", len(boundaries.Features)))

	joins := analytics.CheckJoins(boundaries, catalog)
	for _, e := range joins.Errors {
		log.Error("join gap", zap.String("table", e.Source), zap.String("province", e.Province), zap.String("key", e.Key))
	}
	report.Merge(joins)

	return &project{cfg: cfg, log: log, catalog: catalog, boundaries: boundaries, report: report}, nil
}

func runValidate(projectPath string) error {
	p, err := loadProject(projectPath)
	if p != nil && p.report != nil {
		printValidationReport(os.Stdout, p.report)
	}
	if err != nil {
		return err
	}
	if !p.report.Valid {
		os.Exit(1)
	}
	return nil
}

func runSummary(w io.Writer, projectPath string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	printNational(w, analytics.National(p.catalog, analytics.OptionsFrom(p.cfg)))
	return nil
}

func runProvince(w io.Writer, projectPath, name string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	v, err := analytics.Province(p.catalog, provname.Normalize(name), analytics.OptionsFrom(p.cfg))
	if err != nil {
		return err
	}
	printProvince(w, v)
	return nil
}

func runExport(projectPath, out, scenario, province string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	id, err := dataset.ParseScenario(scenario)
	if err != nil {
		return err
	}
	opt := export.Options{Scenario: id, Analytics: analytics.OptionsFrom(p.cfg)}
	if province != "" {
		opt.Province = provname.Normalize(province)
	}
	if err := export.Save(out, p.catalog, opt); err != nil {
		return err
	}
	fmt.Printf("Workbook written to %s\n", out)
	return nil
}

func runCharts(projectPath, dir, scenario, province string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}
	if scenario == "" {
		scenario = p.cfg.Display.DefaultScenario
	}
	if province == "" {
		province = p.cfg.Display.DefaultProvince
	}
	id, err := dataset.ParseScenario(scenario)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	opt := analytics.OptionsFrom(p.cfg)

	national, err := render.NationalChart(analytics.National(p.catalog, opt), string(id))
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "national.png"), func(w io.Writer) error {
		return render.WriteChart(w, national, "png")
	}); err != nil {
		return err
	}

	key := provname.Normalize(province)
	v, err := analytics.Province(p.catalog, key, opt)
	if err != nil {
		return err
	}
	prov, err := render.ProvinceChart(v, province)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "province.png"), func(w io.Writer) error {
		return render.WriteChart(w, prov, "png")
	}); err != nil {
		return err
	}

	layer, err := analytics.Map(p.catalog, id, p.boundaries, opt)
	if err != nil {
		return err
	}
	mv := render.NewMapView(p.boundaries, server.MapWidth, server.MapHeight)
	if err := writeFile(filepath.Join(dir, "map.svg"), func(w io.Writer) error {
		return mv.Choropleth(w, "svg", layer, key)
	}); err != nil {
		return err
	}

	fmt.Printf("Charts written to %s\n", dir)
	return nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
