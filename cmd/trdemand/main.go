package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/internal/server"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/dataset"
)

var logLevel string

func main() {
	rootCmd := &cobra.Command{
		Use:          "trdemand",
		Short:        "Residential electricity demand projections for Turkey's provinces to 2050",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(provinceCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(chartsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func projectArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the interactive dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(projectArg(args))
			if err != nil {
				return err
			}
			defer p.log.Sync()
			if listen != "" {
				p.cfg.Server.Listen = listen
			}

			srv, err := server.New(p.cfg, p.log, p.catalog, p.boundaries, p.report)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, :8501)")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Load every table and the boundary file and report data-integrity problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(projectArg(args))
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [project-path]",
		Short: "Print national totals per scenario in TWh",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSummary(os.Stdout, projectArg(args))
		},
	}
}

func provinceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "province [project-path] <name>",
		Short: "Print the historical and projected demand of one province",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			project, name := ".", args[0]
			if len(args) == 2 {
				project, name = args[0], args[1]
			}
			return runProvince(os.Stdout, project, name)
		},
	}
}

func exportCmd() *cobra.Command {
	var out, scenario, province string

	cmd := &cobra.Command{
		Use:   "export [project-path]",
		Short: "Write national and provincial tables to an Excel workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExport(projectArg(args), out, scenario, province)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "residential-demand.xlsx", "output workbook")
	cmd.Flags().StringVarP(&scenario, "scenario", "s", string(dataset.SSP1), "scenario for the province sheets")
	cmd.Flags().StringVarP(&province, "province", "p", "", "add a sheet for this province")
	return cmd
}

func chartsCmd() *cobra.Command {
	var dir, scenario, province string

	cmd := &cobra.Command{
		Use:   "charts [project-path]",
		Short: "Render the national chart, a province chart and the map to files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCharts(projectArg(args), dir, scenario, province)
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", "charts", "output directory")
	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "scenario to highlight (default from config)")
	cmd.Flags().StringVarP(&province, "province", "p", "", "province to chart (default from config)")
	return cmd
}

// quiet returns a logger for one-shot commands that print their own output.
func quiet() *zap.Logger {
	if logLevel != "" {
		if l, err := newLogger(logLevel, "console"); err == nil {
			return l
		}
	}
	return zap.NewNop()
}
