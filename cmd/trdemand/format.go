package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/analytics"
	"github.com/mmourshed/tr-2050-residential-electricity-demand/pkg/validation"
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printResult(w, e)
			if e.ConflictWith != "" {
				fmt.Fprintf(w, "    conflicts with: %s\n", e.ConflictWith)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, res := range r.Warnings {
			printResult(w, res)
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printResult(w io.Writer, res validation.Result) {
	fmt.Fprintf(w, "  [%s] %s\n", res.Level, res.Message)
	if res.Source != "" && res.ActualValue != nil {
		fmt.Fprintf(w, "    -> %s = %v\n", res.Source, res.ActualValue)
	}
	if res.Expected != "" {
		fmt.Fprintf(w, "    expected: %s\n", res.Expected)
	}
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "    * %s\n", s)
	}
}

// printNational prints one row per year with a column per series.
func printNational(w io.Writer, v *analytics.NationalView) {
	series := v.Scenarios
	if v.Historical != nil {
		series = append([]analytics.Series{*v.Historical}, series...)
	}
	fmt.Fprintf(w, "Total residential demand in Turkey (%s)\n\n", v.Unit)
	printTable(w, "Year", series)
}

func printProvince(w io.Writer, v *analytics.ProvinceView) {
	fmt.Fprintf(w, "Demand in %s (%s)\n\n", v.Name, v.Unit)
	printTable(w, "Year", v.Series)
	if len(v.Missing) > 0 {
		fmt.Fprintf(w, "\nNo rows in: %v\n", v.Missing)
	}
}

func printTable(w io.Writer, corner string, series []analytics.Series) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, corner)
	for _, s := range series {
		fmt.Fprintf(tw, "\t%s", s.Name)
	}
	fmt.Fprintln(tw, "\t")

	seen := map[int]bool{}
	var years []int
	for _, s := range series {
		for _, y := range s.Years() {
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
	}
	sort.Ints(years)

	for _, y := range years {
		fmt.Fprint(tw, strconv.Itoa(y))
		for _, s := range series {
			if v, ok := s.At(y); ok {
				fmt.Fprintf(tw, "\t%.2f", v)
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		fmt.Fprintln(tw, "\t")
	}
	tw.Flush()
}
