package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/pkg/gridfile"
	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
	"github.com/Sumatoshi-tech/paramspace/pkg/render"
	"github.com/Sumatoshi-tech/paramspace/pkg/safeconv"
)

// CountReport lists how many rows each configuration of a grid expands to.
type CountReport struct {
	Grid    string `json:"grid"    yaml:"grid"`
	Configs []int  `json:"configs" yaml:"configs"`
	Total   int    `json:"total"   yaml:"total"`
}

func (a *app) countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <grid>",
		Short: "Count combinations without expanding",
		Long: `Count the rows each configuration of a grid would produce, duplicates
included, without interning anything. Use it to size a grid before expanding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			grid, err := gridfile.Load(args[0])
			if err != nil {
				return err
			}

			report, err := countGrid(grid, args[0], a.cfg.Expansion.ClassKey)
			if err != nil {
				return err
			}

			return a.renderCount(report)
		},
	}
}

func countGrid(grid *gridfile.Grid, path, classKey string) (CountReport, error) {
	space := paramspace.New(paramspace.WithClassKey(classKey))
	report := CountReport{Grid: gridName(grid, path)}

	for i, cfg := range grid.Configs() {
		n, err := space.Combinations(cfg)
		if err != nil {
			return CountReport{}, fmt.Errorf("%s: config %d: %w", path, i, err)
		}

		report.Configs = append(report.Configs, n)
		report.Total = safeconv.SaturatingAdd(report.Total, n)
	}

	return report, nil
}

func (a *app) renderCount(report CountReport) error {
	if a.format != render.FormatTable {
		return a.renderer().Value(report)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(report.Grid)
	tbl.AppendHeader(table.Row{"Config", "Combinations"})

	for i, n := range report.Configs {
		tbl.AppendRow(table.Row{i, humanize.Comma(int64(n))})
	}

	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(report.Total))})

	_, err := fmt.Fprintln(a.stdout, tbl.Render())
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
