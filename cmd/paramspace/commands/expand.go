package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/pkg/render"
)

type expandOptions struct {
	offset  int
	limit   int
	hydrate bool
}

func (a *app) expandCommand() *cobra.Command {
	opts := &expandOptions{}

	cmd := &cobra.Command{
		Use:   "expand <grid>",
		Short: "List the rows of a grid",
		Long: `Expand every configuration of a grid file and list the resulting rows.

Rows are shown in index order. --limit defaults to output.limit from the
settings; 0 lists every row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, space, err := a.buildSpace(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}

			limit := opts.limit
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Output.Limit
			}

			page, err := render.PageOf(space, opts.offset, limit, opts.hydrate)
			if err != nil {
				return err
			}

			return a.renderer().Page(page)
		},
	}

	cmd.Flags().IntVar(&opts.offset, "offset", 0, "index of the first row to list")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum rows to list (0 = all)")
	cmd.Flags().BoolVar(&opts.hydrate, "hydrate", false, "include each row's configuration")

	return cmd
}
