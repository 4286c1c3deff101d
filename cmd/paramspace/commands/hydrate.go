package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
)

func (a *app) hydrateCommand() *cobra.Command {
	var (
		index     int
		construct bool
	)

	cmd := &cobra.Command{
		Use:   "hydrate <grid>",
		Short: "Decode a row back into its configuration or object",
		Long: `Decode the row at --index into the configuration it encodes.

With --construct, rows carrying a class key are built into objects, nested
rows first. Classes without a registered constructor are described by their
path and keyword arguments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, space, err := a.buildSpace(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}

			var (
				value any
				op    = observability.OpHydrate
			)

			if construct {
				op = observability.OpConstruct
				value, err = space.ConstructIndex(index)
			} else {
				value, err = space.HydrateIndex(index)
			}

			a.metrics.RecordHydration(cmd.Context(), op, err)

			if err != nil {
				return fmt.Errorf("row %d: %w", index, err)
			}

			return a.renderer().Value(value)
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", 0, "row index")
	cmd.Flags().BoolVar(&construct, "construct", false, "construct objects from class keys")

	return cmd
}
