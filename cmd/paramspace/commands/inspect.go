package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
	"github.com/Sumatoshi-tech/paramspace/pkg/render"
)

// ErrNotNested is returned when a dotted path steps into a leaf parameter.
var ErrNotNested = errors.New("parameter is not a nested grid")

func (a *app) inspectCommand() *cobra.Command {
	var param string

	cmd := &cobra.Command{
		Use:   "inspect <grid>",
		Short: "Summarise the parameters of a grid",
		Long: `Show every parameter of an expanded grid with its kind and number of
distinct values. With --param, list the values of one parameter instead;
dotted names such as regressor.alpha reach into nested grids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, space, err := a.buildSpace(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}

			if param == "" {
				return a.renderer().Summary(render.SummaryOf(gridName(grid, args[0]), space))
			}

			values, err := valuesAt(space, param)
			if err != nil {
				return err
			}

			return a.renderer().Value(values)
		},
	}

	cmd.Flags().StringVarP(&param, "param", "p", "", "list the values of one parameter")

	return cmd
}

// valuesAt resolves a dotted parameter path through nested spaces.
func valuesAt(space *paramspace.Space, path string) ([]any, error) {
	for {
		head, rest, found := strings.Cut(path, ".")
		if !found {
			return space.Values(path)
		}

		child, ok := space.Nested(head)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotNested, head)
		}

		space, path = child, rest
	}
}
