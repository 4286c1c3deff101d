package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

// ErrLookupTarget is returned unless exactly one of --row and --match is set.
var ErrLookupTarget = errors.New("set exactly one of --row and --match")

func (a *app) lookupCommand() *cobra.Command {
	var (
		rowText    string
		matchText string
	)

	cmd := &cobra.Command{
		Use:   "lookup <grid>",
		Short: "Find the index of a row",
		Long: `Print the index of a row, given either its comma separated form
(--row 0,1,1,0) or the JSON configuration it hydrates to
(--match '{"a": 1, "b": 20}').`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (rowText == "") == (matchText == "") {
				return ErrLookupTarget
			}

			_, space, err := a.buildSpace(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}

			row, err := targetRow(space, rowText, matchText)
			if err != nil {
				return err
			}

			index, err := space.IndexOf(row)
			a.metrics.RecordHydration(cmd.Context(), observability.OpLookup, err)

			if err != nil {
				return err
			}

			return a.renderer().Lookup(index, row)
		},
	}

	cmd.Flags().StringVarP(&rowText, "row", "r", "", "row in comma separated form")
	cmd.Flags().StringVarP(&matchText, "match", "m", "", "hydrated configuration as JSON")

	return cmd
}

func targetRow(space *paramspace.Space, rowText, matchText string) (paramspace.Row, error) {
	if rowText != "" {
		return paramspace.ParseRow(rowText)
	}

	dec := json.NewDecoder(strings.NewReader(matchText))
	dec.UseNumber()

	var cfg map[string]any

	err := dec.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("parse --match: %w", err)
	}

	return space.Encode(cfg)
}
