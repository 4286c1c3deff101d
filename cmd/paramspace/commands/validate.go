package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/pkg/gridfile"
	"github.com/Sumatoshi-tech/paramspace/pkg/render"
)

// ErrInvalidGrids is returned when any validated grid file fails.
var ErrInvalidGrids = errors.New("invalid grid files")

const stdinPath = "-"

// ValidationResult is the outcome of validating one grid file.
type ValidationResult struct {
	Path         string           `json:"path"                   yaml:"path"`
	Valid        bool             `json:"valid"                  yaml:"valid"`
	Configs      int              `json:"configs,omitempty"      yaml:"configs,omitempty"`
	Combinations int              `json:"combinations,omitempty" yaml:"combinations,omitempty"`
	Issues       []gridfile.Issue `json:"issues,omitempty"       yaml:"issues,omitempty"`
	Error        string           `json:"error,omitempty"        yaml:"error,omitempty"`

	doc any
}

func (a *app) validateCommand() *cobra.Command {
	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate <grid|->...",
		Short: "Check grid files against the schema",
		Long: `Validate grid files against the embedded grid schema, then check that
every configuration expands: nested configurations and scalars must not be
mixed in one list, and a parameter keeps one shape across configurations.

Use - to read a YAML or JSON grid from stdin.

Examples:
  paramspace validate grids/agents.yaml
  paramspace validate -o json grids/*.yaml
  paramspace validate - < grid.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			} else if colorize {
				color.NoColor = false //nolint:reassign // intentional override of library global
			}

			results := make([]ValidationResult, 0, len(args))
			failed := 0

			for _, path := range args {
				res := a.validateOne(cmd.InOrStdin(), path)
				if !res.Valid {
					failed++
				}

				results = append(results, res)
			}

			renderErr := a.renderValidation(results)
			if renderErr != nil {
				return renderErr
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", ErrInvalidGrids, failed, len(args))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func (a *app) validateOne(stdin io.Reader, path string) ValidationResult {
	res := ValidationResult{Path: path}

	data, format, err := readGrid(stdin, path)
	if err != nil {
		res.Error = err.Error()

		return res
	}

	doc, err := gridfile.Decode(bytes.NewReader(data), format)
	if err != nil {
		res.Error = err.Error()

		return res
	}

	res.doc = doc

	err = gridfile.Validate(doc)
	if err != nil {
		var schemaErr *gridfile.SchemaError
		if errors.As(err, &schemaErr) {
			res.Issues = schemaErr.Issues
		} else {
			res.Error = err.Error()
		}

		return res
	}

	grid, err := gridfile.Parse(bytes.NewReader(data), format)
	if err != nil {
		res.Error = err.Error()

		return res
	}

	report, err := countGrid(grid, path, a.cfg.Expansion.ClassKey)
	if err != nil {
		res.Error = err.Error()

		return res
	}

	res.Valid = true
	res.Configs = len(report.Configs)
	res.Combinations = report.Total

	return res
}

func readGrid(stdin io.Reader, path string) ([]byte, gridfile.Format, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		// JSON is valid YAML.
		return data, gridfile.FormatYAML, nil
	}

	format, err := gridfile.FormatOf(path)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read grid: %w", err)
	}

	return data, format, nil
}

func (a *app) renderValidation(results []ValidationResult) error {
	if a.format != render.FormatTable {
		return a.renderer().Value(results)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	for _, res := range results {
		if res.Valid {
			green.Fprintf(a.stdout, "✓ %s: %d configs, %s combinations\n",
				res.Path, res.Configs, humanize.Comma(int64(res.Combinations)))

			continue
		}

		red.Fprintf(a.stdout, "✗ %s\n", res.Path)

		if res.Error != "" {
			yellow.Fprintf(a.stdout, "  - %s\n", res.Error)
		}

		for _, issue := range res.Issues {
			if got := valueAt(res.doc, issue.Field); got != "" {
				yellow.Fprintf(a.stdout, "  - %s: %s (got %s)\n", issue.Field, issue.Description, got)
			} else {
				yellow.Fprintf(a.stdout, "  - %s: %s\n", issue.Field, issue.Description)
			}
		}
	}

	return nil
}

// valueAt returns the compact form of the value at a schema field path such
// as "configs.0.alpha", or "" when the path does not resolve.
func valueAt(doc any, field string) string {
	if doc == nil || field == "" || field == "(root)" {
		return ""
	}

	current := doc

	for part := range strings.SplitSeq(field, ".") {
		switch typed := current.(type) {
		case map[string]any:
			val, found := typed[part]
			if !found {
				return ""
			}

			current = val
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return ""
			}

			current = typed[idx]
		default:
			return ""
		}
	}

	return render.Compact(current)
}
