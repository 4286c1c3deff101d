// Package commands implements the paramspace CLI commands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/paramspace/pkg/config"
	"github.com/Sumatoshi-tech/paramspace/pkg/gridfile"
	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
	"github.com/Sumatoshi-tech/paramspace/pkg/progress"
	"github.com/Sumatoshi-tech/paramspace/pkg/registry"
	"github.com/Sumatoshi-tech/paramspace/pkg/render"
	"github.com/Sumatoshi-tech/paramspace/pkg/version"
)

// skipSetup marks commands that run without settings or telemetry.
const skipSetup = "paramspace/skip-setup"

// app holds global flags and the state shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	quiet      bool
	output     string

	cfg       *config.Config
	format    render.Format
	providers observability.Providers
	metrics   *observability.SpaceMetrics
	registry  *registry.Registry
}

// Execute builds the command tree and runs it with args.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		registry: registry.New(registry.WithFallback(registry.Describe)),
	}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer a.shutdown()

	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "paramspace",
		Short: "Expand, index and query hyperparameter grids",
		Long: `paramspace expands grid files of parameter configurations into the
Cartesian product of their values and indexes every combination as a row of
integers.

Commands:
  expand    List the rows of a grid
  count     Count combinations without expanding
  inspect   Summarise the parameters of a grid
  hydrate   Decode a row back into its configuration or object
  lookup    Find the index of a row
  validate  Check grid files against the schema
  serve     Serve a grid over HTTP`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "settings file (default: ./paramspace.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress progress and informational logs")
	flags.StringVarP(&a.output, "output", "o", "", "output format: table, json, yaml (default from settings)")

	root.AddCommand(
		a.expandCommand(),
		a.countCommand(),
		a.inspectCommand(),
		a.hydrateCommand(),
		a.lookupCommand(),
		a.validateCommand(),
		a.serveCommand(),
		a.versionCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] != "" {
		return nil
	}

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	if a.output != "" {
		cfg.Output.Format = a.output
	}

	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	switch {
	case a.quiet:
		level = slog.LevelError
		cfg.Expansion.Progress = false
	case a.verbose:
		level = slog.LevelDebug
	}

	mode := observability.ModeCLI
	if cmd.Name() == serveName {
		mode = observability.ModeServe
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.Prometheus = cfg.Telemetry.Prometheus && mode == observability.ModeServe
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == "json"
	obsCfg.LogOutput = a.stderr

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.providers = providers

	metrics, err := observability.NewSpaceMetrics(providers.Meter)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.format = format
	a.metrics = metrics

	return nil
}

func (a *app) shutdown() {
	if a.providers.Shutdown == nil {
		return
	}

	err := a.providers.Shutdown(context.Background())
	if err != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func (a *app) renderer() *render.Renderer {
	return render.New(a.stdout, a.format)
}

// buildSpace loads a grid file and expands it. With showProgress set and
// stderr on a terminal, a progress bar tracks the expansion.
func (a *app) buildSpace(ctx context.Context, path string, showProgress bool) (*gridfile.Grid, *paramspace.Space, error) {
	ctx, span := a.providers.Tracer.Start(ctx, "paramspace.expand",
		trace.WithAttributes(attribute.String("grid.path", path)))
	defer span.End()

	grid, err := gridfile.Load(path)
	if err != nil {
		span.SetStatus(codes.Error, "load grid")

		return nil, nil, err
	}

	opts := []paramspace.Option{
		paramspace.WithLogger(a.providers.Logger),
		paramspace.WithResolver(a.registry),
		paramspace.WithClassKey(a.cfg.Expansion.ClassKey),
		paramspace.WithMaxCombinations(a.cfg.Expansion.MaxCombinations),
	}

	var bar *progress.Bar

	if showProgress && a.cfg.Expansion.Progress && progress.IsTerminal(a.stderr) {
		bar = progress.New(a.stderr, progress.WithLabel("expanding "+filepath.Base(path)))
		opts = append(opts, paramspace.WithProgress(bar.Update))
	}

	space := paramspace.New(opts...)
	configs := grid.Configs()
	start := time.Now()

	rows, err := space.Extend(configs)

	if bar != nil {
		bar.Finish()
	}

	a.metrics.RecordExpansion(ctx, len(configs), len(rows), time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "expand grid")

		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	span.SetAttributes(attribute.Int("space.rows", space.Len()))
	a.providers.Logger.DebugContext(ctx, "space built",
		"grid", path, "configs", len(configs), "rows", space.Len(), "duration", time.Since(start))

	return grid, space, nil
}

// gridName is the grid's declared name or its file name without extension.
func gridName(grid *gridfile.Grid, path string) string {
	if grid.Name != "" {
		return grid.Name
	}

	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
