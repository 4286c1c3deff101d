package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paramspace/internal/server"
	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
)

const serveName = "serve"

func (a *app) serveCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   serveName + " <grid>",
		Short: "Serve a grid over HTTP",
		Long: `Expand a grid once and serve read-only queries against it until
interrupted.

Endpoints:
  GET  /v1/space         parameter summary
  GET  /v1/rows          rows, paged with ?offset=&limit=&hydrate=true
  GET  /v1/rows/{index}  one hydrated row, ?construct=true builds objects
  POST /v1/lookup        index of {"row": "..."} or {"config": {...}}
  GET  /healthz, /readyz probes
  GET  /metrics          Prometheus scrape, when telemetry.prometheus is set`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, space, err := a.buildSpace(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}

			requests, err := observability.NewRequestMetrics(a.providers.Meter)
			if err != nil {
				return err
			}

			cfg := a.cfg.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}

			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			srv, err := server.New(gridName(grid, args[0]), space, cfg, server.Deps{
				Logger:         a.providers.Logger,
				Tracer:         a.providers.Tracer,
				Requests:       requests,
				Space:          a.metrics,
				MetricsHandler: a.providers.MetricsHandler,
			})
			if err != nil {
				return err
			}

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from settings)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from settings)")

	return cmd
}
