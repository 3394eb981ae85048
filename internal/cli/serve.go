package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/internal/metrics"
	"github.com/apisbr/apisbr/internal/server"
	"github.com/apisbr/apisbr/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the APIs over HTTP as JSON, with Prometheus metrics",
		Long: `Serve the APIs over HTTP as JSON, with Prometheus metrics at /metrics.

Tables are JSON by default; add ?format=csv or ?format=yaml to a request
for other encodings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			dados, err := c.dadosClient(ctx)
			if err != nil {
				return err
			}
			locs, err := c.localidadesClient(ctx)
			if err != nil {
				return err
			}
			aggs, err := c.agregadosClient(ctx)
			if err != nil {
				return err
			}
			ipea, err := c.ipeaClient(ctx)
			if err != nil {
				return err
			}

			m := metrics.New(prometheus.DefaultRegisterer)
			m.Register()
			defer observability.Reset()

			srv := server.New(server.Sources{
				Datasets:   dados,
				Localities: locs,
				Aggregates: aggs,
				Series:     ipea,
			}, server.Options{
				Logger:   c.Logger,
				Metrics:  m,
				Gatherer: prometheus.DefaultGatherer,
			})

			printInfo("Serving on %s (backend %s)", addr, c.cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
