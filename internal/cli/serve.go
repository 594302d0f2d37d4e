package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pubplot/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	cfg := server.DefaultConfig()
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve exposes the render pipeline over HTTP:

  GET  /healthz
  GET  /v1/charts
  POST /v1/validate           {"chart": "box", "data": {...}, "config": {...}}
  POST /v1/render?format=svg  same body, returns the artifact

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(cfg, runner, c.Logger)
			printInfo("Listening on %s", StyleHighlight.Render(srv.Addr()))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "maximum time to render and write a response")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body", cfg.MaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
