package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Orbit HTTP API",
		Long: `Run the Orbit HTTP API.

The server exposes layout computation, snapshot CRUD, and tree expansion
endpoints under /v1, plus /healthz and Prometheus metrics at /metrics.
Backends for the snapshot store and layout cache come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			st, err := c.newStore(cmd, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close(cmd.Context())

			ca, err := newCache(cfg.Cache, false)
			if err != nil {
				return err
			}
			defer ca.Close()

			srv := server.New(server.Options{
				Logger: c.Logger,
				Store:  st,
				Cache:  ca,
				Layout: cfg.Layout.LayoutOptions(),
				Server: cfg.Server,
			})

			c.Logger.Info("starting server", "addr", cfg.Server.Addr)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address override (default from config)")

	return cmd
}
