package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/opsdeck/sopgraph/internal/config"
	"github.com/opsdeck/sopgraph/internal/server"
)

// serveCommand creates the serve command for running the API server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the procedure API server",
		Long: `Run the procedure API server.

The server exposes procedure CRUD, conversion, layout, validation, and
rendering endpoints for the admin console. Configuration comes from a TOML
file and SOPGRAPH_* environment variables; flags override both. The server
shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath, addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: <user config dir>/sopgraph/config.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe loads the configuration and serves until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	// --verbose wins over the configured level.
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil && c.Logger.GetLevel() != log.DebugLevel {
		c.SetLogLevel(level)
	}

	return server.Run(ctx, cfg, c.Logger)
}
