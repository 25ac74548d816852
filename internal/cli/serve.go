package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/internal/server"
	"github.com/matzehuels/spritetag/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the HTTP API. Uploaded sprites are processed in the background and
their progress can be followed as a server-sent event stream.

Finished sessions are kept in memory for the configured session TTL.`,
		Example: `  spritetag serve
  spritetag serve --listen 127.0.0.1:9000 --backend chrome`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			e, err := c.openEnv(ctx, cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			srv := server.New(e.runner, session.NewMemoryStore(), c.Logger)
			printInfo("Listening on %s", StyleLink.Render(cfg.Listen))
			printKeyValue("Backend", e.backend.Name())
			printKeyValue("Cache", cfg.Cache)
			printKeyValue("Model", cfg.Model)
			return srv.ListenAndServe(ctx, cfg.Listen, cfg.SessionTTL)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, :8080)")
	return cmd
}
