package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-genui/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve extraction, rendering, and session generation over HTTP until
interrupted. Prometheus metrics are exposed at /metrics.`,
		Example: `  genui serve --addr :9090 --store-driver sqlite`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newCommandApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			srv, err := server.New(server.Config{
				Orchestrator:    app.Orchestrator,
				Metrics:         app.Metrics,
				Addr:            app.Config.Addr,
				ShutdownTimeout: app.Config.ShutdownTimeout,
				Logger:          app.Logger,
				Version:         Version,
			})
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Listen address")
	return cmd
}
