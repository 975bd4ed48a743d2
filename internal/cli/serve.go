package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/folio/internal/server"
	"github.com/matzehuels/folio/pkg/session"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Layouts are computed and cached as with 'folio layout'. Viewer sessions run a
navigation controller per client against a simulated engine whose clock
follows wall time between requests; idle sessions expire after --session-ttl.

Routes:
  GET    /healthz
  POST   /layouts
  POST   /layouts/render
  POST   /sessions
  GET    /sessions/{id}
  POST   /sessions/{id}/events
  DELETE /sessions/{id}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(server.Options{
				Runner:     runner,
				Store:      session.NewMemoryStore(),
				SessionTTL: ttl,
				Logger:     c.Logger,
			})

			printInfo("Serving folio API")
			printKeyValue("address", "http://"+addr)
			printKeyValue("sessions", "idle timeout "+ttl.String())
			printNewline()

			if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout caching")
	cmd.Flags().DurationVar(&ttl, "session-ttl", session.DefaultTTL, "idle timeout for viewer sessions")

	return cmd
}
