package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/cashbook/internal/client/connectivity"
)

func newDaemonCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the background synchronizer",
		Long: `Run the sync engine until interrupted. Queued changes are replayed as soon
as the authoritative store is reachable and the offline marker is absent;
transient failures are retried with exponential backoff.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := st.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			return runDaemon(ctx, app)
		},
	}
}

// runDaemon работает до отмены ctx
func runDaemon(ctx context.Context, app *App) error {
	prober := connectivity.NewProber(app.remote, app.monitor, app.cfg.ProbeInterval, app.cfg.RemoteTimeout, app.logger)

	app.logger.Info("Synchronizer started",
		"db", app.cfg.DBPath,
		"remote_db", app.cfg.RemoteDBPath,
		"offline_marker", app.cfg.OfflineMarker)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return prober.Run(ctx)
	})
	g.Go(func() error {
		return app.engine.Run(ctx)
	})

	err := g.Wait()
	app.logger.Info("Synchronizer stopped")
	return err
}
