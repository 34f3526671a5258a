package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Rendxnn/logpipe/internal/storage"
)

// newRunCmd runs producer and consumer in one process. The local store is
// single-owner, so this is the mode that exercises the whole pipeline live.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run producer and consumer together against one local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := storage.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			defer db.Close()

			prod, cleanup, err := buildProducer(cfg, db)
			if err != nil {
				return err
			}
			defer cleanup()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return prod.Run(ctx) })
			g.Go(func() error { return runConsumer(ctx, cfg, db) })
			return g.Wait()
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().Int("interval-ms", 0, "Milliseconds between generated events (overrides LOGPIPE_EVENT_INTERVAL_MS)")
	cmd.Flags().Int("batch-max", 0, "Buffer flush threshold (overrides LOGPIPE_BATCH_MAX)")
	cmd.Flags().String("http", "", "HTTP listen address for metrics/health (overrides LOGPIPE_HTTP_ADDR)")
	return cmd
}
