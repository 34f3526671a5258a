package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Rendxnn/logpipe/internal/config"
	"github.com/Rendxnn/logpipe/internal/consumer"
	"github.com/Rendxnn/logpipe/internal/storage"
	"github.com/Rendxnn/logpipe/internal/stream"
	"github.com/Rendxnn/logpipe/internal/table"
)

func newConsumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Run the stream consumer until interrupted",
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

			return runConsumer(ctx, cfg, db)
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().String("http", "", "HTTP listen address for metrics/health (overrides LOGPIPE_HTTP_ADDR)")
	return cmd
}

// runConsumer assembles the consumer service, serves metrics/health over
// HTTP, and blocks until ctx is canceled.
func runConsumer(ctx context.Context, cfg config.Settings, db *storage.DB) error {
	log := stream.NewLog(db, uint32(cfg.Partitions))
	store := table.NewStore(db)
	handler := consumer.NewHandler(store, cfg.Table, cfg.RetryBackoff)
	svc := consumer.NewService(log, handler, cfg.Stream, cfg.Group, cfg.PollInterval)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      svc.HTTPHandler(promhttp.Handler()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		slog.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "err", err)
		}
	}()

	err := svc.Run(ctx)

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)
	return err
}
