package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rendxnn/logpipe/internal/buffer"
	"github.com/Rendxnn/logpipe/internal/config"
	"github.com/Rendxnn/logpipe/internal/flush"
	"github.com/Rendxnn/logpipe/internal/generate"
	"github.com/Rendxnn/logpipe/internal/producer"
	"github.com/Rendxnn/logpipe/internal/storage"
	"github.com/Rendxnn/logpipe/internal/stream"
)

func newProduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Run the synthetic event producer until interrupted",
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

			return prod.Run(ctx)
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().Int("interval-ms", 0, "Milliseconds between generated events (overrides LOGPIPE_EVENT_INTERVAL_MS)")
	cmd.Flags().Int("batch-max", 0, "Buffer flush threshold (overrides LOGPIPE_BATCH_MAX)")
	return cmd
}

// buildProducer assembles generator → buffer → retrying stream flusher.
func buildProducer(cfg config.Settings, db *storage.DB) (*producer.Producer, func(), error) {
	gen := generate.New(nil, cfg.Products, generate.Settings{
		InventoryProbability: cfg.InventoryProbability,
		InventoryMin:         cfg.InventoryMin,
		InventoryMax:         cfg.InventoryMax,
	})

	cleanup := func() {}
	if cfg.PoolPath != "" {
		loader, err := config.NewLoader(cfg.PoolPath)
		if err != nil {
			return nil, nil, err
		}
		applyPool(gen, loader.Pool())
		loader.OnChange(func(pf *config.PoolFile) {
			applyPool(gen, pf)
			slog.Info("pool file reloaded", "options", len(pf.Pool), "products", len(pf.Products))
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("pool watcher unavailable (hot reload disabled)", "err", err)
		} else {
			cleanup = stopWatch
		}
	}

	log := stream.NewLog(db, uint32(cfg.Partitions))
	flusher := flush.New("stream:"+cfg.Stream, producer.StreamSender(log, cfg.Stream), cfg.RetryBackoff)
	buf := buffer.New(cfg.BatchMax, func(ctx context.Context, batch []stream.Record) {
		flusher.Send(ctx, batch)
	})
	return producer.New(gen, buf, cfg.EventInterval), cleanup, nil
}

func applyPool(gen *generate.Generator, pf *config.PoolFile) {
	gen.SetPool(pf.Pool)
	gen.SetProducts(pf.Products)
}

// addCommonFlags registers flags shared by every pipeline command.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", "", "Local store directory (overrides LOGPIPE_DATA_DIR)")
	cmd.Flags().String("stream", "", "Stream name (overrides LOGPIPE_STREAM)")
	cmd.Flags().String("table", "", "Table name (overrides LOGPIPE_TABLE)")
}

// loadSettings reads env configuration and overlays set flags on top.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	overlayStr := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	overlayStr("data-dir", &cfg.DataDir)
	overlayStr("stream", &cfg.Stream)
	overlayStr("table", &cfg.Table)
	overlayStr("http", &cfg.HTTPAddr)
	if cmd.Flags().Changed("interval-ms") {
		ms, _ := cmd.Flags().GetInt("interval-ms")
		cfg.EventInterval = time.Duration(ms) * time.Millisecond
	}
	if cmd.Flags().Changed("batch-max") {
		cfg.BatchMax, _ = cmd.Flags().GetInt("batch-max")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
