// Package cli wires the logpipe binary: a producer, a consumer, and a
// combined run mode sharing one local store.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// New builds the root command.
func New() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "logpipe",
		Short:         "Synthetic server-log event pipeline",
		Long:          "logpipe generates synthetic HTTP/inventory events into a partitioned stream and consumes them into a keyed table of canonical records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("LOGPIPE_LOG_LEVEL"), "Log level: debug|info|warn|error")

	root.AddCommand(newProduceCmd())
	root.AddCommand(newConsumeCmd())
	root.AddCommand(newRunCmd())
	return root
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
