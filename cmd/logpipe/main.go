package main

import (
	"log/slog"
	"os"

	"github.com/Rendxnn/logpipe/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
