// Command web serves the experiment-plan ingestion API.
package main

import (
	"log/slog"
	"os"

	"perobatch/internal/app"
	"perobatch/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
