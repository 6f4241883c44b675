package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stationmap/internal/app"
	"stationmap/internal/config"
	"stationmap/internal/logging"
)

const appName = "stationsapi"

// version is "dev" unless set with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: %s [command]
  serve    migrate the database and serve /api/stations (default)
  migrate  apply pending schema/seed migrations and exit
`

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command != "serve" && command != "migrate" {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.LoadStationsAPIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Base, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "migrate":
		if err := app.Migrate(ctx, cfg, logger); err != nil {
			slog.Error("migrate failed", "err", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	case "serve":
		slog.Info("starting",
			"app", appName,
			"version", version,
			"env", cfg.AppEnv,
			"log_level", cfg.LogLevel.String(),
		)
		if err := app.RunStationsAPI(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("run failed", "err", err)
			os.Exit(1)
		}
		slog.Info("shutting down")
	}
}
