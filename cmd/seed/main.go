// Command seed replaces the configured store's contents with a fresh copy
// of the source dataset and exits.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"salesboard/internal/cli"
	"salesboard/internal/config"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Seeding the memory backend only validates the source; nothing is persisted")
	}

	res := cli.OpenBackend(ctx, logger, cfg)

	seedCtx, cancel := context.WithTimeout(ctx, cfg.SeedTimeout)
	result, err := cli.NewSeeder(logger, cfg, res, nil).Run(seedCtx)
	cancel()

	if cerr := res.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup error", "error", cerr)
	}
	if err != nil {
		logger.Error("Seeding failed", "error", err, "source", cfg.SeedSourceURL, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	logger.Info("Seeding finished", "fetched", result.Fetched, "inserted", result.Inserted, "skipped", result.Skipped)
}
