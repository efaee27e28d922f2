package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salesboard/internal/cache"
	"salesboard/internal/cli"
	"salesboard/internal/core"
	apphttp "salesboard/internal/http"
	applog "salesboard/internal/log"
	"salesboard/internal/middleware/cors"
	"salesboard/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting salesboard",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, cfg.DataBackend,
		"port", cfg.Port)

	openCtx, openCancel := context.WithTimeout(context.Background(), 30*time.Second)
	res := cli.OpenBackend(openCtx, logger, cfg)
	openCancel()

	var reports *services.ReportCache
	janitor := cache.NewJanitor(logger.WithComponent(applog.ComponentCache).Slog())
	if cfg.ReportCacheSize > 0 {
		reports = services.NewReportCache(cfg.ReportCacheSize, cfg.ReportCacheTTL)
		for _, c := range reports.Cleaners() {
			janitor.Register(c)
		}
	}
	janitor.Start(max(cfg.ReportCacheTTL, time.Minute))

	queries := services.NewQueryService(res.Store, core.NewResolver(cfg.Location()), reports)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowedOrigin = cfg.CORSAllowedOrigin
	srv := apphttp.NewServer(":"+cfg.Port, queries, apphttp.Options{
		QueryTimeout:       cfg.QueryTimeout,
		CORS:               corsCfg,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		janitor.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	if cfg.SeedOnStartup {
		seedCtx, seedCancel := context.WithTimeout(ctx, cfg.SeedTimeout)
		if _, err := cli.NewSeeder(logger, cfg, res, queries).Run(seedCtx); err != nil {
			// Serve whatever the store already holds.
			logger.Error("Initial seeding failed", "error", err, "source", cfg.SeedSourceURL)
		}
		seedCancel()
	} else {
		logger.Info("Startup seeding disabled")
	}
	srv.SetReady(true)

	logger.Info("Listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
