package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchsight/datapipe/internal/app"
	"github.com/pitchsight/datapipe/internal/config"
	"github.com/pitchsight/datapipe/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	defer func() { _ = logger.Sync() }()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Orchestrator.Start(ctx)
	logger.Info("pipeline started", "leagues", cfg.LeagueIDs)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	application.Orchestrator.Stop()
	if err := application.Close(); err != nil {
		logger.Error("close resources", "error", err)
		os.Exit(1)
	}

	logger.Info("pipeline stopped")
}
