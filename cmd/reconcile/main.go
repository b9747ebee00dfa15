package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/hrms-lite/internal/app"
	"github.com/ogurasousui/hrms-lite/internal/platform/config"
	"github.com/ogurasousui/hrms-lite/internal/platform/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	lg, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build logger")
	}

	backend, err := app.OpenBackend(ctx, cfg.Database, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() { _ = backend.Close(context.Background()) }()

	result, err := backend.AttendanceService().ReconcileOrphans(ctx)
	if err != nil {
		lg.Error().Err(err).Msg("reconcile failed")
		return
	}

	lg.Info().
		Int("scanned_refs", result.ScannedRefs).
		Strs("orphan_refs", result.OrphanRefs).
		Int64("removed_records", result.RemovedRecords).
		Msg("reconcile completed")
}
