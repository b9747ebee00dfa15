package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/hrms-lite/internal/adapters/http/router"
	"github.com/ogurasousui/hrms-lite/internal/app"
	"github.com/ogurasousui/hrms-lite/internal/platform/config"
	"github.com/ogurasousui/hrms-lite/internal/platform/logger"
	"github.com/ogurasousui/hrms-lite/internal/platform/server"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	log.Logger = lg

	backend, err := app.OpenBackend(ctx, cfg.Database, lg)
	if err != nil {
		return fmt.Errorf("initialize %s database: %w", cfg.Database.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			lg.Error().Err(err).Msg("failed to close database")
		}
	}()

	handler := router.New(router.Deps{
		Logger:         lg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Employees:      backend.EmployeeService(),
		Attendance:     backend.AttendanceService(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg.Server, handler, lg).Run(gctx)
	})
	if cfg.Server.HealthListenAddr != "" {
		g.Go(func() error {
			return server.NewHealth(cfg.Server.HealthListenAddr, backend.Pinger, cfg.Server.HealthInterval, lg).Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	lg.Info().Msg("server stopped")
	return nil
}
