package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/daypulse/internal/config"
	"github.com/claude/daypulse/internal/pipeline"
	"github.com/claude/daypulse/internal/readiness"
	"github.com/claude/daypulse/internal/server"
	"github.com/claude/daypulse/internal/storage"
	"github.com/claude/daypulse/internal/weekly"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("DayPulse starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	pipe := pipeline.New(log)

	readinessCfg := readiness.DefaultConfig()
	if cfg.Scoring.SleepTargetMin > 0 {
		readinessCfg.SleepTargetMin = cfg.Scoring.SleepTargetMin
	}
	weeklyCfg := weekly.DefaultConfig()
	if cfg.Scoring.WeeklySleepGoal > 0 {
		weeklyCfg.SleepGoalMin = cfg.Scoring.WeeklySleepGoal
	}
	if cfg.Scoring.MinDaysForOK > 0 {
		weeklyCfg.MinDaysForOK = cfg.Scoring.MinDaysForOK
	}
	if cfg.Scoring.MinDaysForCompare > 0 {
		weeklyCfg.MinDaysForCompare = cfg.Scoring.MinDaysForCompare
	}

	srv := server.New(db, pipe, server.Options{
		APIKey:        cfg.Auth.APIKey,
		ReadinessCfg:  readinessCfg,
		WeeklyCfg:     weeklyCfg,
		IngestTimeout: time.Duration(cfg.Scoring.IngestTimeoutSecOrDefault()) * time.Second,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("server starting", "addr", addr)

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
