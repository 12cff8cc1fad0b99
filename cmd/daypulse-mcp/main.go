package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/daypulse/internal/config"
	"github.com/claude/daypulse/internal/mcp"
	"github.com/claude/daypulse/internal/readiness"
	"github.com/claude/daypulse/internal/storage"
	"github.com/claude/daypulse/internal/weekly"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the DayPulse server")
	local := flag.Bool("local", false, "read the database directly instead of the REST API")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	flag.Parse()

	// Logs go to stderr: stdout is the MCP stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *local {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		readinessCfg := readiness.DefaultConfig()
		if cfg.Scoring.SleepTargetMin > 0 {
			readinessCfg.SleepTargetMin = cfg.Scoring.SleepTargetMin
		}
		weeklyCfg := weekly.DefaultConfig()
		if cfg.Scoring.WeeklySleepGoal > 0 {
			weeklyCfg.SleepGoalMin = cfg.Scoring.WeeklySleepGoal
		}
		ds = mcp.NewLocalSource(db, readinessCfg, weeklyCfg)
	} else {
		ds = mcp.NewHTTPClient(*baseURL)
	}

	srv := mcp.New(ds, Version, log)

	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
