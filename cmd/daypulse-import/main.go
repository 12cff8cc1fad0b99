package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/daypulse/internal/config"
	"github.com/claude/daypulse/internal/importer"
	"github.com/claude/daypulse/internal/pipeline"
	"github.com/claude/daypulse/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to export directory (required)")
	stateDir := flag.String("state-dir", ".daypulse-import", "directory for the import state database")
	userID := flag.Int("user", 1, "user ID to import for")
	login := flag.String("login", "", "resolve the user by login instead of -user (created if absent)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: daypulse-import -config config.yaml -path /path/to/exports [-user 1] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

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

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *login != "" {
		id, err := db.GetOrCreateUser(ctx, *login)
		if err != nil {
			log.Error("failed to resolve user", "login", *login, "error", err)
			os.Exit(1)
		}
		*userID = id
		log.Info("resolved user", "login", *login, "user_id", id)
	}

	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	imp := importer.New(db, pipeline.New(log), state, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath, *userID)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import complete",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"samples_received", stats.SamplesReceived,
		"samples_applied", stats.SamplesApplied,
		"records_written", stats.RecordsWritten,
	)
	if len(stats.UnknownMetrics) > 0 {
		log.Warn("unrecognized metrics encountered", "metrics", stats.UnknownMetrics)
	}
}
