// Package importer bulk-ingests a directory of export JSON files through the
// normalization pipeline. A local SQLite state database remembers which files
// were already processed so re-runs only pick up new exports.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/daypulse/internal/models"
	"github.com/claude/daypulse/internal/pipeline"
)

// RecordWriter is the subset of the store the importer needs.
type RecordWriter interface {
	UpsertDayRecords(ctx context.Context, records []models.DayRecord) (int64, error)
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SamplesReceived int
	SamplesApplied  int
	RecordsWritten  int
	UnknownMetrics  []string
}

// Importer reads export JSON files from a directory and writes canonical day
// records through the pipeline.
type Importer struct {
	writer RecordWriter
	pipe   *pipeline.Pipeline
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil, in which case every file is
// processed (no dedup across runs).
func New(writer RecordWriter, pipe *pipeline.Pipeline, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{writer: writer, pipe: pipe, state: state, log: log, dryRun: dryRun}
}

// Import processes all .json export files under dir, in name order.
func (imp *Importer) Import(ctx context.Context, dir string, userID int) (*Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	unknownSeen := map[string]bool{}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, fmt.Errorf("import canceled: %w", err)
		}

		path := filepath.Join(dir, name)
		if err := imp.importFile(ctx, path, name, userID, unknownSeen); err != nil {
			imp.log.Warn("skipping file", "file", name, "error", err)
			imp.stats.FilesErrored++
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path, relPath string, userID int, unknownSeen map[string]bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	var hash string
	if imp.state != nil {
		hash, err = HashFile(path)
		if err != nil {
			return fmt.Errorf("hashing: %w", err)
		}
		done, err := imp.state.IsIngested(relPath, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if done {
			imp.stats.FilesSkipped++
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	var payload models.ExportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	records, result, err := imp.pipe.Normalize(ctx, &payload, userID)
	if err != nil {
		return fmt.Errorf("normalizing: %w", err)
	}

	imp.stats.SamplesReceived += result.SamplesReceived
	imp.stats.SamplesApplied += result.SamplesApplied
	for _, name := range result.UnknownMetrics {
		if !unknownSeen[name] {
			unknownSeen[name] = true
			imp.stats.UnknownMetrics = append(imp.stats.UnknownMetrics, name)
		}
	}

	if imp.dryRun {
		imp.log.Info("dry run: would write records", "file", relPath, "records", len(records))
		imp.stats.FilesProcessed++
		return nil
	}

	if _, err := imp.writer.UpsertDayRecords(ctx, records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	imp.stats.RecordsWritten += len(records)

	if imp.state != nil {
		if err := imp.state.MarkIngested(relPath, info.Size(), hash); err != nil {
			return fmt.Errorf("marking state: %w", err)
		}
	}

	imp.stats.FilesProcessed++
	imp.log.Info("imported file", "file", relPath, "records", len(records))
	return nil
}
