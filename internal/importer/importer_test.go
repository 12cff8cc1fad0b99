package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/daypulse/internal/models"
	"github.com/claude/daypulse/internal/pipeline"
)

// memWriter collects upserted records in memory.
type memWriter struct {
	records []models.DayRecord
	calls   int
}

func (m *memWriter) UpsertDayRecords(ctx context.Context, records []models.DayRecord) (int64, error) {
	m.calls++
	m.records = append(m.records, records...)
	return int64(len(records)), nil
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const exportJSON = `{
	"data": {
		"metrics": [
			{
				"name": "step_count",
				"units": "count",
				"data": [{"date": "2025-03-10", "qty": 6000}]
			}
		]
	}
}`

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// TestImportDirectory verifies a directory of export files is normalized and
// written, skipping non-JSON entries.
func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export-a.json", exportJSON)
	writeExport(t, dir, "export-b.json", exportJSON)
	writeExport(t, dir, "notes.txt", "not an export")

	writer := &memWriter{}
	imp := New(writer, pipeline.New(discardLog()), nil, discardLog(), false)

	stats, err := imp.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if stats.FilesProcessed != 2 {
		t.Errorf("files processed = %d, want 2", stats.FilesProcessed)
	}
	if stats.FilesErrored != 0 {
		t.Errorf("files errored = %d, want 0", stats.FilesErrored)
	}
	if writer.calls != 2 {
		t.Errorf("writer calls = %d, want 2", writer.calls)
	}
	if stats.RecordsWritten != 2 {
		t.Errorf("records written = %d, want 2", stats.RecordsWritten)
	}
	if len(writer.records) != 2 || writer.records[0].Steps != 6000 {
		t.Errorf("writer records = %v", writer.records)
	}
}

// TestImportStateDedup verifies a second run over the same directory skips
// files already recorded in the state database.
func TestImportStateDedup(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export.json", exportJSON)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	writer := &memWriter{}
	first := New(writer, pipeline.New(discardLog()), state, discardLog(), false)
	stats, err := first.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Fatalf("first run processed = %d, want 1", stats.FilesProcessed)
	}

	second := New(writer, pipeline.New(discardLog()), state, discardLog(), false)
	stats, err = second.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.FilesSkipped != 1 {
		t.Errorf("second run skipped = %d, want 1", stats.FilesSkipped)
	}
	if stats.FilesProcessed != 0 {
		t.Errorf("second run processed = %d, want 0", stats.FilesProcessed)
	}
	if writer.calls != 1 {
		t.Errorf("writer calls = %d, want 1 (second run must not rewrite)", writer.calls)
	}
}

// TestImportStateRehashOnChange verifies a changed file is re-ingested even
// though its path was seen before.
func TestImportStateRehashOnChange(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export.json", exportJSON)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	writer := &memWriter{}
	imp := New(writer, pipeline.New(discardLog()), state, discardLog(), false)
	if _, err := imp.Import(context.Background(), dir, 1); err != nil {
		t.Fatalf("first import: %v", err)
	}

	// Same path, different content.
	writeExport(t, dir, "export.json", `{
		"data": {
			"metrics": [
				{"name": "step_count", "units": "count", "data": [{"date": "2025-03-11", "qty": 2000}]}
			]
		}
	}`)

	imp2 := New(writer, pipeline.New(discardLog()), state, discardLog(), false)
	stats, err := imp2.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("processed = %d, want 1 (content changed)", stats.FilesProcessed)
	}
	if writer.calls != 2 {
		t.Errorf("writer calls = %d, want 2", writer.calls)
	}
}

// TestImportDryRun verifies that dry-run mode normalizes but never writes.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "export.json", exportJSON)

	writer := &memWriter{}
	imp := New(writer, pipeline.New(discardLog()), nil, discardLog(), true)

	stats, err := imp.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("processed = %d, want 1", stats.FilesProcessed)
	}
	if writer.calls != 0 {
		t.Errorf("writer calls = %d, want 0 in dry run", writer.calls)
	}
}

// TestImportBadFileContinues verifies one unparseable file does not abort
// the run.
func TestImportBadFileContinues(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "aaa-bad.json", "{broken")
	writeExport(t, dir, "bbb-good.json", exportJSON)

	writer := &memWriter{}
	imp := New(writer, pipeline.New(discardLog()), nil, discardLog(), false)

	stats, err := imp.Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("errored = %d, want 1", stats.FilesErrored)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("processed = %d, want 1", stats.FilesProcessed)
	}
}

// TestHashFile verifies content-addressed hashing is stable and content
// sensitive.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "a.json", exportJSON)
	writeExport(t, dir, "b.json", exportJSON)
	writeExport(t, dir, "c.json", "different")

	ha, err := HashFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashFile(filepath.Join(dir, "b.json"))
	if err != nil {
		t.Fatal(err)
	}
	hc, err := HashFile(filepath.Join(dir, "c.json"))
	if err != nil {
		t.Fatal(err)
	}

	if ha != hb {
		t.Error("identical content should hash identically")
	}
	if ha == hc {
		t.Error("different content should hash differently")
	}
}
