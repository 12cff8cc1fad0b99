package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/daypulse/internal/models"
	"github.com/claude/daypulse/internal/pipeline"
	"github.com/claude/daypulse/internal/readiness"
	"github.com/claude/daypulse/internal/storage"
	"github.com/claude/daypulse/internal/weekly"
	"github.com/go-chi/chi/v5"
)

// Store is the persistence collaborator as seen by the handlers: an
// upsert-by-key write path and range-by-date reads. *storage.DB satisfies it;
// tests substitute an in-memory implementation.
type Store interface {
	UpsertDayRecords(ctx context.Context, records []models.DayRecord) (int64, error)
	QueryDayRecords(ctx context.Context, userID int, start, end time.Time) ([]models.DayRecord, error)
	GetDayRecord(ctx context.Context, userID int, date time.Time) (*models.DayRecord, error)
	UpsertWeeklyReport(ctx context.Context, userID int, rep *weekly.Report) error
	InsertIngestLog(ctx context.Context, log storage.IngestLog) error
	QueryIngestLogs(ctx context.Context, userID, limit int) ([]storage.IngestLog, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         Store
	pipe          *pipeline.Pipeline
	readinessCfg  readiness.Config
	weeklyCfg     weekly.Config
	ingestTimeout time.Duration
	log           *slog.Logger
	apiKey        string
	router        chi.Router
}

// Options configures a Server beyond its collaborators.
type Options struct {
	APIKey        string
	ReadinessCfg  readiness.Config
	WeeklyCfg     weekly.Config
	IngestTimeout time.Duration
}

// New creates a new Server with all routes configured.
func New(store Store, pipe *pipeline.Pipeline, opts Options, log *slog.Logger) *Server {
	if opts.IngestTimeout <= 0 {
		opts.IngestTimeout = 60 * time.Second
	}
	s := &Server{
		store:         store,
		pipe:          pipe,
		readinessCfg:  opts.ReadinessCfg,
		weeklyCfg:     opts.WeeklyCfg,
		ingestTimeout: opts.IngestTimeout,
		log:           log,
		apiKey:        opts.APIKey,
		router:        chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Ingest endpoint (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	// Derived artifacts and record reads
	s.router.Get("/api/v1/readiness", s.handleReadiness)
	s.router.Get("/api/v1/weekly", s.handleWeekly)
	s.router.Get("/api/v1/records", s.handleRecords)
	s.router.Get("/api/v1/ingest/logs", s.handleIngestLogs)
}
