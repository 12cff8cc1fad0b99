package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server exposing the derived health artifacts. The
// assistant only reads readiness results, weekly reports, and day records as
// textual context; it never writes.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("DayPulse", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("DayPulse health trends server. Query daily readiness scores, weekly trend reports, and canonical day records. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetReadiness, Handler: h.getReadiness},
		server.ServerTool{Tool: toolGetWeeklyReport, Handler: h.getWeeklyReport},
		server.ServerTool{Tool: toolGetDayRecords, Handler: h.getDayRecords},
	)

	s.AddResources(
		server.ServerResource{Resource: resTodayReadiness, Handler: h.todayReadiness},
		server.ServerResource{Resource: resCurrentWeek, Handler: h.currentWeek},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resTodayReadiness = mcp.NewResource(
	"daypulse://today_readiness",
	"Today's Readiness",
	mcp.WithResourceDescription("Today's readiness score with subscores, missing-data flags, and a training recommendation"),
	mcp.WithMIMEType("application/json"),
)

var resCurrentWeek = mcp.NewResource(
	"daypulse://weekly_report",
	"Weekly Trend Report",
	mcp.WithResourceDescription("Trend report for the 7 days ending today: averages, week-over-week changes, narrative, and action items"),
	mcp.WithMIMEType("application/json"),
)
