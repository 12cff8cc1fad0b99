package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func parseDateOr(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

// --- Tool definitions ---

var toolGetReadiness = mcp.NewTool("get_readiness",
	mcp.WithDescription("Get the readiness score for one day: 0-100 composite with sleep/HRV/resting-HR/recovery subscores, missing-data flags, tips, and a training recommendation."),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetWeeklyReport = mcp.NewTool("get_weekly_report",
	mcp.WithDescription("Get the weekly trend report comparing a 7-day window against the prior week: sleep/HRV/resting-HR averages, gated deltas, narrative, and action items."),
	mcp.WithString("week_start", mcp.Description("First day of the 7-day window (YYYY-MM-DD). Defaults to the window ending today.")),
)

var toolGetDayRecords = mcp.NewTool("get_day_records",
	mcp.WithDescription("Get canonical per-day health records (resting HR, HRV, weight, sleep stage minutes, steps, calories) for a date range."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

// --- Tool handlers ---

func (h *handlers) getReadiness(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := parseDateOr(req.GetString("date", ""), time.Now().UTC())
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	res, err := h.ds.GetReadiness(ctx, uid, date)
	if err != nil {
		h.log.Error("mcp get_readiness", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeeklyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekStart, err := parseDateOr(req.GetString("week_start", ""), time.Now().UTC().AddDate(0, 0, -6))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	rep, err := h.ds.GetWeeklyReport(ctx, uid, weekStart)
	if err != nil {
		h.log.Error("mcp get_weekly_report", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rep)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDayRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now().UTC()
	start, err := parseDateOr(req.GetString("start", ""), now.AddDate(0, 0, -7))
	if err != nil {
		return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
	}
	end, err := parseDateOr(req.GetString("end", ""), now)
	if err != nil {
		return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	records, err := h.ds.QueryDayRecords(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_day_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
