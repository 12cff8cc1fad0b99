package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/daypulse/internal/models"
	"github.com/claude/daypulse/internal/readiness"
	"github.com/claude/daypulse/internal/weekly"
)

// HTTPClient implements DataSource by calling the DayPulse REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on the
// server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *HTTPClient) GetReadiness(ctx context.Context, userID int, date time.Time) (*readiness.Result, error) {
	params := url.Values{}
	params.Set("user", strconv.Itoa(userID))
	params.Set("date", date.Format("2006-01-02"))

	body, err := c.get(ctx, "/api/v1/readiness", params)
	if err != nil {
		return nil, err
	}
	var res readiness.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: parse readiness: %w", err)
	}
	return &res, nil
}

func (c *HTTPClient) GetWeeklyReport(ctx context.Context, userID int, weekStart time.Time) (*weekly.Report, error) {
	params := url.Values{}
	params.Set("user", strconv.Itoa(userID))
	params.Set("week_start", weekStart.Format("2006-01-02"))

	body, err := c.get(ctx, "/api/v1/weekly", params)
	if err != nil {
		return nil, err
	}
	var rep weekly.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("httpclient: parse weekly report: %w", err)
	}
	return &rep, nil
}

func (c *HTTPClient) QueryDayRecords(ctx context.Context, userID int, start, end time.Time) ([]models.DayRecord, error) {
	params := url.Values{}
	params.Set("user", strconv.Itoa(userID))
	params.Set("start", start.Format("2006-01-02"))
	params.Set("end", end.Format("2006-01-02"))

	body, err := c.get(ctx, "/api/v1/records", params)
	if err != nil {
		return nil, err
	}
	var records []models.DayRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: parse day records: %w", err)
	}
	return records, nil
}
