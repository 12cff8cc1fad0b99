package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExportTime handles the timestamp formats produced by wearable export apps:
// "2006-01-02 15:04:05 -0700", RFC 3339, and date-only "2006-01-02".
type ExportTime struct {
	time.Time
}

const (
	ExportTimeLayout     = "2006-01-02 15:04:05 -0700"
	ExportDateOnlyLayout = "2006-01-02"
)

func (t *ExportTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t ExportTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(ExportTimeLayout))
}

// Parse parses an export time string, trying the full datetime layouts first,
// then date-only.
func (t *ExportTime) Parse(s string) error {
	parsed, err := time.Parse(ExportTimeLayout, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(time.RFC3339, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	parsed, err3 := time.Parse(ExportDateOnlyLayout, s)
	if err3 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse export time %q: %w", s, err)
}

// ParseExportTime parses an export time string into a time.Time.
func ParseExportTime(s string) (time.Time, error) {
	var t ExportTime
	if err := t.Parse(s); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// ExportPayload is the top-level ingest JSON structure.
type ExportPayload struct {
	Data ExportData `json:"data"`
}

// ExportData contains the named metric series.
type ExportData struct {
	Metrics []ExportMetric `json:"metrics"`
}

// ExportMetric is a single metric series with name, units, and samples.
// Samples are kept raw because their shape depends on the metric.
type ExportMetric struct {
	Name  string            `json:"name"`
	Units string            `json:"units"`
	Data  []json.RawMessage `json:"data"`
}

// MetricSample is a generic non-sleep sample. The value may arrive under any
// of qty/avg/value/min/max depending on the exporting app; timestamps may
// arrive as an explicit date or as a start/end pair. All fields are optional.
type MetricSample struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`

	Qty   *float64 `json:"qty"`
	Avg   *float64 `json:"avg"`
	Value *float64 `json:"value"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// SleepSample covers both sleep encodings. Segment samples carry start/end
// timestamps and a stage marker; summary samples carry pre-aggregated hour
// totals for the night. Which shape applies is decided by field presence,
// never by guessing from the metric name alone.
type SleepSample struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	// Alternate key spellings used by Health Auto Export for stage segments.
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	// Stage marker for segment samples: numeric 0-4 or a stage name.
	Stage *StageMarker `json:"value"`

	// Hour totals for summary samples.
	TotalSleep *float64 `json:"totalSleep"`
	Deep       *float64 `json:"deep"`
	REM        *float64 `json:"rem"`
	Core       *float64 `json:"core"`
	Awake      *float64 `json:"awake"`
}

// StageMarker is a sleep stage that may arrive as a JSON number (0-4) or as a
// stage name string.
type StageMarker struct {
	Num  *int
	Name string
}

func (m *StageMarker) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		m.Num = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("stage marker is neither number nor string: %w", err)
	}
	m.Name = strings.TrimSpace(s)
	return nil
}

func (m StageMarker) MarshalJSON() ([]byte, error) {
	if m.Num != nil {
		return json.Marshal(*m.Num)
	}
	return json.Marshal(m.Name)
}
