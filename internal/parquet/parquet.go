// Package parquet provides data structures and functions for exporting tracklane
// layouts and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/upec/tracklane/schema"
)

// Interval is one positioned interval of a layout.
type Interval struct {
	// TaskKey identifies the timeline row
	TaskKey string `parquet:"task_key,snappy,dict"`

	// Track is the zero-based lane index inside the row
	Track int32 `parquet:"track,snappy"`

	ID       string `parquet:"id,snappy"`
	GroupKey string `parquet:"group_key,snappy,dict"`
	Status   string `parquet:"status,snappy,dict"`

	// StartTime and EndTime use the minute layout and are null when unknown
	StartTime *string `parquet:"start_time,optional,snappy"`
	EndTime   *string `parquet:"end_time,optional,snappy"`

	LeftPct  float64 `parquet:"left_pct,snappy"`
	WidthPct float64 `parquet:"width_pct,snappy"`
	Color    string  `parquet:"color,snappy,dict"`

	// Planned marks times that were filled from plan dates
	Planned bool `parquet:"planned"`
}

// Run represents a single layout run.
// This struct maps to the tracklane_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalTasks     int32 `parquet:"total_tasks,snappy"`
	TotalIntervals int32 `parquet:"total_intervals,snappy"`
	TotalTracks    int32 `parquet:"total_tracks,snappy"`
	TotalDates     int32 `parquet:"total_dates,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RowSummary is the per-task summary recorded for a run.
// This struct maps to the tracklane_rows database table.
type RowSummary struct {
	RunID     int64   `parquet:"run_id,snappy"`
	TaskKey   string  `parquet:"task_key,snappy"`
	Intervals int32   `parquet:"intervals,snappy"`
	Tracks    int32   `parquet:"tracks,snappy"`
	Dates     int32   `parquet:"dates,snappy"`
	FirstDate *string `parquet:"first_date,optional,snappy"`
	LastDate  *string `parquet:"last_date,optional,snappy"`
}

// ConvertIntervalRows converts flattened layout rows to Parquet records.
func ConvertIntervalRows(rows []schema.IntervalRow) []Interval {
	result := make([]Interval, len(rows))
	for i, r := range rows {
		result[i] = Interval{
			TaskKey:   r.TaskKey,
			Track:     int32(r.Track),
			ID:        r.ID,
			GroupKey:  r.GroupKey,
			Status:    r.Status,
			StartTime: optionalString(r.StartTime),
			EndTime:   optionalString(r.EndTime),
			LeftPct:   r.LeftPct,
			WidthPct:  r.WidthPct,
			Color:     r.Color,
			Planned:   r.Planned,
		}
	}
	return result
}

// ConvertRunRecords converts stored run records to Parquet records.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:          r.RunID,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			RunDurationMs:  r.RunDurationMs,
			TotalTasks:     r.TotalTasks,
			TotalIntervals: r.TotalIntervals,
			TotalTracks:    r.TotalTracks,
			TotalDates:     r.TotalDates,
			ConfigParams:   r.ConfigParams,
		}
	}
	return result
}

// ConvertRowSummaryRecords converts stored row summaries to Parquet records.
func ConvertRowSummaryRecords(records []schema.RowSummaryRecord) []RowSummary {
	result := make([]RowSummary, len(records))
	for i, r := range records {
		result[i] = RowSummary(r)
	}
	return result
}

// WriteIntervals streams interval records in Parquet format to w.
func WriteIntervals(w io.Writer, data []Interval) error {
	return writeAll(w, data)
}

// WriteIntervalsParquet writes interval records to a Parquet file.
func WriteIntervalsParquet(data []Interval, outputPath string) error {
	return writeFile(outputPath, data)
}

// WriteRunsParquet writes run records to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(outputPath, data)
}

// WriteRowSummariesParquet writes row summaries to a Parquet file.
func WriteRowSummariesParquet(data []RowSummary, outputPath string) error {
	return writeFile(outputPath, data)
}

// ReadIntervalsParquet reads interval records back from a Parquet file.
func ReadIntervalsParquet(path string) ([]Interval, error) {
	return parquet.ReadFile[Interval](path)
}

func writeFile[T any](outputPath string, data []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeAll(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeAll infers the schema from the struct tags of T.
func writeAll[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
