package schema

import "time"

// RunTotals summarizes a finished layout run.
type RunTotals struct {
	Tasks     int
	Intervals int
	Tracks    int
	Dates     int
}

// RowSummary holds the per-task numbers recorded for a run.
type RowSummary struct {
	TaskKey   string
	Intervals int
	Tracks    int
	Dates     int
	FirstDate string
	LastDate  string
}

// RunRecord represents a row from the tracklane_runs table.
type RunRecord struct {
	RunID          int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalTasks     int32
	TotalIntervals int32
	TotalTracks    int32
	TotalDates     int32
	ConfigParams   *string
}

// RowSummaryRecord represents a row from the tracklane_rows table.
type RowSummaryRecord struct {
	RunID     int64
	TaskKey   string
	Intervals int32
	Tracks    int32
	Dates     int32
	FirstDate *string
	LastDate  *string
}
