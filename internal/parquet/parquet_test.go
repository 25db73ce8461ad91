package parquet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upec/tracklane/schema"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"interval", new(Interval), []string{"task_key", "track", "id", "group_key", "status", "start_time", "end_time", "left_pct", "width_pct", "color", "planned"}},
		{"run", new(Run), []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_tasks", "total_intervals", "total_tracks", "total_dates", "config_params"}},
		{"row summary", new(RowSummary), []string{"run_id", "task_key", "intervals", "tracks", "dates", "first_date", "last_date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestConvertIntervalRows(t *testing.T) {
	rows := []schema.IntervalRow{
		{TaskKey: "T1", Track: 1, ID: "a", GroupKey: "P10", Status: "completed", StartTime: "2024-03-10T08:00", EndTime: "2024-03-10T10:00", LeftPct: 0, WidthPct: 50, Color: "#e6f7ff"},
		{TaskKey: "T1", Track: 0, ID: "b", Status: "pending", Planned: true},
	}
	got := ConvertIntervalRows(rows)
	require.Len(t, got, 2)

	assert.Equal(t, int32(1), got[0].Track)
	require.NotNil(t, got[0].StartTime)
	assert.Equal(t, "2024-03-10T08:00", *got[0].StartTime)
	assert.Equal(t, 50.0, got[0].WidthPct)

	assert.Nil(t, got[1].StartTime, "empty times become nulls")
	assert.Nil(t, got[1].EndTime)
	assert.True(t, got[1].Planned)
}

func TestWriteAndReadIntervals(t *testing.T) {
	start := "2024-03-10T08:00"
	data := []Interval{
		{TaskKey: "T1", Track: 0, ID: "a", GroupKey: "P10", Status: "completed", StartTime: &start, LeftPct: 10, WidthPct: 25, Color: "#fff7e6"},
		{TaskKey: "T2", Track: 2, ID: "b", Status: "other", WidthPct: 100},
	}

	path := filepath.Join(t.TempDir(), "layout.parquet")
	require.NoError(t, WriteIntervalsParquet(data, path))

	read, err := ReadIntervalsParquet(path)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "T1", read[0].TaskKey)
	require.NotNil(t, read[0].StartTime)
	assert.Equal(t, start, *read[0].StartTime)
	assert.Nil(t, read[1].StartTime)
	assert.Equal(t, int32(2), read[1].Track)
	assert.Equal(t, 100.0, read[1].WidthPct)
}

func TestWriteIntervalsToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIntervals(&buf, []Interval{{TaskKey: "T1", ID: "a", WidthPct: 1}}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PAR1")), "parquet magic header")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("PAR1")), "parquet magic footer")
}

func TestRunAndRowExports(t *testing.T) {
	dir := t.TempDir()
	startTime := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	endTime := startTime.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"strategy":"hash"}`
	first, last := "2024-03-10", "2024-03-12"

	runs := ConvertRunRecords([]schema.RunRecord{
		{RunID: 1, StartTime: startTime, EndTime: &endTime, RunDurationMs: &duration, TotalTasks: 2, TotalIntervals: 5, TotalTracks: 3, TotalDates: 3, ConfigParams: &params},
		{RunID: 2, StartTime: startTime.Add(time.Hour)},
	})
	rows := ConvertRowSummaryRecords([]schema.RowSummaryRecord{
		{RunID: 1, TaskKey: "T1", Intervals: 3, Tracks: 2, Dates: 3, FirstDate: &first, LastDate: &last},
	})

	runsFile := filepath.Join(dir, "runs.parquet")
	rowsFile := filepath.Join(dir, "rows.parquet")
	require.NoError(t, WriteRunsParquet(runs, runsFile))
	require.NoError(t, WriteRowSummariesParquet(rows, rowsFile))

	readRuns, err := parquet.ReadFile[Run](runsFile)
	require.NoError(t, err)
	require.Len(t, readRuns, 2)
	assert.Equal(t, int64(1), readRuns[0].RunID)
	assert.Equal(t, int32(5), readRuns[0].TotalIntervals)
	require.NotNil(t, readRuns[0].RunDurationMs)
	assert.Equal(t, duration, *readRuns[0].RunDurationMs)
	assert.Nil(t, readRuns[1].EndTime)
	assert.Nil(t, readRuns[1].ConfigParams)

	readRows, err := parquet.ReadFile[RowSummary](rowsFile)
	require.NoError(t, err)
	require.Len(t, readRows, 1)
	assert.Equal(t, "T1", readRows[0].TaskKey)
	require.NotNil(t, readRows[0].LastDate)
	assert.Equal(t, last, *readRows[0].LastDate)
}

func TestWriteFileFailsOnBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.parquet")
	err := WriteIntervalsParquet(nil, path)
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
