package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upec/tracklane/schema"
)

func at(s string) *time.Time {
	t, err := time.Parse(schema.MinuteLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func slot(id, start, end string) schema.Interval {
	iv := schema.Interval{ID: id}
	if start != "" {
		iv.StartTime = at(start)
	}
	if end != "" {
		iv.EndTime = at(end)
	}
	return iv
}

func task(key string, intervals ...schema.Interval) schema.RawTaskIntervals {
	if intervals == nil {
		intervals = []schema.Interval{}
	}
	return schema.RawTaskIntervals{TaskKey: key, Intervals: intervals}
}

func testOptions() BuildOptions {
	return BuildOptions{
		Now:         *at("2024-03-10T12:00"),
		Strategy:    schema.HashColors,
		PaletteSize: 8,
		Window:      schema.TaskWindow,
		Workers:     4,
	}
}

func trackIDs(row schema.TimelineRow) [][]string {
	ids := make([][]string, len(row.Tracks))
	for i, track := range row.Tracks {
		for _, p := range track.Intervals {
			ids[i] = append(ids[i], p.ID)
		}
	}
	return ids
}

func TestBuildTouchingIntervalsShareTrack(t *testing.T) {
	raw := []schema.RawTaskIntervals{task("T1",
		slot("1", "2024-03-10T09:00", "2024-03-10T10:00"),
		slot("2", "2024-03-10T09:30", "2024-03-10T10:30"),
		slot("3", "2024-03-10T10:00", "2024-03-10T11:00"),
	)}

	result := Build(raw, testOptions())
	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, [][]string{{"1", "3"}, {"2"}}, trackIDs(row))

	require.NotNil(t, row.Window)
	assert.Equal(t, 2*time.Hour, row.Window.Span())
	first := row.Tracks[0].Intervals
	assert.InDelta(t, 0.0, first[0].LeftPct, 1e-9)
	assert.InDelta(t, 50.0, first[0].WidthPct, 1e-9)
	assert.InDelta(t, 50.0, first[1].LeftPct, 1e-9)
	assert.InDelta(t, 25.0, row.Tracks[1].Intervals[0].LeftPct, 1e-9)
}

func TestBuildOvernightIntervalBucketsBothDates(t *testing.T) {
	raw := []schema.RawTaskIntervals{task("T1", slot("4", "2024-01-01T23:00", "2024-01-02T01:00"))}

	result := Build(raw, testOptions())
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, result.DateColumns)
	row := result.Rows[0]
	require.Len(t, row.PerDate["2024-01-01"], 1)
	require.Len(t, row.PerDate["2024-01-02"], 1)
	assert.Same(t, row.PerDate["2024-01-01"][0], row.PerDate["2024-01-02"][0], "buckets share the interval")
}

func TestBuildUnscheduledIntervalFallsOnToday(t *testing.T) {
	raw := []schema.RawTaskIntervals{task("T1", slot("5", "", ""))}

	result := Build(raw, testOptions())
	assert.Equal(t, "2024-03-10", result.CurrentDate)
	assert.Equal(t, []string{"2024-03-10"}, result.DateColumns)
	row := result.Rows[0]
	assert.Equal(t, "5", row.PerDate["2024-03-10"][0].ID)
	require.Len(t, row.Tracks, 1)
	assert.Equal(t, [][]string{{"5"}}, trackIDs(row))
	assert.InDelta(t, 0.0, row.Tracks[0].Intervals[0].LeftPct, 1e-9)
	assert.InDelta(t, 100.0, row.Tracks[0].Intervals[0].WidthPct, 1e-9)
}

func TestBuildEmptyTask(t *testing.T) {
	result := Build([]schema.RawTaskIntervals{task("empty")}, testOptions())
	assert.Equal(t, []string{"2024-03-10"}, result.DateColumns)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Empty(t, row.Tracks)
	assert.NotNil(t, row.Tracks)
	assert.Nil(t, row.Window)
	assert.Empty(t, row.PerDate["2024-03-10"])
	assert.NotNil(t, row.PerDate["2024-03-10"], "every date column has a bucket")
}

func TestBuildNoTasks(t *testing.T) {
	result := Build(nil, testOptions())
	assert.Equal(t, []string{"2024-03-10"}, result.DateColumns)
	assert.Empty(t, result.Rows)
	assert.Equal(t, schema.HashColors, result.Strategy)
}

func TestBuildEveryRowHasEveryColumn(t *testing.T) {
	raw := []schema.RawTaskIntervals{
		task("T1", slot("a", "2024-03-08T08:00", "2024-03-08T09:00")),
		task("T2", slot("b", "2024-03-12T08:00", "2024-03-12T09:00")),
	}
	result := Build(raw, testOptions())
	assert.Equal(t, []string{"2024-03-08", "2024-03-12"}, result.DateColumns)
	for _, row := range result.Rows {
		assert.Len(t, row.PerDate, 2, row.TaskKey)
	}
	assert.Empty(t, result.Rows[0].PerDate["2024-03-12"])
	assert.Len(t, result.Rows[1].PerDate["2024-03-12"], 1)
}

func TestBuildInvertedIntervalUsesEndpointDates(t *testing.T) {
	raw := []schema.RawTaskIntervals{task("T1", slot("x", "2024-03-12T08:00", "2024-03-10T08:00"))}
	result := Build(raw, testOptions())
	assert.Equal(t, []string{"2024-03-10", "2024-03-12"}, result.DateColumns, "the day between is skipped")

	p := result.Rows[0].Tracks[0].Intervals[0]
	assert.InDelta(t, 1.0, p.WidthPct, 1e-9, "an inverted interval collapses to the minimum width")
}

func TestBuildMergesTasksWithSameKey(t *testing.T) {
	raw := []schema.RawTaskIntervals{
		task("T1", slot("a", "2024-03-10T08:00", "2024-03-10T09:00")),
		task("T2", slot("b", "2024-03-10T08:00", "2024-03-10T09:00")),
		task("T1", slot("c", "2024-03-10T08:30", "2024-03-10T09:30")),
	}
	result := Build(raw, testOptions())
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "T1", result.Rows[0].TaskKey)
	assert.Equal(t, "T2", result.Rows[1].TaskKey)
	assert.Equal(t, [][]string{{"a"}, {"c"}}, trackIDs(result.Rows[0]))
}

func TestBuildSharedWindow(t *testing.T) {
	raw := []schema.RawTaskIntervals{
		task("T1", slot("a", "2024-03-10T08:00", "2024-03-10T10:00")),
		task("T2", slot("b", "2024-03-10T10:00", "2024-03-10T12:00")),
	}
	opts := testOptions()

	perTask := Build(raw, opts)
	assert.InDelta(t, 100.0, perTask.Rows[1].Tracks[0].Intervals[0].WidthPct, 1e-9)

	opts.Window = schema.SharedWindow
	shared := Build(raw, opts)
	assert.Equal(t, *shared.Rows[0].Window, *shared.Rows[1].Window)
	b := shared.Rows[1].Tracks[0].Intervals[0]
	assert.InDelta(t, 50.0, b.LeftPct, 1e-9)
	assert.InDelta(t, 50.0, b.WidthPct, 1e-9)
}

func TestBuildColorsFollowGroupKey(t *testing.T) {
	a := slot("a", "2024-03-10T08:00", "2024-03-10T09:00")
	a.GroupKey = "P10"
	b := slot("b", "2024-03-11T08:00", "2024-03-11T09:00")
	b.GroupKey = "P10"
	c := slot("c", "2024-03-11T08:00", "2024-03-11T09:00")

	result := Build([]schema.RawTaskIntervals{task("T1", a), task("T2", b, c)}, testOptions())
	assert.Equal(t, result.Rows[0].Colors["P10"], result.Rows[1].Colors["P10"])
	assert.Contains(t, result.Rows[1].Colors, "c", "an interval without a group key is colored by id")
	assert.Len(t, result.Rows[1].Colors, 2)
}

func TestBuildIsDeterministic(t *testing.T) {
	var raw []schema.RawTaskIntervals
	for i := range 20 {
		raw = append(raw, task(
			string(rune('A'+i)),
			slot("x", "2024-03-10T08:00", "2024-03-10T10:00"),
			slot("y", "2024-03-10T09:00", "2024-03-10T11:00"),
			slot("z", "2024-03-10T09:30", ""),
		))
	}
	opts := testOptions()
	first, err := json.Marshal(Build(raw, opts))
	require.NoError(t, err)
	for _, workers := range []int{1, 3, 16} {
		opts.Workers = workers
		again, err := json.Marshal(Build(raw, opts))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(again), "workers=%d", workers)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	raw := []schema.RawTaskIntervals{task("T1", slot("a", "2024-03-10T08:00", "2024-03-10T09:00"))}
	before, err := json.Marshal(raw)
	require.NoError(t, err)

	_ = Build(raw, testOptions())

	after, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestGroupTasks(t *testing.T) {
	tasks := GroupTasks([]schema.RawTaskIntervals{
		task("T2", slot("a", "", "")),
		task("T1"),
		task("T2", slot("b", "", "")),
	})
	require.Len(t, tasks, 2)
	assert.Equal(t, "T2", tasks[0].TaskKey)
	assert.Len(t, tasks[0].Intervals, 2)
	assert.Equal(t, "T1", tasks[1].TaskKey)
	assert.NotNil(t, tasks[1].Intervals)
}
