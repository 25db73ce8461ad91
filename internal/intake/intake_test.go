package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upec/tracklane/schema"
)

var utcOpts = Options{Location: time.UTC}

func mustDecode(t *testing.T, doc string, format schema.InputFormat, opts Options) Result {
	t.Helper()
	res, err := Decode(strings.NewReader(doc), format, opts)
	require.NoError(t, err)
	return res
}

func TestDecodeJSONTaskList(t *testing.T) {
	doc := `[
	  {"taskNo": "T-001", "timeslots": [
	    {"id": 1, "startTime": "2024-03-10T09:00:00", "endTime": "2024-03-10T10:00:00",
	     "procedure": {"procedureNo": 10, "procedureName": "Cutting", "status": "执行中"}},
	    {"id": "2", "startTime": "2024-03-10T09:30", "groupKey": "G"}
	  ]},
	  {"taskKey": "T-002", "intervals": []}
	]`
	res := mustDecode(t, doc, schema.JSONIn, utcOpts)
	require.Len(t, res.Tasks, 2)
	assert.Empty(t, res.Warnings)

	first := res.Tasks[0]
	assert.Equal(t, "T-001", first.TaskKey)
	require.Len(t, first.Intervals, 2)
	assert.Equal(t, "1", first.Intervals[0].ID)
	assert.Equal(t, "10", first.Intervals[0].GroupKey)
	assert.Equal(t, "Cutting", first.Intervals[0].Label)
	assert.Equal(t, schema.InProgressStatus, first.Intervals[0].Status)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), *first.Intervals[0].StartTime)
	assert.Equal(t, "G", first.Intervals[1].GroupKey)
	assert.Nil(t, first.Intervals[1].EndTime)

	assert.Equal(t, "T-002", res.Tasks[1].TaskKey)
	assert.Empty(t, res.Tasks[1].Intervals)
	assert.Equal(t, 2, res.IntervalCount())
}

func TestDecodeJSONEnvelope(t *testing.T) {
	doc := `{"content": [{"taskNo": 42, "timeslots": [{"id": 7, "startTime": null}]}], "totalElements": 1}`
	res := mustDecode(t, doc, schema.AutoIn, utcOpts)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "42", res.Tasks[0].TaskKey)
	assert.Nil(t, res.Tasks[0].Intervals[0].StartTime)
}

func TestDecodeYAML(t *testing.T) {
	doc := `
tasks:
  - taskKey: T-9
    intervals:
      - id: 5
        startTime: 2024-03-10T22:00:00Z
        endTime: "2024-03-11 02:00"
        groupKey: 20
        status: completed
`
	res := mustDecode(t, doc, schema.YAMLIn, utcOpts)
	require.Len(t, res.Tasks, 1)
	iv := res.Tasks[0].Intervals[0]
	assert.Equal(t, "5", iv.ID)
	assert.Equal(t, "20", iv.GroupKey)
	assert.Equal(t, schema.CompletedStatus, iv.Status)
	assert.Equal(t, time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC), *iv.StartTime)
	assert.Equal(t, time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC), *iv.EndTime)
}

func TestDecodeYAMLList(t *testing.T) {
	doc := "- taskNo: A\n  timeslots:\n    - id: x\n"
	res := mustDecode(t, doc, schema.AutoIn, utcOpts)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "A", res.Tasks[0].TaskKey)
}

func TestDecodeCSV(t *testing.T) {
	doc := "task_no,id,start_time,end_time,group_key,status\n" +
		"T1,1,2024-03-10T09:00,2024-03-10T10:00,P10,pending\n" +
		"T2,2,2024-03-11T09:00,,P20,\n" +
		"T1,3,,,,\n"
	res := mustDecode(t, doc, schema.AutoIn, utcOpts)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "T1", res.Tasks[0].TaskKey)
	require.Len(t, res.Tasks[0].Intervals, 2)
	assert.Equal(t, "3", res.Tasks[0].Intervals[1].ID)
	assert.Equal(t, schema.PendingStatus, res.Tasks[0].Intervals[0].Status)
	assert.Equal(t, "T2", res.Tasks[1].TaskKey)
}

func TestDecodeCSVRequiresTaskColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("id,start_time\n1,2024-03-10\n"), schema.CSVIn, utcOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_no")
}

func TestDecodeMalformedDocument(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"taskNo": "T1", "timeslots": {}`), schema.JSONIn, utcOpts)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`[]`), "xml", utcOpts)
	assert.Error(t, err)
}

func TestDecodeEmptyDocument(t *testing.T) {
	res := mustDecode(t, "", schema.AutoIn, utcOpts)
	assert.Empty(t, res.Tasks)
}

func TestUnparseableTimestampBecomesAbsent(t *testing.T) {
	doc := `[{"taskNo": "T1", "timeslots": [{"id": "1", "startTime": "soon", "endTime": "2024-03-10T10:00"}]}]`
	res := mustDecode(t, doc, schema.JSONIn, utcOpts)
	iv := res.Tasks[0].Intervals[0]
	assert.Nil(t, iv.StartTime)
	require.NotNil(t, iv.EndTime)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "startTime", res.Warnings[0].Field)
	assert.Contains(t, res.Warnings[0].Error(), `"soon"`)
}

func TestOverlongRangeIsReported(t *testing.T) {
	doc := `[{"taskNo": "T1", "timeslots": [
	  {"id": "1", "startTime": "1900-01-01T00:00", "endTime": "9999-12-31T00:00"},
	  {"id": "2", "startTime": "2024-01-01T08:00", "endTime": "2025-01-01T08:00"}
	]}]`
	res := mustDecode(t, doc, schema.JSONIn, utcOpts)

	iv := res.Tasks[0].Intervals[0]
	require.NotNil(t, iv.StartTime, "times are kept")
	require.NotNil(t, iv.EndTime)
	require.Len(t, res.Warnings, 1, "a range of MaxSpanDays is still expanded")
	w := res.Warnings[0]
	assert.Equal(t, "1", w.IntervalID)
	assert.Equal(t, "endTime", w.Field)
	assert.Equal(t, "9999-12-31T00:00", w.Value)
	assert.Contains(t, w.Error(), "only the endpoint dates are bucketed")
}

func TestMissingIDsAreDerived(t *testing.T) {
	doc := `[{"taskNo": "T1", "timeslots": [{"startTime": "2024-03-10T09:00"}, {}]}]`
	first := mustDecode(t, doc, schema.JSONIn, utcOpts)
	second := mustDecode(t, doc, schema.JSONIn, utcOpts)

	ids := first.Tasks[0].Intervals
	assert.NotEmpty(t, ids[0].ID)
	assert.NotEqual(t, ids[0].ID, ids[1].ID)
	assert.Equal(t, ids[0].ID, second.Tasks[0].Intervals[0].ID, "derived ids are stable")
	assert.Equal(t, DeriveID("T1", 0), ids[0].ID)
}

func TestMissingTaskKey(t *testing.T) {
	res := mustDecode(t, `[{"timeslots": []}, {"timeslots": []}]`, schema.JSONIn, utcOpts)
	assert.Equal(t, "task-1", res.Tasks[0].TaskKey)
	assert.Equal(t, "task-2", res.Tasks[1].TaskKey)
}

func TestPlanFallback(t *testing.T) {
	doc := `[{"taskNo": "T1", "planStartDate": "2024-03-01", "planEndDate": "2024-03-05", "timeslots": [
	  {"id": "1", "procedure": {"planStartDate": "2024-03-02T08:00", "planEndDate": "2024-03-02T12:00"}},
	  {"id": "2"},
	  {"id": "3", "startTime": "2024-03-03T08:00"}
	]}]`

	t.Run("disabled", func(t *testing.T) {
		res := mustDecode(t, doc, schema.JSONIn, utcOpts)
		assert.Nil(t, res.Tasks[0].Intervals[0].StartTime)
		assert.False(t, res.Tasks[0].Intervals[0].Planned)
	})

	t.Run("enabled", func(t *testing.T) {
		res := mustDecode(t, doc, schema.JSONIn, Options{Location: time.UTC, PlanFallback: true})
		ivs := res.Tasks[0].Intervals

		assert.True(t, ivs[0].Planned)
		assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), *ivs[0].StartTime)

		assert.True(t, ivs[1].Planned, "falls through to the task plan")
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *ivs[1].EndTime)

		assert.False(t, ivs[2].Planned, "own times win")
		assert.Nil(t, ivs[2].EndTime)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slots.yml")
	require.NoError(t, os.WriteFile(path, []byte("- taskNo: Y\n  timeslots: [{id: a}]\n"), 0o644))

	res, err := LoadFile(path, schema.AutoIn, utcOpts)
	require.NoError(t, err)
	assert.Equal(t, "Y", res.Tasks[0].TaskKey)

	_, err = LoadFile(filepath.Join(dir, "missing.json"), schema.AutoIn, utcOpts)
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, schema.JSONIn, FormatFromPath("a.JSON"))
	assert.Equal(t, schema.YAMLIn, FormatFromPath("a.yaml"))
	assert.Equal(t, schema.CSVIn, FormatFromPath("a.csv"))
	assert.Equal(t, schema.AutoIn, FormatFromPath("a.txt"))
}

func TestSniffFormat(t *testing.T) {
	assert.Equal(t, schema.JSONIn, sniffFormat([]byte("  [1]")))
	assert.Equal(t, schema.CSVIn, sniffFormat([]byte("task_no,id\nT,1")))
	assert.Equal(t, schema.YAMLIn, sniffFormat([]byte("tasks:\n  - taskKey: a")))
}
