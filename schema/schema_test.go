package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalKeys(t *testing.T) {
	t.Run("group key present", func(t *testing.T) {
		iv := Interval{ID: "7", GroupKey: "P10"}
		assert.Equal(t, "P10", iv.Group())
		assert.Equal(t, "P10", iv.ColorKey())
	})

	t.Run("group key absent", func(t *testing.T) {
		iv := Interval{ID: "7"}
		assert.Equal(t, DefaultGroupKey, iv.Group())
		assert.Equal(t, "7", iv.ColorKey())
	})
}

func TestPositionedIntervalJSONIsFlat(t *testing.T) {
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	p := PositionedInterval{
		Interval: &Interval{ID: "1", StartTime: &start, GroupKey: "A"},
		LeftPct:  25,
		WidthPct: 50,
		Color:    "#e6f7ff",
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "1", decoded["id"])
	assert.Equal(t, "A", decoded["groupKey"])
	assert.InDelta(t, 25.0, decoded["leftPct"], 0.0001)
	assert.NotContains(t, decoded, "endTime")
}

func TestTimelineResultCounts(t *testing.T) {
	iv := &Interval{ID: "1"}
	result := TimelineResult{
		Rows: []TimelineRow{
			{TaskKey: "T1", Tracks: []Track{
				{Index: 0, Intervals: []PositionedInterval{{Interval: iv}, {Interval: iv}}},
				{Index: 1, Intervals: []PositionedInterval{{Interval: iv}}},
			}},
			{TaskKey: "T2"},
		},
	}
	assert.Equal(t, 2, result.TrackCount())
	assert.Equal(t, 3, result.IntervalCount())
	assert.Len(t, FlattenTimeline(result), 3)
}

func TestWindowSpan(t *testing.T) {
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(90 * time.Minute)}
	assert.Equal(t, 90*time.Minute, w.Span())
}
