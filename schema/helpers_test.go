package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSlotStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected SlotStatus
	}{
		{"", ""},
		{"  ", ""},
		{"running", InProgressStatus},
		{"In_Progress", InProgressStatus},
		{"执行中", InProgressStatus},
		{"执行完成", CompletedStatus},
		{"done", CompletedStatus},
		{"待执行", PendingStatus},
		{"paused", OtherStatus},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSlotStatus(tt.raw))
		})
	}
}

func TestDateRange(t *testing.T) {
	t.Run("inclusive span across a month boundary", func(t *testing.T) {
		assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, DateRange("2024-02-28", "2024-03-01"))
	})

	t.Run("single day", func(t *testing.T) {
		assert.Equal(t, []string{"2024-03-10"}, DateRange("2024-03-10", "2024-03-10"))
	})

	t.Run("reversed bounds", func(t *testing.T) {
		assert.Nil(t, DateRange("2024-03-12", "2024-03-10"))
	})

	t.Run("bad input", func(t *testing.T) {
		assert.Nil(t, DateRange("03/10/2024", "2024-03-10"))
	})

	t.Run("bounded by MaxSpanDays", func(t *testing.T) {
		assert.Len(t, DateRange("2024-01-01", "2024-12-31"), 366)
		assert.Len(t, DateRange("2024-01-01", "2025-01-01"), MaxSpanDays+1)
		assert.Nil(t, DateRange("2024-01-01", "2025-01-02"))
		assert.Nil(t, DateRange("0001-01-01", "9999-12-31"))
	})
}

func TestDaysBetween(t *testing.T) {
	days, ok := DaysBetween("2024-02-28", "2024-03-01")
	assert.True(t, ok)
	assert.Equal(t, 2, days)

	days, ok = DaysBetween("2024-03-12", "2024-03-10")
	assert.True(t, ok)
	assert.Equal(t, -2, days)

	days, ok = DaysBetween("0001-01-01", "9999-12-31")
	assert.True(t, ok)
	assert.Equal(t, 3652058, days)

	_, ok = DaysBetween("2024-03-10", "tomorrow")
	assert.False(t, ok)
}

func TestDateOfKeepsWrittenDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2024, 3, 10, 0, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-10", DateOf(ts))
	assert.Equal(t, "2024-03-09", DateOf(ts.UTC()))
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "", FormatMinute(nil))
	ts := time.Date(2024, 3, 10, 9, 5, 59, 0, time.UTC)
	assert.Equal(t, "2024-03-10T09:05", FormatMinute(&ts))
}
