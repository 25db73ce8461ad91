package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upec/tracklane/schema"
)

func TestBuildCalendarMarch2024(t *testing.T) {
	a := slot("a", "2024-03-10T22:00", "2024-03-11T02:00")
	b := slot("b", "", "")
	c := slot("c", "2024-04-01T09:00", "2024-04-01T10:00")
	now := *at("2024-03-10T12:00")

	result := BuildCalendar(now, []*schema.Interval{&a, &b, &c}, now)
	assert.Equal(t, "2024-03", result.Month)
	assert.Equal(t, "2024-03-10", result.CurrentDate)
	require.Len(t, result.Weeks, 5)

	first := result.Weeks[0]
	assert.Equal(t, 2024, first.ISOYear)
	assert.Equal(t, 9, first.ISOWeek)
	assert.Equal(t, "2024-02-26", first.Days[0].Date)
	assert.False(t, first.Days[3].InMonth)
	assert.True(t, first.Days[4].InMonth, "March 1st is a Friday")

	last := result.Weeks[4]
	assert.Equal(t, 13, last.ISOWeek)
	assert.Equal(t, "2024-03-31", last.Days[6].Date)

	sunday := result.Weeks[1].Days[6]
	assert.Equal(t, "2024-03-10", sunday.Date)
	assert.True(t, sunday.IsToday)
	assert.Equal(t, []string{"a", "b"}, calendarIDs(sunday), "timeless intervals land on today")

	monday := result.Weeks[2].Days[0]
	assert.False(t, monday.IsToday)
	assert.Equal(t, []string{"a"}, calendarIDs(monday))

	for _, week := range result.Weeks {
		for _, day := range week.Days {
			assert.NotNil(t, day.Intervals, day.Date)
			assert.NotContains(t, calendarIDs(day), "c", "April intervals stay outside the grid")
		}
	}
}

func TestBuildCalendarMonthStartingMonday(t *testing.T) {
	month := *at("2024-04-15T00:00")
	result := BuildCalendar(month, nil, *at("2024-03-10T12:00"))

	assert.Equal(t, "2024-04", result.Month)
	require.Len(t, result.Weeks, 5)
	assert.Equal(t, "2024-04-01", result.Weeks[0].Days[0].Date)
	assert.Equal(t, "2024-05-05", result.Weeks[4].Days[6].Date)
	assert.False(t, result.Weeks[4].Days[6].InMonth)
	for _, week := range result.Weeks {
		for _, day := range week.Days {
			assert.False(t, day.IsToday)
		}
	}
}

func calendarIDs(day schema.CalendarDay) []string {
	var ids []string
	for _, iv := range day.Intervals {
		ids = append(ids, iv.ID)
	}
	return ids
}
