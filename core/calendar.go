package core

import (
	"time"

	"github.com/upec/tracklane/core/algo"
	"github.com/upec/tracklane/schema"
)

// BuildCalendar lays out the month containing month as Monday-first ISO weeks.
// Each day holds the intervals that touch it, with today as the fallback date.
func BuildCalendar(month time.Time, intervals []*schema.Interval, now time.Time) schema.CalendarResult {
	if now.IsZero() {
		now = time.Now()
	}
	today := schema.DateOf(now)
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	offset := (int(first.Weekday()) + 6) % 7 // days since Monday
	buckets := algo.BucketByDate(intervals, today)

	result := schema.CalendarResult{
		Month:       first.Format(schema.MonthLayout),
		CurrentDate: today,
	}
	for weekStart := first.AddDate(0, 0, -offset); !weekStart.After(last); weekStart = weekStart.AddDate(0, 0, 7) {
		year, week := weekStart.ISOWeek()
		days := make([]schema.CalendarDay, 7)
		for d := range days {
			day := weekStart.AddDate(0, 0, d)
			date := day.Format(schema.DateLayout)
			members := buckets[date]
			if members == nil {
				members = []*schema.Interval{}
			}
			days[d] = schema.CalendarDay{
				Date:      date,
				InMonth:   day.Month() == first.Month(),
				IsToday:   date == today,
				Intervals: members,
			}
		}
		result.Weeks = append(result.Weeks, schema.CalendarWeek{ISOYear: year, ISOWeek: week, Days: days})
	}
	return result
}
