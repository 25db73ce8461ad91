package algo

import (
	"slices"

	"github.com/upec/tracklane/schema"
)

// DaySpan returns the clock range of an interval visible inside one date cell,
// such as "22:00 - 24:00" on the first day of an overnight slot. It is empty
// when either timestamp is missing or the interval does not touch the date.
// A slot ending exactly at midnight still touches its end date, but nothing of
// it is visible there, so that cell is empty as well.
func DaySpan(iv *schema.Interval, date string) string {
	if !iv.HasStart() || !iv.HasEnd() {
		return ""
	}
	if !slices.Contains(IntervalDates(iv), date) {
		return ""
	}
	if endsAtMidnightOn(iv, date) {
		return ""
	}
	from, to := "00:00", "24:00"
	if date == schema.DateOf(*iv.StartTime) {
		from = iv.StartTime.Format(schema.ClockLayout)
	}
	if date == schema.DateOf(*iv.EndTime) {
		to = iv.EndTime.Format(schema.ClockLayout)
	}
	return from + " - " + to
}

func endsAtMidnightOn(iv *schema.Interval, date string) bool {
	end := *iv.EndTime
	return date == schema.DateOf(end) &&
		date != schema.DateOf(*iv.StartTime) &&
		end.Hour() == 0 && end.Minute() == 0
}
