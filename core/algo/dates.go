package algo

import (
	"slices"

	"github.com/upec/tracklane/schema"
)

// IntervalDates returns the sorted calendar dates an interval touches.
//
//   - both times, in order: every date from the start date to the end date
//   - both times, inverted: only the two endpoint dates
//   - one time: that time's date
//   - no time: nil
func IntervalDates(iv *schema.Interval) []string {
	switch {
	case iv.HasStart() && iv.HasEnd():
		first, last := schema.DateOf(*iv.StartTime), schema.DateOf(*iv.EndTime)
		if !iv.StartTime.After(*iv.EndTime) {
			if dates := schema.DateRange(first, last); len(dates) > 0 {
				return dates
			}
		}
		if first == last {
			return []string{first}
		}
		return sortedPair(first, last)
	case iv.HasStart():
		return []string{schema.DateOf(*iv.StartTime)}
	case iv.HasEnd():
		return []string{schema.DateOf(*iv.EndTime)}
	default:
		return nil
	}
}

func sortedPair(a, b string) []string {
	if b < a {
		return []string{b, a}
	}
	return []string{a, b}
}

// BucketDates returns the bucket dates of an interval. An interval without any
// time lands on today so it stays visible.
func BucketDates(iv *schema.Interval, today string) []string {
	if dates := IntervalDates(iv); len(dates) > 0 {
		return dates
	}
	return []string{today}
}

// TouchesDate reports whether an interval belongs in the bucket for date.
func TouchesDate(iv *schema.Interval, date, today string) bool {
	return slices.Contains(BucketDates(iv, today), date)
}

// BucketByDate groups intervals under every date they touch. Within a bucket
// intervals keep their input order. Intervals are shared, never copied.
func BucketByDate(intervals []*schema.Interval, today string) schema.DateBuckets {
	buckets := make(schema.DateBuckets)
	for _, iv := range intervals {
		if iv == nil {
			continue
		}
		for _, date := range BucketDates(iv, today) {
			buckets[date] = append(buckets[date], iv)
		}
	}
	return buckets
}

// ExtractDates returns the sorted union of bucket dates across tasks.
// Tasks without intervals add nothing; an empty union yields today alone.
func ExtractDates(tasks []schema.Task, today string) []string {
	seen := make(map[string]struct{})
	for _, task := range tasks {
		for _, iv := range task.Intervals {
			if iv == nil {
				continue
			}
			for _, date := range BucketDates(iv, today) {
				seen[date] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return []string{today}
	}
	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	slices.Sort(dates)
	return dates
}
