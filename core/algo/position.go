package algo

import (
	"time"

	"github.com/upec/tracklane/schema"
)

// ComputeWindow spans the earliest start and the latest end of the intervals.
// Intervals with a start contribute their effective end; intervals with only
// an end still push the window end out. With no start at all the window opens
// at now. A window that would be empty is widened to FallbackSpan.
func ComputeWindow(intervals []*schema.Interval, now time.Time) schema.Window {
	var window schema.Window
	var lastEnd time.Time
	found := false
	for _, iv := range intervals {
		if iv == nil {
			continue
		}
		if !iv.HasStart() {
			if iv.HasEnd() && iv.EndTime.After(lastEnd) {
				lastEnd = *iv.EndTime
			}
			continue
		}
		end := EffectiveEnd(iv)
		if !found {
			window = schema.Window{Start: *iv.StartTime, End: end}
			found = true
			continue
		}
		if iv.StartTime.Before(window.Start) {
			window.Start = *iv.StartTime
		}
		if end.After(window.End) {
			window.End = end
		}
	}
	if !found {
		window = schema.Window{Start: now, End: now}
	}
	if lastEnd.After(window.End) {
		window.End = lastEnd
	}
	if window.Span() <= 0 {
		window.End = window.Start.Add(schema.FallbackSpan)
	}
	return window
}

// Position returns the left offset and width of an interval as percentages of
// the window. Intervals without a start fill the whole width.
func Position(iv *schema.Interval, window schema.Window) (leftPct, widthPct float64) {
	span := window.Span()
	if !iv.HasStart() || span <= 0 {
		return 0, 100
	}
	left := float64(iv.StartTime.Sub(window.Start)) / float64(span) * 100
	width := float64(EffectiveEnd(iv).Sub(*iv.StartTime)) / float64(span) * 100
	return ClampPosition(left, width)
}

// ClampPosition keeps a bar inside [0, 100] with at least MinWidthPct width.
// A bar pushed past the right edge is shifted left rather than shrunk.
func ClampPosition(left, width float64) (float64, float64) {
	width = min(max(width, schema.MinWidthPct), 100)
	left = min(max(left, 0), 100-width)
	return left, width
}
