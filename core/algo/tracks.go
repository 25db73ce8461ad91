// Package algo holds the pure layout algorithms: track packing, positioning,
// date bucketing and color assignment. Nothing here performs I/O.
package algo

import (
	"cmp"
	"slices"
	"time"

	"github.com/upec/tracklane/schema"
)

// EffectiveEnd returns the end used for overlap tests. A missing end means
// start plus DefaultDuration; an end before the start collapses onto the start.
// The interval must have a start time.
func EffectiveEnd(iv *schema.Interval) time.Time {
	start := *iv.StartTime
	if iv.EndTime == nil {
		return start.Add(schema.DefaultDuration)
	}
	if iv.EndTime.Before(start) {
		return start
	}
	return *iv.EndTime
}

// Overlaps reports whether two intervals share any instant. Intervals without
// a start time never overlap anything.
func Overlaps(a, b *schema.Interval) bool {
	if !a.HasStart() || !b.HasStart() {
		return false
	}
	return a.StartTime.Before(EffectiveEnd(b)) && b.StartTime.Before(EffectiveEnd(a))
}

// SortForLayout returns a copy ordered by start time, then effective end.
// Intervals without a start go last in their input order.
func SortForLayout(intervals []*schema.Interval) []*schema.Interval {
	sorted := make([]*schema.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv != nil {
			sorted = append(sorted, iv)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *schema.Interval) int {
		switch {
		case a.HasStart() && !b.HasStart():
			return -1
		case !a.HasStart() && b.HasStart():
			return 1
		case !a.HasStart():
			return 0
		}
		if c := a.StartTime.Compare(*b.StartTime); c != 0 {
			return c
		}
		return EffectiveEnd(a).Compare(EffectiveEnd(b))
	})
	return sorted
}

// lane is a track under construction.
type lane struct {
	end      time.Time
	reserved bool
	members  []*schema.Interval
}

// PackTracks greedily packs intervals into the fewest lanes it can find in one
// pass. Each interval joins the first lane whose last end is not after its
// start. An interval without a start gets a reserved lane of its own.
func PackTracks(intervals []*schema.Interval) [][]*schema.Interval {
	var lanes []*lane
	for _, iv := range SortForLayout(intervals) {
		if !iv.HasStart() {
			lanes = append(lanes, &lane{reserved: true, members: []*schema.Interval{iv}})
			continue
		}
		placed := false
		for _, l := range lanes {
			if l.reserved || iv.StartTime.Before(l.end) {
				continue
			}
			l.members = append(l.members, iv)
			l.end = EffectiveEnd(iv)
			placed = true
			break
		}
		if !placed {
			lanes = append(lanes, &lane{end: EffectiveEnd(iv), members: []*schema.Interval{iv}})
		}
	}

	packed := make([][]*schema.Interval, len(lanes))
	for i, l := range lanes {
		packed[i] = l.members
	}
	return packed
}

// AssignTracks packs intervals into tracks and positions every member inside
// the window. The input slice is not modified.
func AssignTracks(intervals []*schema.Interval, window schema.Window) []schema.Track {
	lanes := PackTracks(intervals)
	tracks := make([]schema.Track, len(lanes))
	for i, members := range lanes {
		positioned := make([]schema.PositionedInterval, len(members))
		for j, iv := range members {
			left, width := Position(iv, window)
			positioned[j] = schema.PositionedInterval{Interval: iv, LeftPct: left, WidthPct: width}
		}
		tracks[i] = schema.Track{Index: i, Intervals: positioned}
	}
	return tracks
}

// MaxConcurrency returns the size of the largest set of mutually overlapping
// intervals. It is the lower bound on the number of tracks any packing needs.
func MaxConcurrency(intervals []*schema.Interval) int {
	// At equal instants closes sort before points, and points before opens.
	const (
		closeEdge = iota
		pointEdge
		openEdge
	)
	type edge struct {
		at   time.Time
		kind int
	}
	var edges []edge
	for _, iv := range intervals {
		if iv == nil || !iv.HasStart() {
			continue
		}
		end := EffectiveEnd(iv)
		if end.Equal(*iv.StartTime) {
			edges = append(edges, edge{end, pointEdge})
			continue
		}
		edges = append(edges, edge{*iv.StartTime, openEdge}, edge{end, closeEdge})
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.kind, b.kind)
	})
	current, peak := 0, 0
	for _, e := range edges {
		switch e.kind {
		case openEdge:
			current++
			peak = max(peak, current)
		case closeEdge:
			current--
		case pointEdge:
			peak = max(peak, current+1)
		}
	}
	return peak
}
