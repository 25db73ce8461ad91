// Package schema has models and constants shared by every part of tracklane.
package schema

import "time"

// Interval is one scheduled timeslot. Either timestamp may be absent.
type Interval struct {
	ID        string     `json:"id"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	GroupKey  string     `json:"groupKey,omitempty"`
	Status    SlotStatus `json:"status,omitempty"`
	Label     string     `json:"label,omitempty"`   // procedure name or other display text
	Planned   bool       `json:"planned,omitempty"` // times were borrowed from plan dates
}

// HasStart reports whether the interval has a start time.
func (i *Interval) HasStart() bool { return i.StartTime != nil }

// HasEnd reports whether the interval has an end time.
func (i *Interval) HasEnd() bool { return i.EndTime != nil }

// Group returns the grouping key, substituting DefaultGroupKey when absent.
func (i *Interval) Group() string {
	if i.GroupKey == "" {
		return DefaultGroupKey
	}
	return i.GroupKey
}

// ColorKey returns the key hashed for coloring: the group key, or the id when absent.
func (i *Interval) ColorKey() string {
	if i.GroupKey == "" {
		return i.ID
	}
	return i.GroupKey
}

// RawTaskIntervals is the external input for one task.
type RawTaskIntervals struct {
	TaskKey   string     `json:"taskKey"`
	Intervals []Interval `json:"intervals"`
}

// Task groups the intervals belonging to one task key.
type Task struct {
	TaskKey   string      `json:"taskKey"`
	Intervals []*Interval `json:"intervals"`
}

// PositionedInterval is an interval with its horizontal placement inside a window.
type PositionedInterval struct {
	*Interval
	LeftPct  float64 `json:"leftPct"`
	WidthPct float64 `json:"widthPct"`
	Color    string  `json:"color,omitempty"`
}

// Track is one horizontal lane of mutually non-overlapping intervals.
type Track struct {
	Index     int                  `json:"index"`
	Intervals []PositionedInterval `json:"intervals"`
}

// Window is the time range that percentages are relative to.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Span returns the window length.
func (w Window) Span() time.Duration { return w.End.Sub(w.Start) }

// TimelineRow is the rendering model for one task.
type TimelineRow struct {
	TaskKey string                 `json:"taskKey"`
	PerDate map[string][]*Interval `json:"perDate"`
	Tracks  []Track                `json:"tracks"`
	Window  *Window                `json:"window,omitempty"`
	Colors  map[string]string      `json:"colors"`
}

// TimelineResult is the full rendering model.
type TimelineResult struct {
	CurrentDate string        `json:"currentDate"`
	DateColumns []string      `json:"dateColumns"`
	Rows        []TimelineRow `json:"rows"`
	Strategy    ColorStrategy `json:"colorStrategy"`
}

// TrackCount returns the total number of tracks across rows.
func (r TimelineResult) TrackCount() int {
	total := 0
	for _, row := range r.Rows {
		total += len(row.Tracks)
	}
	return total
}

// IntervalCount returns the total number of intervals across rows.
func (r TimelineResult) IntervalCount() int {
	total := 0
	for _, row := range r.Rows {
		for _, track := range row.Tracks {
			total += len(track.Intervals)
		}
	}
	return total
}

// DateBuckets maps a calendar date to the intervals touching it.
type DateBuckets map[string][]*Interval

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date      string      `json:"date"`
	InMonth   bool        `json:"inMonth"`
	IsToday   bool        `json:"isToday"`
	Intervals []*Interval `json:"intervals"`
}

// CalendarWeek is a Monday-first row of seven days.
type CalendarWeek struct {
	ISOYear int           `json:"isoYear"`
	ISOWeek int           `json:"isoWeek"`
	Days    []CalendarDay `json:"days"`
}

// CalendarResult is a month laid out as ISO weeks.
type CalendarResult struct {
	Month       string         `json:"month"`
	CurrentDate string         `json:"currentDate"`
	Weeks       []CalendarWeek `json:"weeks"`
}

// ColorResult reports the palette slot chosen for a key.
type ColorResult struct {
	Key      string        `json:"key"`
	Strategy ColorStrategy `json:"strategy"`
	Index    int           `json:"index"`
	Color    string        `json:"color"`
}
