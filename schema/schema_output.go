package schema

// IntervalRow is the flat shape of one positioned interval, used for CSV and Parquet.
type IntervalRow struct {
	TaskKey   string
	Track     int
	ID        string
	GroupKey  string
	Status    string
	StartTime string
	EndTime   string
	LeftPct   float64
	WidthPct  float64
	Color     string
	Planned   bool
}

// FlattenTimeline returns one row per positioned interval in row, track, position order.
func FlattenTimeline(result TimelineResult) []IntervalRow {
	var rows []IntervalRow
	for _, row := range result.Rows {
		rows = append(rows, FlattenTracks(row.TaskKey, row.Tracks)...)
	}
	return rows
}

// FlattenTracks returns one row per positioned interval of a single task.
func FlattenTracks(taskKey string, tracks []Track) []IntervalRow {
	var rows []IntervalRow
	for _, track := range tracks {
		for _, p := range track.Intervals {
			rows = append(rows, IntervalRow{
				TaskKey:   taskKey,
				Track:     track.Index,
				ID:        p.ID,
				GroupKey:  p.GroupKey,
				Status:    string(p.Status),
				StartTime: FormatMinute(p.StartTime),
				EndTime:   FormatMinute(p.EndTime),
				LeftPct:   p.LeftPct,
				WidthPct:  p.WidthPct,
				Color:     p.Color,
				Planned:   p.Planned,
			})
		}
	}
	return rows
}
