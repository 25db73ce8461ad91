package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/upec/tracklane/core/algo"
	"github.com/upec/tracklane/schema"
)

// trackRowView is the JSON shape of the tracks view.
type trackRowView struct {
	TaskKey string         `json:"taskKey"`
	Window  *schema.Window `json:"window,omitempty"`
	Tracks  []schema.Track `json:"tracks"`
}

// datesRowView is the JSON shape of one row of the dates view.
type datesRowView struct {
	TaskKey string                        `json:"taskKey"`
	PerDate map[string][]*schema.Interval `json:"perDate"`
}

// datesViewModel is the JSON shape of the dates view.
type datesViewModel struct {
	CurrentDate string         `json:"currentDate"`
	DateColumns []string       `json:"dateColumns"`
	Rows        []datesRowView `json:"rows"`
}

func tracksView(result schema.TimelineResult) []trackRowView {
	rows := make([]trackRowView, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, trackRowView{TaskKey: row.TaskKey, Window: row.Window, Tracks: row.Tracks})
	}
	return rows
}

func datesView(result schema.TimelineResult) datesViewModel {
	view := datesViewModel{
		CurrentDate: result.CurrentDate,
		DateColumns: result.DateColumns,
		Rows:        make([]datesRowView, 0, len(result.Rows)),
	}
	for _, row := range result.Rows {
		view.Rows = append(view.Rows, datesRowView{TaskKey: row.TaskKey, PerDate: row.PerDate})
	}
	return view
}

// writeTracksCSV writes one record per positioned interval.
func writeTracksCSV(w io.Writer, rows []schema.IntervalRow, fmtFloat func(float64) string) error {
	header := []string{
		"task_key",
		"track",
		"id",
		"group_key",
		"status",
		"start_time",
		"end_time",
		"left_pct",
		"width_pct",
		"color",
		"planned",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.TaskKey,
				strconv.Itoa(r.Track),
				r.ID,
				r.GroupKey,
				r.Status,
				r.StartTime,
				r.EndTime,
				fmtFloat(r.LeftPct),
				fmtFloat(r.WidthPct),
				r.Color,
				strconv.FormatBool(r.Planned),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeDatesCSV writes one record per interval in each date bucket, in date
// column order, with the marker and tint a day cell draws for its status.
func writeDatesCSV(w io.Writer, result schema.TimelineResult) error {
	header := []string{"date", "is_today", "task_key", "id", "group_key", "status", "span", "marker", "tint"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, date := range result.DateColumns {
			isToday := strconv.FormatBool(date == result.CurrentDate)
			for _, row := range result.Rows {
				for _, iv := range row.PerDate[date] {
					record := []string{
						date,
						isToday,
						row.TaskKey,
						iv.ID,
						iv.GroupKey,
						string(iv.Status),
						algo.DaySpan(iv, date),
						algo.StatusMarker(iv.Status),
						algo.StatusTint(iv.Status),
					}
					if err := csvWriter.Write(record); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
			}
		}
		return nil
	})
}
