package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/upec/tracklane/core/algo"
	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/internal/parquet"
	"github.com/upec/tracklane/schema"
)

// errParquetView is returned when a date view is asked for Parquet output.
var errParquetView = errors.New("parquet output is supported for the layout and tracks views only")

// PrintLayout outputs the tracks followed by the date buckets, dispatching on
// the configured output format.
func PrintLayout(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return wrapErr("JSON", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON layout"))
	case schema.CSVOut:
		return wrapErr("CSV", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTracksCSV(w, schema.FlattenTimeline(result), fmtFloat)
		}, "Wrote CSV layout"))
	case schema.ParquetOut:
		return wrapErr("Parquet", writeTracksParquet(result, cfg))
	default:
		if err := printTracksTable(os.Stdout, result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing tracks table output: %w", err)
		}
		if err := printDatesTable(os.Stdout, result, cfg); err != nil {
			return fmt.Errorf("error writing dates table output: %w", err)
		}
		printLayoutFooter(os.Stdout, result, cfg, duration)
	}
	return nil
}

// PrintTracks outputs only the per-task tracks.
func PrintTracks(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return wrapErr("JSON", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, tracksView(result))
		}, "Wrote JSON tracks"))
	case schema.CSVOut:
		return wrapErr("CSV", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTracksCSV(w, schema.FlattenTimeline(result), fmtFloat)
		}, "Wrote CSV tracks"))
	case schema.ParquetOut:
		return wrapErr("Parquet", writeTracksParquet(result, cfg))
	default:
		if err := printTracksTable(os.Stdout, result, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing tracks table output: %w", err)
		}
		printLayoutFooter(os.Stdout, result, cfg, duration)
	}
	return nil
}

// PrintDates outputs only the date buckets.
func PrintDates(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return wrapErr("JSON", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, datesView(result))
		}, "Wrote JSON dates"))
	case schema.CSVOut:
		return wrapErr("CSV", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDatesCSV(w, result)
		}, "Wrote CSV dates"))
	case schema.ParquetOut:
		return errParquetView
	default:
		if err := printDatesTable(os.Stdout, result, cfg); err != nil {
			return fmt.Errorf("error writing dates table output: %w", err)
		}
		printLayoutFooter(os.Stdout, result, cfg, duration)
	}
	return nil
}

// printTracksTable prints one line per positioned interval with a text bar.
func printTracksTable(w io.Writer, result schema.TimelineResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	barWidth := GetBarWidth(cfg)
	cellWidth := GetMaxCellWidth(cfg)

	headers := []string{"Task", "Track", "ID", "Status", "Start", "End", "Left %", "Width %", "Timeline"}
	var data [][]string
	for _, row := range result.Rows {
		for _, track := range row.Tracks {
			for _, p := range track.Intervals {
				data = append(data, []string{
					contract.TruncateText(row.TaskKey, cellWidth),
					fmt.Sprintf("%d", track.Index),
					contract.TruncateText(p.ID, cellWidth),
					statusLabel(p.Status, cfg),
					displayTime(p.StartTime, p.Planned),
					displayTime(p.EndTime, p.Planned),
					fmtFloat(p.LeftPct),
					fmtFloat(p.WidthPct),
					renderBar(p, barWidth),
				})
			}
		}
	}
	return renderTable(w, headers, data)
}

// printDatesTable prints one line per non-empty date bucket of each task.
func printDatesTable(w io.Writer, result schema.TimelineResult, cfg *contract.Config) error {
	cellWidth := GetMaxCellWidth(cfg)

	headers := []string{"Date", "Task", "Count", "Slots"}
	var data [][]string
	for _, date := range result.DateColumns {
		marker := date
		if date == result.CurrentDate {
			marker = date + " *"
		}
		for _, row := range result.Rows {
			bucket := row.PerDate[date]
			if len(bucket) == 0 {
				continue
			}
			data = append(data, []string{
				marker,
				contract.TruncateText(row.TaskKey, cellWidth),
				fmt.Sprintf("%d", len(bucket)),
				formatBucket(bucket, date),
			})
		}
	}
	return renderTable(w, headers, data)
}

// printLayoutFooter reports timing and totals after the tables.
func printLayoutFooter(w io.Writer, result schema.TimelineResult, cfg *contract.Config, duration time.Duration) {
	backend := cfg.CacheBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	_, _ = fmt.Fprintf(w, "Layout completed in %v with %d workers: %d tasks, %d tracks, %d intervals over %d dates. Cache backend: %s\n",
		duration, cfg.Workers, len(result.Rows), result.TrackCount(), result.IntervalCount(), len(result.DateColumns), backend)
}

// writeTracksParquet writes the flattened tracks to the configured file.
func writeTracksParquet(result schema.TimelineResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	rows := parquet.ConvertIntervalRows(schema.FlattenTimeline(result))
	if err := parquet.WriteIntervalsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(headerOut, "💾 Wrote %d Parquet interval rows to %s\n", len(rows), cfg.OutputFile)
	return nil
}

// formatBucket lists each interval of a date cell with its visible clock range.
func formatBucket(bucket []*schema.Interval, date string) string {
	lines := make([]string, 0, len(bucket))
	for _, iv := range bucket {
		span := algo.DaySpan(iv, date)
		switch {
		case span != "":
		case iv.HasStart() && iv.HasEnd() && date == schema.DateOf(*iv.EndTime):
			span = "until " + iv.EndTime.Format(schema.ClockLayout)
		case iv.HasStart():
			span = "from " + iv.StartTime.Format(schema.ClockLayout)
		default:
			span = "unscheduled"
		}
		lines = append(lines, iv.ID+" "+span)
	}
	return strings.Join(lines, "\n")
}

// displayTime formats an optional timestamp, marking times borrowed from plans.
func displayTime(t *time.Time, planned bool) string {
	s := schema.FormatMinute(t)
	if s == "" {
		return contract.UnknownValue
	}
	if planned {
		return s + " (plan)"
	}
	return s
}

func wrapErr(format string, err error) error {
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", format, err)
	}
	return nil
}
