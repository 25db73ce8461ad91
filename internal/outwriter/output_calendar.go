package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

// PrintCalendar outputs a month grid, dispatching on the configured output format.
func PrintCalendar(result schema.CalendarResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return wrapErr("JSON", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON calendar"))
	case schema.CSVOut:
		return wrapErr("CSV", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCalendarCSV(w, result)
		}, "Wrote CSV calendar"))
	case schema.ParquetOut:
		return errParquetView
	default:
		if err := printCalendarTable(os.Stdout, result); err != nil {
			return fmt.Errorf("error writing calendar table output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Calendar for %s completed in %v: %d slots scheduled in month\n",
			result.Month, duration, monthSlotCount(result))
	}
	return nil
}

// printCalendarTable prints Monday-first weeks. Days outside the month are
// parenthesized and today carries a star.
func printCalendarTable(w io.Writer, result schema.CalendarResult) error {
	headers := []string{"Week", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	data := make([][]string, 0, len(result.Weeks))
	for _, week := range result.Weeks {
		row := []string{fmt.Sprintf("W%02d", week.ISOWeek)}
		for _, day := range week.Days {
			row = append(row, calendarCell(day))
		}
		data = append(data, row)
	}
	return renderTable(w, headers, data)
}

func calendarCell(day schema.CalendarDay) string {
	label := strings.TrimLeft(day.Date[len(day.Date)-2:], "0")
	if day.IsToday {
		label += "*"
	}
	if !day.InMonth {
		label = "(" + label + ")"
	}
	if n := len(day.Intervals); n > 0 {
		label += fmt.Sprintf("\n%d slot%s", n, plural(n))
	}
	return label
}

// writeCalendarCSV writes one record per grid day.
func writeCalendarCSV(w io.Writer, result schema.CalendarResult) error {
	header := []string{"date", "iso_year", "iso_week", "in_month", "is_today", "count", "ids"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, week := range result.Weeks {
			for _, day := range week.Days {
				ids := make([]string, len(day.Intervals))
				for i, iv := range day.Intervals {
					ids[i] = iv.ID
				}
				record := []string{
					day.Date,
					strconv.Itoa(week.ISOYear),
					strconv.Itoa(week.ISOWeek),
					strconv.FormatBool(day.InMonth),
					strconv.FormatBool(day.IsToday),
					strconv.Itoa(len(day.Intervals)),
					strings.Join(ids, "|"),
				}
				if err := csvWriter.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
		return nil
	})
}

func monthSlotCount(result schema.CalendarResult) int {
	seen := make(map[*schema.Interval]struct{})
	for _, week := range result.Weeks {
		for _, day := range week.Days {
			if !day.InMonth {
				continue
			}
			for _, iv := range day.Intervals {
				seen[iv] = struct{}{}
			}
		}
	}
	return len(seen)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
