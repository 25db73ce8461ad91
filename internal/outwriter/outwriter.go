// Package outwriter renders timeline, calendar and color results as tables,
// CSV, JSON or Parquet.
package outwriter

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
	"golang.org/x/term"
)

// Bar widths for the text timeline column.
const (
	minBarWidth = 10
	maxBarWidth = 60
)

// headerOut receives the progress headers. Tables and data go to stdout, so
// headers never mix with redirected output.
var headerOut io.Writer = os.Stderr

// getTerminalWidth returns the width override, the detected terminal width,
// or a conservative default.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetBarWidth calculates how many characters the timeline bar column may use
// after the fixed track columns are laid out.
func GetBarWidth(cfg *contract.Config) int {
	// Task + Track + ID + Status + Start + End + Left + Width with borders/padding
	available := getTerminalWidth(cfg) - 95
	return min(max(available, minBarWidth), maxBarWidth)
}

// GetMaxCellWidth returns the width for free-text cells such as task keys.
func GetMaxCellWidth(cfg *contract.Config) int {
	return min(max(getTerminalWidth(cfg)/5, 12), 40)
}

// renderBar draws a positioned interval inside a bar of the given width. Every
// interval gets at least one mark so short slots stay visible.
func renderBar(p schema.PositionedInterval, width int) string {
	start := int(math.Round(p.LeftPct / 100 * float64(width)))
	length := int(math.Round(p.WidthPct / 100 * float64(width)))
	start = min(max(start, 0), width-1)
	length = min(max(length, 1), width-start)
	return strings.Repeat("·", start) + strings.Repeat("█", length) + strings.Repeat("·", width-start-length)
}

// statusLabel picks the colored or plain label for table output.
func statusLabel(status schema.SlotStatus, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(status)
	}
	return contract.GetPlainLabel(status)
}

// LogLayoutHeader prints a two-line summary before a layout is built.
func LogLayoutHeader(cfg *contract.Config, numTasks int) {
	_, _ = fmt.Fprintf(headerOut, "🔎 Input: %s (%d tasks, colors: %s/%d, window: %s)\n",
		inputName(cfg.InputPath), numTasks, cfg.ColorStrategy, cfg.PaletteSize, cfg.Window)
	_, _ = fmt.Fprintf(headerOut, "📅 Now: %s (%s)\n", cfg.Now.Format(schema.MinuteLayout), locationName(cfg))
}

// LogCalendarHeader prints a two-line summary before a month is laid out.
func LogCalendarHeader(cfg *contract.Config, numTasks int) {
	month := cfg.Month
	if month.IsZero() {
		month = cfg.Now
	}
	_, _ = fmt.Fprintf(headerOut, "🔎 Input: %s (%d tasks)\n", inputName(cfg.InputPath), numTasks)
	_, _ = fmt.Fprintf(headerOut, "📅 Month: %s (today %s)\n", month.Format(schema.MonthLayout), cfg.Now.Format(schema.DateLayout))
}

func inputName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func locationName(cfg *contract.Config) string {
	if cfg.Location != nil {
		return cfg.Location.String()
	}
	return cfg.Now.Location().String()
}
