package cmd

import (
	"github.com/spf13/cobra"
	"github.com/upec/tracklane/core"
	"github.com/upec/tracklane/internal/contract"
)

// layoutCmd builds the full timeline.
var layoutCmd = &cobra.Command{
	Use:   "layout [input-file]",
	Short: "Show date buckets and tracks for every task.",
	Long: `Build the complete timeline for a task document.

For every task this:
- Groups timeslots under each calendar date they touch
- Packs overlapping timeslots into separate tracks
- Positions each timeslot as a percentage of the task's window
- Colors each timeslot by its group key

The document is read from the given file, or stdin when omitted. JSON, YAML
and CSV are accepted; the format is detected from the extension or content.

Examples:
  # Lay out a JSON export
  tracklane layout slots.json

  # Fix the processing instant so the output is reproducible
  tracklane layout slots.json --now 2024-03-10T08:00 --timezone Asia/Shanghai

  # Use one shared window and band colors
  tracklane layout slots.yaml --window shared --color-strategy band

  # Export the positioned tracks to Parquet
  tracklane layout slots.json --output parquet --output-file tracks.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLayout(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build layout", err)
		}
	},
}

// tracksCmd prints only the positioned tracks.
var tracksCmd = &cobra.Command{
	Use:   "tracks [input-file]",
	Short: "Show the non-overlapping tracks of every task.",
	Long: `Pack each task's timeslots into tracks and print their positions.

Timeslots are sorted by start time and placed on the first track whose last
slot has ended, so no two slots on a track overlap. A slot without an end is
treated as one hour long when packing.

Examples:
  # Show tracks for two tasks only
  tracklane tracks slots.json --task T-100,T-200

  # Write tracks as CSV
  tracklane tracks slots.json --output csv --output-file tracks.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTracks(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build tracks", err)
		}
	},
}

// datesCmd prints only the date buckets.
var datesCmd = &cobra.Command{
	Use:   "dates [input-file]",
	Short: "Show which timeslots fall on each date.",
	Long: `Group each task's timeslots by the calendar dates they touch.

A slot spanning midnight appears under every date it covers. A slot with no
times at all appears under today so it stays visible.

Examples:
  # Show date buckets as of a fixed instant
  tracklane dates slots.json --now 2024-03-10T08:00

  # Export buckets to JSON
  tracklane dates slots.json --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDates(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build date buckets", err)
		}
	},
}

// calendarCmd prints a month grid.
var calendarCmd = &cobra.Command{
	Use:   "calendar [input-file]",
	Short: "Show a month of timeslots as ISO weeks.",
	Long: `Lay out one month as Monday-first ISO weeks and count the timeslots on each day.

Examples:
  # Current month
  tracklane calendar slots.json

  # A specific month
  tracklane calendar slots.json --month 2024-03`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCalendar(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build calendar", err)
		}
	},
}

// colorCmd reports palette slots without reading any input.
var colorCmd = &cobra.Command{
	Use:   "color",
	Short: "Show the palette color chosen for grouping keys.",
	Long: `Report the palette slot and color each grouping key receives.

The hash strategy spreads keys evenly across the palette. The band strategy
reads the first number in a key and keeps keys of the same tens band together.

Examples:
  # Compare strategies for a few procedure numbers
  tracklane color --key P10,P15,P20
  tracklane color --key P10,P15,P20 --color-strategy band`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteColors(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot describe colors", err)
		}
	},
}
