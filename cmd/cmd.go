// Package cmd defines the command-line interface for tracklane.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(colorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("input-format", string(schema.AutoIn), "Input format: auto or json or yaml or csv")
	rootCmd.PersistentFlags().StringP("task", "t", "", "Comma-separated task keys to keep")
	rootCmd.PersistentFlags().String("now", "", "Processing instant in ISO8601 (defaults to the wall clock)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA zone for naive timestamps and today (defaults to local)")
	rootCmd.PersistentFlags().Bool("plan-fallback", false, "Borrow plan dates for slots without start and end times")
	rootCmd.PersistentFlags().String("color-strategy", string(schema.HashColors), "Color strategy: hash or band")
	rootCmd.PersistentFlags().Int("palette-size", contract.DefaultPaletteSize, "Number of palette colors to use (8 to 10)")
	rootCmd.PersistentFlags().String("window", string(schema.TaskWindow), "Window for positions: task or shared")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent row workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for percentage columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Layout cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of calendarCmd to Viper
	calendarCmd.Flags().String("month", "", "Month to lay out as YYYY-MM (defaults to the month of now)")
	if err := viper.BindPFlags(calendarCmd.Flags()); err != nil {
		contract.LogFatal("Error binding calendar flags", err)
	}

	// Bind all flags of colorCmd to Viper
	colorCmd.Flags().String("key", "", "Comma-separated grouping keys to color")
	if err := viper.BindPFlags(colorCmd.Flags()); err != nil {
		contract.LogFatal("Error binding color flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
