package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/upec/tracklane/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	DefaultPaletteSize = 8
	MinPaletteSize     = 8
	MaxPaletteSize     = 10
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a layout.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string // "-" reads stdin
	InputFormat schema.InputFormat
	TaskFilter  []string

	Now          time.Time      // processing instant, captured once per invocation
	NowPinned    bool           // Now came from --now and must not follow the wall clock
	Location     *time.Location // zone for naive timestamps and the wall clock
	PlanFallback bool

	ColorStrategy schema.ColorStrategy
	PaletteSize   int
	Window        schema.WindowScope
	Workers       int

	Month     time.Time // calendar view
	ColorKeys []string  // color view

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	InputFormat    string `mapstructure:"input-format"`
	Task           string `mapstructure:"task"`
	Now            string `mapstructure:"now"`
	Timezone       string `mapstructure:"timezone"`
	PlanFallback   bool   `mapstructure:"plan-fallback"`
	ColorStrategy  string `mapstructure:"color-strategy"`
	PaletteSize    int    `mapstructure:"palette-size"`
	Window         string `mapstructure:"window"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	Color          string `mapstructure:"color"`

	// --- Fields from calendarCmd.Flags() ---
	Month string `mapstructure:"month"`

	// --- Fields from colorCmd.Flags() ---
	Key string `mapstructure:"key"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.TaskFilter = slices.Clone(c.TaskFilter)
	clone.ColorKeys = slices.Clone(c.ColorKeys)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processLayoutOptions(cfg, input); err != nil {
		return err
	}
	if err := processTimeSettings(cfg, input, time.Now()); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("run backend: %w", err)
	}

	// Cache and run history must not share a database
	if cfg.CacheBackend == cfg.RunBackend && cfg.CacheBackend != schema.NoneBackend {
		cachePath, runPath := cfg.CacheDBConnect, cfg.RunDBConnect
		if cfg.CacheBackend == schema.SQLiteBackend {
			if cachePath == "" {
				cachePath = GetCacheDBFilePath()
			}
			if runPath == "" {
				runPath = GetRunDBFilePath()
			}
		}
		if cachePath == runPath {
			return fmt.Errorf("cache and run storage must use different databases. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	if cfg.InputPath == "" {
		cfg.InputPath = "-"
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.TaskFilter = splitList(input.Task)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.InputFormat = schema.InputFormat(strings.ToLower(input.InputFormat))
	if cfg.InputFormat == "" {
		cfg.InputFormat = schema.AutoIn
	}
	if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be auto, json, yaml, csv", input.InputFormat)
	}
	return nil
}

// processLayoutOptions validates the choices that shape the layout itself.
func processLayoutOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.ColorStrategy = schema.ColorStrategy(strings.ToLower(input.ColorStrategy))
	if _, ok := schema.ValidColorStrategies[cfg.ColorStrategy]; !ok {
		return fmt.Errorf("invalid color strategy '%s'. must be hash, band", input.ColorStrategy)
	}

	if input.PaletteSize < MinPaletteSize || input.PaletteSize > MaxPaletteSize {
		return fmt.Errorf("palette size must be between %d and %d (received %d)", MinPaletteSize, MaxPaletteSize, input.PaletteSize)
	}
	cfg.PaletteSize = input.PaletteSize

	cfg.Window = schema.WindowScope(strings.ToLower(input.Window))
	if _, ok := schema.ValidWindowScopes[cfg.Window]; !ok {
		return fmt.Errorf("invalid window '%s'. must be task, shared", input.Window)
	}

	cfg.PlanFallback = input.PlanFallback
	cfg.ColorKeys = splitList(input.Key)
	return nil
}

// processTimeSettings resolves the timezone, the processing instant and the calendar month.
func processTimeSettings(cfg *Config, input *ConfigRawInput, wallClock time.Time) error {
	loc, err := LoadLocation(input.Timezone)
	if err != nil {
		return err
	}
	cfg.Location = loc

	cfg.Now = wallClock.In(loc).Truncate(time.Minute)
	if input.Now != "" {
		now, err := ParseTimestamp(input.Now, loc)
		if err != nil {
			return fmt.Errorf("invalid --now value: %w", err)
		}
		cfg.Now = now
		cfg.NowPinned = true
	}

	cfg.Month = time.Time{}
	if input.Month != "" {
		month, err := ParseMonth(input.Month, loc)
		if err != nil {
			return err
		}
		cfg.Month = month
	}
	return nil
}

// RefreshNow moves Now to the wall clock unless it was pinned on startup.
// Long-lived servers call it per request so "today" does not go stale.
func (c *Config) RefreshNow(wallClock time.Time) {
	if c.NowPinned {
		return
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	c.Now = wallClock.In(loc).Truncate(time.Minute)
}

// RevalidateLayout applies per-request layout overrides on top of an already
// validated config. Empty values keep the current setting.
func RevalidateLayout(cfg *Config, strategy, window, now string, paletteSize int) error {
	if strategy != "" {
		cs := schema.ColorStrategy(strings.ToLower(strategy))
		if _, ok := schema.ValidColorStrategies[cs]; !ok {
			return fmt.Errorf("invalid color strategy '%s'. must be hash, band", strategy)
		}
		cfg.ColorStrategy = cs
	}
	if window != "" {
		ws := schema.WindowScope(strings.ToLower(window))
		if _, ok := schema.ValidWindowScopes[ws]; !ok {
			return fmt.Errorf("invalid window '%s'. must be task, shared", window)
		}
		cfg.Window = ws
	}
	if paletteSize != 0 {
		if paletteSize < MinPaletteSize || paletteSize > MaxPaletteSize {
			return fmt.Errorf("palette size must be between %d and %d (received %d)", MinPaletteSize, MaxPaletteSize, paletteSize)
		}
		cfg.PaletteSize = paletteSize
	}
	if now != "" {
		loc := cfg.Location
		if loc == nil {
			loc = time.UTC
		}
		t, err := ParseTimestamp(now, loc)
		if err != nil {
			return fmt.Errorf("invalid now value: %w", err)
		}
		cfg.Now = t
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var parts []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
