package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upec/tracklane/schema"
)

// validInput returns a raw input that passes validation.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		InputPathStr:  "slots.json",
		ColorStrategy: "hash",
		PaletteSize:   DefaultPaletteSize,
		Window:        "task",
		Workers:       4,
		Precision:     1,
		Output:        "text",
		Color:         "yes",
		CacheBackend:  "none",
		Timezone:      "UTC",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid color strategy", mutate: func(in *ConfigRawInput) { in.ColorStrategy = "rainbow" }, expectError: "invalid color strategy"},
		{name: "palette too small", mutate: func(in *ConfigRawInput) { in.PaletteSize = 4 }, expectError: "palette size"},
		{name: "palette too large", mutate: func(in *ConfigRawInput) { in.PaletteSize = 11 }, expectError: "palette size"},
		{name: "invalid window", mutate: func(in *ConfigRawInput) { in.Window = "global" }, expectError: "invalid window"},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: "workers"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "parquet needs a file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: "requires --output-file"},
		{name: "invalid input format", mutate: func(in *ConfigRawInput) { in.InputFormat = "xml" }, expectError: "invalid input format"},
		{name: "invalid color flag", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "invalid --color"},
		{name: "invalid timezone", mutate: func(in *ConfigRawInput) { in.Timezone = "Mars/Olympus" }, expectError: "invalid timezone"},
		{name: "invalid now", mutate: func(in *ConfigRawInput) { in.Now = "yesterday" }, expectError: "invalid --now"},
		{name: "invalid month", mutate: func(in *ConfigRawInput) { in.Month = "2024-13" }, expectError: "invalid month"},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: "invalid cache backend"},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: "connection string is required"},
		{
			name: "same sqlite file for cache and runs",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.RunBackend = "sqlite"
			},
			expectError: "",
		},
		{
			name: "explicit shared sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.CacheDBConnect = "/tmp/shared.db"
				in.RunBackend = "sqlite"
				in.RunDBConnect = "/tmp/shared.db"
			},
			expectError: "different databases",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateFillsConfig(t *testing.T) {
	input := validInput()
	input.InputPathStr = ""
	input.Now = "2024-03-10T09:15"
	input.Month = "2024-03"
	input.Task = "T1, T2,,"
	input.Key = "P10"
	input.ColorStrategy = "BAND"
	input.Window = "shared"
	input.PlanFallback = true
	input.CacheBackend = ""

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "-", cfg.InputPath)
	assert.Equal(t, schema.AutoIn, cfg.InputFormat)
	assert.Equal(t, []string{"T1", "T2"}, cfg.TaskFilter)
	assert.Equal(t, []string{"P10"}, cfg.ColorKeys)
	assert.Equal(t, schema.BandColors, cfg.ColorStrategy)
	assert.Equal(t, schema.SharedWindow, cfg.Window)
	assert.True(t, cfg.PlanFallback)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC), cfg.Now)
	assert.True(t, cfg.NowPinned)
	assert.Equal(t, "2024-03", cfg.Month.Format(schema.MonthLayout))
}

func TestProcessTimeSettingsDefaultsToWallClock(t *testing.T) {
	input := validInput()
	input.Timezone = "Asia/Shanghai"
	wall := time.Date(2024, 3, 9, 17, 30, 45, 0, time.UTC)

	cfg := &Config{}
	require.NoError(t, processTimeSettings(cfg, input, wall))
	assert.Equal(t, "2024-03-10", schema.DateOf(cfg.Now), "the date follows the configured zone")
	assert.Equal(t, 0, cfg.Now.Second())
	assert.False(t, cfg.NowPinned)
}

func TestConfigRefreshNow(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	stale := time.Date(2024, 3, 9, 8, 0, 0, 0, shanghai)
	wall := time.Date(2024, 3, 10, 17, 30, 45, 0, time.UTC)

	cfg := &Config{Now: stale, Location: shanghai}
	cfg.RefreshNow(wall)
	assert.Equal(t, "2024-03-11", schema.DateOf(cfg.Now))
	assert.Equal(t, "01:30", cfg.Now.Format("15:04"))

	pinned := &Config{Now: stale, NowPinned: true, Location: shanghai}
	pinned.RefreshNow(wall)
	assert.Equal(t, stale, pinned.Now)

	noZone := &Config{Now: stale}
	noZone.RefreshNow(wall)
	assert.Equal(t, time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC), noZone.Now)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{TaskFilter: []string{"T1"}, ColorKeys: []string{"A"}}
	clone := cfg.Clone()
	clone.TaskFilter[0] = "T2"
	clone.ColorKeys = append(clone.ColorKeys, "B")
	assert.Equal(t, []string{"T1"}, cfg.TaskFilter)
	assert.Equal(t, []string{"A"}, cfg.ColorKeys)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/tracklane", false},
		{schema.MySQLBackend, "user:pass@localhost/tracklane", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=tracklane", false},
		{schema.PostgreSQLBackend, "dbname=tracklane", true},
		{schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+":"+tt.conn, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRevalidateLayout(t *testing.T) {
	base := &Config{
		ColorStrategy: schema.HashColors,
		Window:        schema.TaskWindow,
		PaletteSize:   DefaultPaletteSize,
		Location:      time.UTC,
	}

	t.Run("empty values keep settings", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateLayout(cfg, "", "", "", 0))
		assert.Equal(t, base, cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateLayout(cfg, "BAND", "shared", "2024-03-10T08:00", 10))
		assert.Equal(t, schema.BandColors, cfg.ColorStrategy)
		assert.Equal(t, schema.SharedWindow, cfg.Window)
		assert.Equal(t, 10, cfg.PaletteSize)
		assert.Equal(t, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), cfg.Now)
	})

	errCases := []struct {
		name                  string
		strategy, window, now string
		size                  int
		want                  string
	}{
		{"strategy", "rainbow", "", "", 0, "invalid color strategy"},
		{"window", "", "global", "", 0, "invalid window"},
		{"palette", "", "", "", 12, "palette size must be between 8 and 10"},
		{"now", "", "", "yesterday", 0, "invalid now value"},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			err := RevalidateLayout(base.Clone(), tc.strategy, tc.window, tc.now, tc.size)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
