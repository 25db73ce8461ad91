package schema

import "time"

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// SlotStatus represents the execution status of a timeslot.
	SlotStatus string

	// ColorStrategy represents how group keys are mapped onto the palette.
	ColorStrategy string

	// WindowScope represents which intervals share one positioning window.
	WindowScope string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All slot statuses supported.
const (
	InProgressStatus SlotStatus = "in_progress"
	CompletedStatus  SlotStatus = "completed"
	PendingStatus    SlotStatus = "pending"
	OtherStatus      SlotStatus = "other"
)

// All color strategies supported.
const (
	HashColors ColorStrategy = "hash" // default
	BandColors ColorStrategy = "band"
)

// All window scopes supported.
const (
	TaskWindow   WindowScope = "task" // default
	SharedWindow WindowScope = "shared"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Layout constants shared by every view.
const (
	DefaultDuration = time.Hour     // assumed length of an interval without an end
	FallbackSpan    = 2 * time.Hour // window length when nothing bounds it
	MinWidthPct     = 1.0           // narrowest visible bar
	DateLayout      = "2006-01-02"  // calendar date key
	MonthLayout     = "2006-01"     // calendar month key
	ClockLayout     = "15:04"       // hour and minute display
	MinuteLayout    = "2006-01-02T15:04"
)

// MaxSpanDays is the longest distance, in days, between the first and last
// date of an interval that is still expanded into one bucket per day.
// Longer intervals are bucketed under their two endpoint dates only.
const MaxSpanDays = 366

// DefaultGroupKey is the group used for intervals that carry none.
const DefaultGroupKey = "default"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidColorStrategies lists all valid color strategies.
var ValidColorStrategies = map[ColorStrategy]struct{}{
	HashColors: {},
	BandColors: {},
}

// ValidWindowScopes lists all valid window scopes.
var ValidWindowScopes = map[WindowScope]struct{}{
	TaskWindow:   {},
	SharedWindow: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// InputFormat represents the format of the layout input.
type InputFormat string

// All input formats supported.
const (
	AutoIn InputFormat = "auto" // default, chosen by extension or content
	JSONIn InputFormat = "json"
	YAMLIn InputFormat = "yaml"
	CSVIn  InputFormat = "csv"
)

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	AutoIn: {},
	JSONIn: {},
	YAMLIn: {},
	CSVIn:  {},
}
