package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/upec/tracklane/schema"
)

// Status label constants.
const (
	InProgressValue = "In progress"
	CompletedValue  = "Completed"
	PendingValue    = "Pending"
	OtherValue      = "Other"
	UnknownValue    = "-"
)

// Color variables for console output.
var (
	InProgressColor = color.New(color.FgBlue, color.Bold) // work happening now
	CompletedColor  = color.New(color.FgGreen)            // finished work
	PendingColor    = color.New(color.FgYellow)           // queued work
	OtherColor      = color.New(color.FgHiBlack)          // anything else
)

// GetPlainLabel returns a plain text label for a slot status. This is the
// label used for CSV, JSON and table printing.
func GetPlainLabel(status schema.SlotStatus) string {
	switch status {
	case schema.InProgressStatus:
		return InProgressValue
	case schema.CompletedStatus:
		return CompletedValue
	case schema.PendingStatus:
		return PendingValue
	case "":
		return UnknownValue
	default:
		return OtherValue
	}
}

// GetColorLabel returns a colored status label for console output (table).
func GetColorLabel(status schema.SlotStatus) string {
	text := GetPlainLabel(status)

	switch status {
	case schema.InProgressStatus:
		return InProgressColor.Sprint(text)
	case schema.CompletedStatus:
		return CompletedColor.Sprint(text)
	case schema.PendingStatus:
		return PendingColor.Sprint(text)
	case "":
		return text
	default:
		return OtherColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tracklane_cache.db"
	}
	return filepath.Join(homeDir, ".tracklane_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tracklane_runs.db"
	}
	return filepath.Join(homeDir, ".tracklane_runs.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
