// Package intake loads layout input documents and turns them into raw tasks.
package intake

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/upec/tracklane/schema"
)

// Options controls how documents are interpreted.
type Options struct {
	Location     *time.Location // zone for timestamps without an offset
	PlanFallback bool           // borrow plan dates for slots with no times
}

// Warning describes an input field that was degraded instead of rejected.
type Warning struct {
	TaskKey    string
	IntervalID string
	Field      string
	Value      string
	Err        error
}

// Error implements the error interface so warnings can be logged directly.
func (w Warning) Error() string {
	return fmt.Sprintf("task %s interval %s: %s %q: %v", w.TaskKey, w.IntervalID, w.Field, w.Value, w.Err)
}

// Result is a decoded input document.
type Result struct {
	Tasks    []schema.RawTaskIntervals
	Warnings []Warning
}

// IntervalCount returns the number of intervals across tasks.
func (r Result) IntervalCount() int {
	total := 0
	for _, task := range r.Tasks {
		total += len(task.Intervals)
	}
	return total
}

// LoadFile reads and decodes the document at path. A path of "-" reads stdin.
func LoadFile(path string, format schema.InputFormat, opts Options) (Result, error) {
	if path == "" || path == "-" {
		return Decode(os.Stdin, format, opts)
	}
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = file.Close() }()

	if format == schema.AutoIn || format == "" {
		format = FormatFromPath(path)
	}
	return Decode(file, format, opts)
}

// FormatFromPath picks a format from the file extension, or AutoIn when unknown.
func FormatFromPath(path string) schema.InputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.JSONIn
	case ".yaml", ".yml":
		return schema.YAMLIn
	case ".csv":
		return schema.CSVIn
	default:
		return schema.AutoIn
	}
}

// Decode reads a whole document from r.
func Decode(r io.Reader, format schema.InputFormat, opts Options) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read input: %w", err)
	}
	if format == schema.AutoIn || format == "" {
		format = sniffFormat(data)
	}

	var docs []taskDoc
	switch format {
	case schema.JSONIn:
		docs, err = decodeJSON(data)
	case schema.YAMLIn:
		docs, err = decodeYAML(data)
	case schema.CSVIn:
		docs, err = decodeCSV(data)
	default:
		return Result{}, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		return Result{}, err
	}
	return resolve(docs, opts), nil
}

// sniffFormat guesses the format of an unlabeled document.
func sniffFormat(data []byte) schema.InputFormat {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return schema.JSONIn
	}
	switch trimmed[0] {
	case '[', '{':
		return schema.JSONIn
	}
	firstLine, _, _ := bytes.Cut(trimmed, []byte("\n"))
	if bytes.Contains(firstLine, []byte(",")) && !bytes.Contains(firstLine, []byte(":")) {
		return schema.CSVIn
	}
	return schema.YAMLIn
}
