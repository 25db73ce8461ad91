package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietHeaders silences progress output for the duration of a test.
func quietHeaders(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := headerOut
	headerOut = &buf
	t.Cleanup(func() { headerOut = prev })
	return &buf
}

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		precision int
		value     float64
		expected  string
	}{
		{0, 33.333, "33"},
		{1, 33.333, "33.3"},
		{2, 66.666, "66.67"},
		{4, 100, "100.0000"},
	}
	for _, tt := range tests {
		fmtFloat, intFmt := createFormatters(tt.precision)
		assert.Equal(t, tt.expected, fmtFloat(tt.value))
		assert.Equal(t, "%d", intFmt)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"tracks": 2}))
	assert.Equal(t, "{\n  \"tracks\": 2\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	assert.ErrorContains(t, err, "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"task_key", "label"}, func(w *csv.Writer) error {
		return w.Write([]string{"T1", "cut, then weld"})
	})
	require.NoError(t, err)
	assert.Equal(t, "task_key,label\nT1,\"cut, then weld\"\n", buf.String())

	err = writeCSVWithHeader(&buf, []string{"col"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWriteWithFile(t *testing.T) {
	headers := quietHeaders(t)

	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(io.Writer) error {
			called = true
			return nil
		}, "Wrote test")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		err := writeWithFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "lanes")
			return err
		}, "Wrote test")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "lanes", string(content))
		assert.Contains(t, headers.String(), "Wrote test to "+path)
	})

	t.Run("writer error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		err := writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote test")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("bad path", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "missing", "out.txt"), func(io.Writer) error { return nil }, "Wrote test")
		assert.Error(t, err)
	})
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, []string{"Task", "Count"}, [][]string{{"T1", "3"}}))
	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "TASK")
	assert.Contains(t, out, "T1")
	assert.Contains(t, out, "3")
}
