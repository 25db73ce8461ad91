package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upec/tracklane/schema"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		status   schema.SlotStatus
		expected string
	}{
		{schema.InProgressStatus, InProgressValue},
		{schema.CompletedStatus, CompletedValue},
		{schema.PendingStatus, PendingValue},
		{schema.OtherStatus, OtherValue},
		{"", UnknownValue},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.status))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	label := GetColorLabel(schema.CompletedStatus)
	assert.Contains(t, label, CompletedValue)
	assert.NotEqual(t, CompletedValue, label, "expected ANSI escapes around the label")
	assert.Equal(t, UnknownValue, GetColorLabel(""))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.FileExists(t, path)
	})
}

func TestDBFilePathsDiffer(t *testing.T) {
	assert.NotEqual(t, GetCacheDBFilePath(), GetRunDBFilePath())
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".tracklane_cache.db"))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "a-long...", TruncateText("a-long-task-key", 9))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
