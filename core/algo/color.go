package algo

import (
	"strconv"
	"unicode"

	"github.com/upec/tracklane/schema"
)

// Palette bounds for group colors.
const (
	MinPaletteSize     = 8
	MaxPaletteSize     = 10
	DefaultPaletteSize = 8
)

// Hash parameters. The modulus keeps the running sum bounded.
const (
	hashBase    int64 = 31
	hashModulus int64 = 1_000_000_007
)

// DefaultPalette lists light background tints, most common first.
var DefaultPalette = []string{
	"#e6f7ff", "#f6ffed", "#fff7e6", "#fff1f0", "#f9f0ff",
	"#e6fffb", "#fffbe6", "#f0f5ff", "#fcffe6", "#fff0f6",
}

// HashKey sums each code point times 31 raised to its position, reduced modulo
// a large prime. The result is never negative.
func HashKey(key string) int64 {
	var hash, pow int64 = 0, 1
	for _, r := range key {
		hash = (hash + int64(r)%hashModulus*pow) % hashModulus
		pow = pow * hashBase % hashModulus
	}
	return hash
}

// ColorAssigner maps group keys onto a fixed palette with a single strategy.
type ColorAssigner struct {
	strategy schema.ColorStrategy
	palette  []string
}

// NewColorAssigner builds an assigner over the first size entries of the
// default palette. Size is clamped to the supported range and an unknown
// strategy falls back to hashing.
func NewColorAssigner(strategy schema.ColorStrategy, size int) *ColorAssigner {
	size = min(max(size, MinPaletteSize), MaxPaletteSize)
	if _, ok := schema.ValidColorStrategies[strategy]; !ok {
		strategy = schema.HashColors
	}
	return &ColorAssigner{strategy: strategy, palette: DefaultPalette[:size]}
}

// Strategy returns the strategy in use.
func (c *ColorAssigner) Strategy() schema.ColorStrategy { return c.strategy }

// Palette returns a copy of the active palette.
func (c *ColorAssigner) Palette() []string {
	return append([]string(nil), c.palette...)
}

// Index returns the palette slot for key.
func (c *ColorAssigner) Index(key string) int {
	n := int64(len(c.palette))
	if c.strategy == schema.BandColors {
		if num, ok := leadingNumber(key); ok {
			return int((num / 10) % n)
		}
	}
	return int(HashKey(key) % n)
}

// ColorOf returns the color for key.
func (c *ColorAssigner) ColorOf(key string) string {
	return c.palette[c.Index(key)]
}

// IntervalColor colors an interval by its group key, or by its id when it has none.
func (c *ColorAssigner) IntervalColor(iv *schema.Interval) string {
	return c.ColorOf(iv.ColorKey())
}

// Describe reports the slot and color chosen for key.
func (c *ColorAssigner) Describe(key string) schema.ColorResult {
	idx := c.Index(key)
	return schema.ColorResult{Key: key, Strategy: c.strategy, Index: idx, Color: c.palette[idx]}
}

// leadingNumber extracts the first run of ASCII digits in key, so "P120" and
// "120" both band on 120.
func leadingNumber(key string) (int64, bool) {
	start := -1
	for i, r := range key {
		isDigit := r < unicode.MaxASCII && unicode.IsDigit(r)
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			return parseDigits(key[start:i])
		}
	}
	if start < 0 {
		return 0, false
	}
	return parseDigits(key[start:])
}

func parseDigits(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Status marker and tint colors.
var (
	statusMarkers = map[schema.SlotStatus]string{
		schema.InProgressStatus: "#1890ff",
		schema.CompletedStatus:  "#52c41a",
		schema.PendingStatus:    "#faad14",
	}
	statusTints = map[schema.SlotStatus]string{
		schema.InProgressStatus: "#e6f7ff",
		schema.CompletedStatus:  "#f6ffed",
		schema.PendingStatus:    "#fff7e6",
	}
)

// StatusMarker returns the marker color for a status.
func StatusMarker(status schema.SlotStatus) string {
	if c, ok := statusMarkers[status]; ok {
		return c
	}
	return "#d9d9d9"
}

// StatusTint returns the background tint for a status.
func StatusTint(status schema.SlotStatus) string {
	if c, ok := statusTints[status]; ok {
		return c
	}
	return "#ffffff"
}
