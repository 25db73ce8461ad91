package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

// PrintColors outputs the palette slot of each key, dispatching on the configured output format.
func PrintColors(results []schema.ColorResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return wrapErr("JSON", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON colors"))
	case schema.CSVOut:
		return wrapErr("CSV", writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeColorsCSV(w, results)
		}, "Wrote CSV colors"))
	case schema.ParquetOut:
		return errParquetView
	default:
		if err := printColorsTable(os.Stdout, results, cfg); err != nil {
			return fmt.Errorf("error writing colors table output: %w", err)
		}
	}
	return nil
}

func printColorsTable(w io.Writer, results []schema.ColorResult, cfg *contract.Config) error {
	headers := []string{"Key", "Strategy", "Index", "Color", "Swatch"}
	cellWidth := GetMaxCellWidth(cfg)
	data := make([][]string, 0, len(results))
	for _, r := range results {
		data = append(data, []string{
			contract.TruncateText(r.Key, cellWidth),
			string(r.Strategy),
			strconv.Itoa(r.Index),
			r.Color,
			swatch(r.Color, cfg.UseColors),
		})
	}
	return renderTable(w, headers, data)
}

// swatch paints a short block in the palette color when colors are enabled.
func swatch(hex string, useColors bool) string {
	const block = "      "
	r, g, b, ok := parseHexColor(hex)
	if !useColors || !ok {
		return contract.UnknownValue
	}
	return color.BgRGB(r, g, b).Sprint(block)
}

// parseHexColor reads a #rrggbb color.
func parseHexColor(hex string) (int, int, int, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func writeColorsCSV(w io.Writer, results []schema.ColorResult) error {
	header := []string{"key", "strategy", "index", "color"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range results {
			if err := csvWriter.Write([]string{r.Key, string(r.Strategy), strconv.Itoa(r.Index), r.Color}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
