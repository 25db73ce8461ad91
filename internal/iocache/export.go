package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/upec/tracklane/internal/parquet"
)

// ExecuteRunExport writes the run history to two Parquet files that share the
// outputFile prefix.
func ExecuteRunExport(out io.Writer, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is not configured. Set --run-backend to export runs")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total row summaries: %d\n", status.TableSizes[rowsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	rows, err := store.GetAllRowSummaries()
	if err != nil {
		return fmt.Errorf("failed to retrieve row summaries: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d runs to: %s\n", len(runs), runsFile)

	rowsFile := outputFile + ".rows.parquet"
	if err := parquet.WriteRowSummariesParquet(parquet.ConvertRowSummaryRecords(rows), rowsFile); err != nil {
		return fmt.Errorf("failed to write row summaries: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d row summaries to: %s\n", len(rows), rowsFile)

	return nil
}
