// Package contract provides interfaces and shared utilities for tracklane's internal architecture.
package contract

import (
	"time"

	"github.com/upec/tracklane/schema"
)

// CacheManager defines the interface for managing the optional stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cached layout results.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for recording layout runs.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordRows stores the per-task summaries of a run
	RecordRows(runID int64, rows []schema.RowSummary) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totals schema.RunTotals) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns retrieves every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRowSummaries retrieves every recorded row summary
	GetAllRowSummaries() ([]schema.RowSummaryRecord, error)

	// Close closes the underlying connection
	Close() error
}
