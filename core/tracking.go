package core

import (
	"context"
	"fmt"
	"time"

	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

// beginRunTracking opens a run record when a run store is configured.
// Failures are logged and never stop the layout.
func beginRunTracking(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) context.Context {
	if mgr == nil {
		return ctx
	}
	store := mgr.GetRunStore()
	if store == nil {
		return ctx
	}
	params := map[string]any{
		"input":          cfg.InputPath,
		"color_strategy": string(cfg.ColorStrategy),
		"palette_size":   cfg.PaletteSize,
		"window":         string(cfg.Window),
		"now":            cfg.Now.Format(time.RFC3339),
		"plan_fallback":  cfg.PlanFallback,
		"workers":        cfg.Workers,
		"tasks":          cfg.TaskFilter,
	}
	runID, err := store.BeginRun(time.Now(), params)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	return withRunID(ctx, runID)
}

// finishRunTracking records row summaries and closes the run.
func finishRunTracking(ctx context.Context, result schema.TimelineResult) {
	runID, ok := getRunID(ctx)
	if !ok || runID <= 0 {
		return
	}
	mgr := cacheManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	store := mgr.GetRunStore()
	if store == nil {
		return
	}

	if err := store.RecordRows(runID, SummarizeRows(result)); err != nil {
		logTrackingError("RecordRows", runID, err)
	}
	totals := schema.RunTotals{
		Tasks:     len(result.Rows),
		Intervals: result.IntervalCount(),
		Tracks:    result.TrackCount(),
		Dates:     len(result.DateColumns),
	}
	if err := store.EndRun(runID, time.Now(), totals); err != nil {
		logTrackingError("EndRun", runID, err)
	}
}

// SummarizeRows condenses each row to the numbers kept in run history.
func SummarizeRows(result schema.TimelineResult) []schema.RowSummary {
	summaries := make([]schema.RowSummary, 0, len(result.Rows))
	for _, row := range result.Rows {
		s := schema.RowSummary{TaskKey: row.TaskKey, Tracks: len(row.Tracks)}
		for _, track := range row.Tracks {
			s.Intervals += len(track.Intervals)
		}
		for _, date := range result.DateColumns {
			if len(row.PerDate[date]) == 0 {
				continue
			}
			if s.FirstDate == "" {
				s.FirstDate = date
			}
			s.LastDate = date
			s.Dates++
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// logTrackingError logs run tracking errors to stderr without disrupting the layout.
func logTrackingError(operation string, runID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on run %d", operation, runID), err)
}
