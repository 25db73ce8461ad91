// Package core has the timeline layout model and the entry points that load
// input, build layouts and hand results to the output writers.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/upec/tracklane/core/algo"
	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/internal/intake"
	"github.com/upec/tracklane/internal/outwriter"
	"github.com/upec/tracklane/schema"
)

// ExecutorFunc defines the function signature for executing the different views.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteLayout builds the full timeline and prints both the date matrix and the tracks.
func ExecuteLayout(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetLayoutResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintLayout(result, cfg, duration)
}

// ExecuteTracks builds the timeline and prints only the per-task tracks.
func ExecuteTracks(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetLayoutResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintTracks(result, cfg, duration)
}

// ExecuteDates builds the timeline and prints only the date buckets.
func ExecuteDates(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetLayoutResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintDates(result, cfg, duration)
}

// ExecuteCalendar prints the configured month as a week grid.
func ExecuteCalendar(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	result, duration, err := GetCalendarResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintCalendar(result, cfg, duration)
}

// ExecuteColors prints the palette slot of every configured key.
func ExecuteColors(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	if len(cfg.ColorKeys) == 0 {
		return errors.New("--key must name at least one grouping key")
	}
	return outwriter.PrintColors(GetColorResults(cfg, cfg.ColorKeys), cfg)
}

// GetLayoutResults loads the configured input and builds its timeline.
func GetLayoutResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.TimelineResult, time.Duration, error) {
	start := time.Now()
	raw, err := LoadTasks(cfg)
	if err != nil {
		return schema.TimelineResult{}, 0, err
	}
	result := LayoutTasks(ctx, cfg, mgr, raw)
	return result, time.Since(start), nil
}

// GetCalendarResults loads the configured input and lays out cfg.Month.
func GetCalendarResults(ctx context.Context, cfg *contract.Config) (schema.CalendarResult, time.Duration, error) {
	start := time.Now()
	raw, err := LoadTasks(cfg)
	if err != nil {
		return schema.CalendarResult{}, 0, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogCalendarHeader(cfg, len(raw))
	}
	return CalendarForTasks(cfg, raw), time.Since(start), nil
}

// GetColorResults describes the palette slot of each key under the configured strategy.
func GetColorResults(cfg *contract.Config, keys []string) []schema.ColorResult {
	colors := algo.NewColorAssigner(cfg.ColorStrategy, cfg.PaletteSize)
	results := make([]schema.ColorResult, 0, len(keys))
	for _, key := range keys {
		results = append(results, colors.Describe(key))
	}
	return results
}

// LoadTasks reads the configured input, reports field warnings and applies the task filter.
func LoadTasks(cfg *contract.Config) ([]schema.RawTaskIntervals, error) {
	res, err := intake.LoadFile(cfg.InputPath, cfg.InputFormat, IntakeOptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to load input: %w", err)
	}
	return acceptIntake(cfg, res), nil
}

// DecodeTasks is LoadTasks for a document that is already in memory.
func DecodeTasks(cfg *contract.Config, r io.Reader) ([]schema.RawTaskIntervals, error) {
	res, err := intake.Decode(r, cfg.InputFormat, IntakeOptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return acceptIntake(cfg, res), nil
}

func acceptIntake(cfg *contract.Config, res intake.Result) []schema.RawTaskIntervals {
	for _, w := range res.Warnings {
		contract.LogWarn("Degraded input field", w)
	}
	return FilterTasks(res.Tasks, cfg.TaskFilter)
}

// LayoutTasks builds the timeline for tasks that are already loaded. The cache
// and run history are consulted when the manager provides them.
func LayoutTasks(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, raw []schema.RawTaskIntervals) schema.TimelineResult {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogLayoutHeader(cfg, len(raw))
	}
	ctx = contextWithCacheManager(ctx, mgr)
	ctx = beginRunTracking(ctx, cfg, mgr)
	result := cachedBuild(mgr, raw, BuildOptionsFromConfig(cfg))
	finishRunTracking(ctx, result)
	return result
}

// CalendarForTasks lays out cfg.Month for tasks that are already loaded.
func CalendarForTasks(cfg *contract.Config, raw []schema.RawTaskIntervals) schema.CalendarResult {
	var intervals []*schema.Interval
	for _, task := range GroupTasks(raw) {
		intervals = append(intervals, task.Intervals...)
	}
	month := cfg.Month
	if month.IsZero() {
		month = cfg.Now
	}
	return BuildCalendar(month, intervals, cfg.Now)
}

// FilterTasks keeps the tasks whose key is listed. An empty filter keeps everything.
func FilterTasks(raw []schema.RawTaskIntervals, keys []string) []schema.RawTaskIntervals {
	if len(keys) == 0 {
		return raw
	}
	var kept []schema.RawTaskIntervals
	for _, task := range raw {
		if slices.Contains(keys, task.TaskKey) {
			kept = append(kept, task)
		}
	}
	return kept
}

// BuildOptionsFromConfig maps the validated config onto build options.
func BuildOptionsFromConfig(cfg *contract.Config) BuildOptions {
	return BuildOptions{
		Now:         cfg.Now,
		Strategy:    cfg.ColorStrategy,
		PaletteSize: cfg.PaletteSize,
		Window:      cfg.Window,
		Workers:     cfg.Workers,
	}
}

// IntakeOptionsFromConfig maps the validated config onto input decoding options.
func IntakeOptionsFromConfig(cfg *contract.Config) intake.Options {
	return intake.Options{
		Location:     cfg.Location,
		PlanFallback: cfg.PlanFallback,
	}
}
