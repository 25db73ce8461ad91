package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/upec/tracklane/core"
	"github.com/upec/tracklane/core/algo"
	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// taskTracks is the assign_tracks answer for one task.
type taskTracks struct {
	TaskKey        string         `json:"taskKey"`
	Window         *schema.Window `json:"window,omitempty"`
	MaxConcurrency int            `json:"maxConcurrency"`
	Tracks         []schema.Track `json:"tracks"`
}

// taskBuckets is the bucket_dates answer for one task.
type taskBuckets struct {
	TaskKey string                        `json:"taskKey"`
	PerDate map[string][]*schema.Interval `json:"perDate"`
}

// dateBuckets is the bucket_dates answer.
type dateBuckets struct {
	CurrentDate string        `json:"currentDate"`
	DateColumns []string      `json:"dateColumns"`
	Rows        []taskBuckets `json:"rows"`
}

func (h *toolHandler) handleBuildTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, errResult := h.layout(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(result), nil
}

func (h *toolHandler) handleAssignTracks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, errResult := h.layout(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	out := make([]taskTracks, 0, len(result.Rows))
	for _, row := range result.Rows {
		var intervals []*schema.Interval
		for _, track := range row.Tracks {
			for _, p := range track.Intervals {
				intervals = append(intervals, p.Interval)
			}
		}
		out = append(out, taskTracks{
			TaskKey:        row.TaskKey,
			Window:         row.Window,
			MaxConcurrency: algo.MaxConcurrency(intervals),
			Tracks:         row.Tracks,
		})
	}
	return jsonResult(out), nil
}

func (h *toolHandler) handleBucketDates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, errResult := h.layout(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	out := dateBuckets{
		CurrentDate: result.CurrentDate,
		DateColumns: result.DateColumns,
		Rows:        make([]taskBuckets, 0, len(result.Rows)),
	}
	for _, row := range result.Rows {
		out.Rows = append(out.Rows, taskBuckets{TaskKey: row.TaskKey, PerDate: row.PerDate})
	}
	return jsonResult(out), nil
}

func (h *toolHandler) handleMonthCalendar(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.RefreshNow(time.Now())
	if err := contract.RevalidateLayout(cfg, "", "", request.GetString("now", ""), 0); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid calendar parameters: %v", err)), nil
	}
	if m := request.GetString("month", ""); m != "" {
		month, err := contract.ParseMonth(m, cfg.Location)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid calendar parameters: %v", err)), nil
		}
		cfg.Month = month
	}

	raw, err := loadRequestTasks(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("input failed: %v", err)), nil
	}
	return jsonResult(core.CalendarForTasks(cfg, raw)), nil
}

func (h *toolHandler) handleColorFor(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateLayout(cfg, request.GetString("color_strategy", ""), "", "", request.GetInt("palette_size", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid color parameters: %v", err)), nil
	}

	var keys []string
	for k := range strings.SplitSeq(request.GetString("keys", ""), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return mcp.NewToolResultError("keys must name at least one grouping key"), nil
	}
	return jsonResult(core.GetColorResults(cfg, keys)), nil
}

// layout applies the request overrides, loads the tasks and builds the timeline.
// A non-nil tool result carries the failure back to the client.
func (h *toolHandler) layout(ctx context.Context, request mcp.CallToolRequest) (schema.TimelineResult, *mcp.CallToolResult) {
	cfg := h.baseCfg.Clone()
	cfg.RefreshNow(time.Now())
	err := contract.RevalidateLayout(cfg,
		request.GetString("color_strategy", ""),
		request.GetString("window", ""),
		request.GetString("now", ""),
		request.GetInt("palette_size", 0),
	)
	if err != nil {
		return schema.TimelineResult{}, mcp.NewToolResultError(fmt.Sprintf("invalid layout parameters: %v", err))
	}

	raw, err := loadRequestTasks(cfg, request)
	if err != nil {
		return schema.TimelineResult{}, mcp.NewToolResultError(fmt.Sprintf("input failed: %v", err))
	}
	return core.LayoutTasks(core.WithSuppressHeader(ctx), cfg, h.mgr, raw), nil
}

// loadRequestTasks reads the inline document, or the file named by input_path.
func loadRequestTasks(cfg *contract.Config, request mcp.CallToolRequest) ([]schema.RawTaskIntervals, error) {
	if f := request.GetString("input_format", ""); f != "" {
		format := schema.InputFormat(strings.ToLower(f))
		if _, ok := schema.ValidInputFormats[format]; !ok {
			return nil, fmt.Errorf("invalid input format '%s'. must be auto, json, yaml, csv", f)
		}
		cfg.InputFormat = format
	}
	if tasks := request.GetString("tasks", ""); tasks != "" {
		cfg.TaskFilter = nil
		for k := range strings.SplitSeq(tasks, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.TaskFilter = append(cfg.TaskFilter, k)
			}
		}
	}

	if doc := request.GetString("input", ""); doc != "" {
		return core.DecodeTasks(cfg, strings.NewReader(doc))
	}
	if path := request.GetString("input_path", ""); path != "" {
		cfg.InputPath = path
		return core.LoadTasks(cfg)
	}
	return nil, errors.New("either input or input_path is required")
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
