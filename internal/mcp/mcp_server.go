// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/upec/tracklane/internal/contract"
)

// NewMCPServer initializes and configures the tracklane MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Tracklane Layout Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: build_timeline ---
	s.AddTool(mcp.NewTool("build_timeline",
		mcp.WithDescription("Build the full timeline layout: date columns, per-date buckets, tracks, positions and colors for every task."),
		withInputArgs(),
		withLayoutArgs(),
	), h.handleBuildTimeline)

	// --- 2. Tool: assign_tracks ---
	s.AddTool(mcp.NewTool("assign_tracks",
		mcp.WithDescription("Pack each task's intervals into non-overlapping tracks with percentage positions."),
		withInputArgs(),
		withLayoutArgs(),
	), h.handleAssignTracks)

	// --- 3. Tool: bucket_dates ---
	s.AddTool(mcp.NewTool("bucket_dates",
		mcp.WithDescription("Group each task's intervals by the calendar dates they touch."),
		withInputArgs(),
		mcp.WithString("now", mcp.Description("Processing instant as ISO-8601 (defaults to the server's configured now).")),
	), h.handleBucketDates)

	// --- 4. Tool: month_calendar ---
	s.AddTool(mcp.NewTool("month_calendar",
		mcp.WithDescription("Lay out one month as Monday-first ISO weeks with the intervals touching each day."),
		withInputArgs(),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM (defaults to the month of now).")),
		mcp.WithString("now", mcp.Description("Processing instant as ISO-8601.")),
	), h.handleMonthCalendar)

	// --- 5. Tool: color_for ---
	s.AddTool(mcp.NewTool("color_for",
		mcp.WithDescription("Report the palette slot and color chosen for one or more grouping keys."),
		mcp.WithString("keys", mcp.Description("Comma-separated grouping keys."), mcp.Required()),
		mcp.WithString("color_strategy", mcp.Description("Color strategy. Defaults to 'hash'."), mcp.Enum("hash", "band")),
		mcp.WithNumber("palette_size", mcp.Description("Palette size between 8 and 10.")),
	), h.handleColorFor)

	return s
}

// withInputArgs declares the two ways a tool receives its task document.
func withInputArgs() mcp.ToolOption {
	return func(t *mcp.Tool) {
		mcp.WithString("input", mcp.Description("Task document as JSON, YAML or CSV text."))(t)
		mcp.WithString("input_path", mcp.Description("Path to a task document, used when input is empty."))(t)
		mcp.WithString("input_format", mcp.Description("Input format. Defaults to auto detection."), mcp.Enum("auto", "json", "yaml", "csv"))(t)
		mcp.WithString("tasks", mcp.Description("Comma-separated task keys to keep."))(t)
	}
}

// withLayoutArgs declares the options that change a layout.
func withLayoutArgs() mcp.ToolOption {
	return func(t *mcp.Tool) {
		mcp.WithString("now", mcp.Description("Processing instant as ISO-8601 (defaults to the server's configured now)."))(t)
		mcp.WithString("color_strategy", mcp.Description("Color strategy. Defaults to 'hash'."), mcp.Enum("hash", "band"))(t)
		mcp.WithString("window", mcp.Description("Window scope for positions. Defaults to 'task'."), mcp.Enum("task", "shared"))(t)
		mcp.WithNumber("palette_size", mcp.Description("Palette size between 8 and 10."))(t)
	}
}

// StartMCPServer starts the tracklane MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
