package core

import (
	"runtime"
	"sync"
	"time"

	"github.com/upec/tracklane/core/algo"
	"github.com/upec/tracklane/schema"
)

// BuildOptions controls one timeline build.
type BuildOptions struct {
	Now         time.Time // processing instant; zero means time.Now()
	Strategy    schema.ColorStrategy
	PaletteSize int
	Window      schema.WindowScope
	Workers     int
}

// GroupTasks merges inputs that share a task key, keeping first-appearance order.
// Interval values are copied once here so later stages can share pointers.
func GroupTasks(raw []schema.RawTaskIntervals) []schema.Task {
	index := make(map[string]int, len(raw))
	var tasks []schema.Task
	for _, r := range raw {
		pos, ok := index[r.TaskKey]
		if !ok {
			pos = len(tasks)
			index[r.TaskKey] = pos
			tasks = append(tasks, schema.Task{TaskKey: r.TaskKey, Intervals: []*schema.Interval{}})
		}
		for i := range r.Intervals {
			iv := r.Intervals[i]
			tasks[pos].Intervals = append(tasks[pos].Intervals, &iv)
		}
	}
	return tasks
}

// Build produces the rendering model for a set of tasks. The current date is
// captured once so every fallback in the call agrees. Rows follow input task
// order regardless of worker scheduling.
func Build(raw []schema.RawTaskIntervals, opts BuildOptions) schema.TimelineResult {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := schema.DateOf(now)

	tasks := GroupTasks(raw)
	columns := algo.ExtractDates(tasks, today)
	colors := algo.NewColorAssigner(opts.Strategy, opts.PaletteSize)

	var shared *schema.Window
	if opts.Window == schema.SharedWindow {
		var all []*schema.Interval
		for _, task := range tasks {
			all = append(all, task.Intervals...)
		}
		w := algo.ComputeWindow(all, now)
		shared = &w
	}

	b := &rowBuilder{columns: columns, today: today, now: now, colors: colors, shared: shared}
	return schema.TimelineResult{
		CurrentDate: today,
		DateColumns: columns,
		Rows:        b.buildAll(tasks, opts.Workers),
		Strategy:    colors.Strategy(),
	}
}

// rowBuilder holds the read-only state shared by row workers.
type rowBuilder struct {
	columns []string
	today   string
	now     time.Time
	colors  *algo.ColorAssigner
	shared  *schema.Window
}

// buildAll lays out every task using a pool of workers.
func (b *rowBuilder) buildAll(tasks []schema.Task, workers int) []schema.TimelineRow {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := make([]schema.TimelineRow, len(tasks))
	jobs := make(chan int, len(tasks))
	var wg sync.WaitGroup
	for range min(workers, max(len(tasks), 1)) {
		wg.Go(func() {
			for i := range jobs {
				rows[i] = b.buildRow(tasks[i])
			}
		})
	}
	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return rows
}

// buildRow lays out a single task.
func (b *rowBuilder) buildRow(task schema.Task) schema.TimelineRow {
	buckets := algo.BucketByDate(task.Intervals, b.today)
	perDate := make(map[string][]*schema.Interval, len(b.columns))
	for _, date := range b.columns {
		if members, ok := buckets[date]; ok {
			perDate[date] = members
		} else {
			perDate[date] = []*schema.Interval{}
		}
	}

	row := schema.TimelineRow{
		TaskKey: task.TaskKey,
		PerDate: perDate,
		Tracks:  []schema.Track{},
		Colors:  map[string]string{},
	}
	if len(task.Intervals) == 0 {
		return row
	}

	window := algo.ComputeWindow(task.Intervals, b.now)
	if b.shared != nil {
		window = *b.shared
	}
	row.Window = &window
	row.Tracks = algo.AssignTracks(task.Intervals, window)
	for t := range row.Tracks {
		for j := range row.Tracks[t].Intervals {
			p := &row.Tracks[t].Intervals[j]
			p.Color = b.colors.IntervalColor(p.Interval)
			row.Colors[p.ColorKey()] = p.Color
		}
	}
	return row
}
