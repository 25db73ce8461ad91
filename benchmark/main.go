// Package main provides a performance benchmarking tool for the tracklane CLI.
// It generates synthetic slot documents of increasing size, times each view
// several times with and without the SQLite layout cache, treating the first
// cached run as cold and averaging the rest as warm, and writes the results
// as CSV for performance analysis and documentation.
//
// Prerequisites:
// - tracklane binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated inputs and the benchmark cache (default: a temp dir)
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// Dataset describes one generated input document.
type Dataset struct {
	Name         string
	Tasks        int
	SlotsPerTask int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Datasets    []Dataset
	Commands    []string
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "tracklane-bench-")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets: []Dataset{
			{Name: "small", Tasks: 20, SlotsPerTask: 10},
			{Name: "medium", Tasks: 500, SlotsPerTask: 40},
			{Name: "large", Tasks: 5000, SlotsPerTask: 60},
		},
		Commands: []string{"layout", "tracks", "dates"},
	}

	if _, err := exec.LookPath("tracklane"); err != nil {
		fmt.Printf("Prerequisites check failed: tracklane binary not found in PATH\n")
		os.Exit(1)
	}

	inputs, err := generateInputs(config)
	if err != nil {
		fmt.Printf("Failed to generate inputs: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, inputs)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

type slotDoc struct {
	ID        int    `json:"id"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Status    string `json:"status"`
	Procedure struct {
		ProcedureNo string `json:"procedureNo"`
	} `json:"procedure"`
}

type taskDoc struct {
	TaskNo    string    `json:"taskNo"`
	Timeslots []slotDoc `json:"timeslots"`
}

// generateInputs writes one JSON document per dataset. A fixed seed keeps the
// documents identical between benchmark sessions.
func generateInputs(config BenchmarkConfig) (map[string]string, error) {
	rng := rand.New(rand.NewPCG(2024, 3))
	base := time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)
	statuses := []string{"pending", "running", "done"}
	inputs := make(map[string]string, len(config.Datasets))

	for _, ds := range config.Datasets {
		tasks := make([]taskDoc, ds.Tasks)
		id := 0
		for t := range tasks {
			tasks[t].TaskNo = fmt.Sprintf("T-%05d", t)
			for range ds.SlotsPerTask {
				id++
				slot := slotDoc{ID: id, Status: statuses[rng.IntN(len(statuses))]}
				slot.Procedure.ProcedureNo = fmt.Sprintf("P%d", 10*(1+rng.IntN(12)))
				// One slot in twenty has no times at all
				if rng.IntN(20) > 0 {
					start := base.Add(time.Duration(rng.IntN(7*24*60)) * time.Minute)
					end := start.Add(time.Duration(15+rng.IntN(8*60)) * time.Minute)
					slot.StartTime = start.Format("2006-01-02T15:04")
					slot.EndTime = end.Format("2006-01-02T15:04")
				}
				tasks[t].Timeslots = append(tasks[t].Timeslots, slot)
			}
		}

		data, err := json.Marshal(map[string]any{"content": tasks})
		if err != nil {
			return nil, err
		}
		path := filepath.Join(config.WorkDir, ds.Name+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		inputs[ds.Name] = path
		fmt.Printf("Generated %s: %d tasks, %d slots (%d bytes)\n", ds.Name, ds.Tasks, ds.Tasks*ds.SlotsPerTask, len(data))
	}
	return inputs, nil
}

// runBenchmarks executes all benchmark tests across generated datasets
func runBenchmarks(config BenchmarkConfig, inputs map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, ds := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", ds.Name)
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, ds.Name, inputs[ds.Name], command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, input, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataset)

	cacheDB := filepath.Join(config.WorkDir, fmt.Sprintf("cache-%s-%s.db", dataset, command))
	_ = os.Remove(cacheDB)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, input, command, cacheBackend, cacheDB, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a tracklane command multiple times with the specified
// cache backend and returns the cold time and the warm times
func runBenchmark(config BenchmarkConfig, input, command, cacheBackend, cacheDB string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command, input,
		"--now", "2024-03-10T12:00",
		"--timezone", "UTC",
		"--workers", fmt.Sprint(config.Workers),
		"--width", "120",
		"--color", "no",
		"--cache-backend", cacheBackend,
	}
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheDB)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("tracklane", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Layout completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("tracklane_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
