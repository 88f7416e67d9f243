// Package profiler collects operation timings and custom metrics for long
// running entropy jobs (batch conversions, camera streams).
package profiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"
)

// RuntimeProfiler tracks operation timings, custom metrics and memory usage.
//
// It is safe for concurrent use: batch workers may time their stages on the
// same profiler. Periodic reports are optional; Report can be called at any
// time.
type RuntimeProfiler struct {
	reportInterval time.Duration
	maxSamples     int
	out            io.Writer

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	start   time.Time
	running bool

	memStats       runtime.MemStats
	customMetrics  map[string]*MetricTracker
	operationTimes map[string]*TimeTracker
}

// MetricTracker tracks statistics for a custom metric.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often Start emits status reports (default: 5s)
	ReportInterval time.Duration
	// MaxSamples specifies the sliding window kept per metric (default: 1000)
	MaxSamples int
	// Output receives reports (default: os.Stdout)
	Output io.Writer
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 5 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 1000
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		out:            opts.Output,
		ctx:            ctx,
		cancel:         cancel,
		start:          time.Now(),
		customMetrics:  make(map[string]*MetricTracker),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Start begins periodic reporting. Calling Start twice is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}
	rp.running = true

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()

		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.Report(rp.out)
			}
		}
	}()
}

// Stop stops periodic reporting and waits for the reporter to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.customMetrics[name]
	if !exists {
		tracker = &MetricTracker{min: value, max: value}
		rp.customMetrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	if len(tracker.values) > rp.maxSamples {
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}
	tracker.sum += value
	tracker.count++
	tracker.min = min(tracker.min, value)
	tracker.max = max(tracker.max, value)
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

// Time runs fn and records its duration under name.
func (rp *RuntimeProfiler) Time(name string, fn func()) {
	stop := rp.StartOperation(name)
	defer stop()
	fn()
}

func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		rp.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > rp.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.totalTime += duration
	tracker.count++
	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// OperationStats summarizes the timings recorded for one operation.
type OperationStats struct {
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
}

// MetricStats summarizes the values recorded for one metric.
type MetricStats struct {
	Count int64
	Avg   float64
	Min   float64
	Max   float64
}

// Operation returns the statistics of a timed operation.
func (rp *RuntimeProfiler) Operation(name string) (OperationStats, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	tracker, ok := rp.operationTimes[name]
	if !ok || len(tracker.durations) == 0 {
		return OperationStats{}, false
	}
	return OperationStats{
		Count: tracker.count,
		Avg:   tracker.totalTime / time.Duration(len(tracker.durations)),
		Min:   tracker.minTime,
		Max:   tracker.maxTime,
	}, true
}

// Metric returns the statistics of a custom metric.
func (rp *RuntimeProfiler) Metric(name string) (MetricStats, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	tracker, ok := rp.customMetrics[name]
	if !ok || len(tracker.values) == 0 {
		return MetricStats{}, false
	}
	return MetricStats{
		Count: tracker.count,
		Avg:   tracker.sum / float64(len(tracker.values)),
		Min:   tracker.min,
		Max:   tracker.max,
	}, true
}

// Report writes a status report to w.
func (rp *RuntimeProfiler) Report(w io.Writer) {
	rp.mu.Lock()
	runtime.ReadMemStats(&rp.memStats)
	rp.mu.Unlock()

	rp.mu.RLock()
	defer rp.mu.RUnlock()

	fmt.Fprintf(w, "PROFILER REPORT - %s (uptime %v)\n",
		time.Now().Format("15:04:05.000"), time.Since(rp.start).Truncate(time.Millisecond))
	fmt.Fprintf(w, "  Goroutines: %d | Heap Alloc: %s | Total Alloc: %s | GC Cycles: %d\n",
		runtime.NumGoroutine(), formatBytes(rp.memStats.HeapAlloc),
		formatBytes(rp.memStats.TotalAlloc), rp.memStats.NumGC)

	if len(rp.operationTimes) > 0 {
		fmt.Fprintf(w, "OPERATION TIMINGS:\n")
		for _, name := range sortedKeys(rp.operationTimes) {
			tracker := rp.operationTimes[name]
			if len(tracker.durations) == 0 {
				continue
			}
			avg := tracker.totalTime / time.Duration(len(tracker.durations))
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				name, avg.Truncate(time.Microsecond),
				tracker.minTime.Truncate(time.Microsecond),
				tracker.maxTime.Truncate(time.Microsecond),
				tracker.count)
		}
	}

	if len(rp.customMetrics) > 0 {
		fmt.Fprintf(w, "METRICS:\n")
		for _, name := range sortedKeys(rp.customMetrics) {
			tracker := rp.customMetrics[name]
			if len(tracker.values) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s: avg=%.2f, min=%.2f, max=%.2f, samples=%d\n",
				name, tracker.sum/float64(len(tracker.values)), tracker.min, tracker.max, tracker.count)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
