package profiler

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMetric(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 3})
	for _, v := range []float64{4, 1, 7, 10} {
		rp.RecordMetric("mean_entropy", v)
	}

	stats, ok := rp.Metric("mean_entropy")
	require.True(t, ok)
	assert.Equal(t, int64(4), stats.Count)
	assert.InDelta(t, 6.0, stats.Avg, 1e-9, "average over the last 3 samples")
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 10.0, stats.Max)

	_, ok = rp.Metric("missing")
	assert.False(t, ok)
}

func TestOperationTimings(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rp.Time("filter", func() { time.Sleep(time.Millisecond) })
		}()
	}
	wg.Wait()

	stats, ok := rp.Operation("filter")
	require.True(t, ok)
	assert.Equal(t, int64(8), stats.Count)
	assert.GreaterOrEqual(t, stats.Min, time.Millisecond)
	assert.GreaterOrEqual(t, stats.Max, stats.Avg)
	assert.GreaterOrEqual(t, stats.Avg, stats.Min)
}

func TestReport(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})
	stop := rp.StartOperation("decode")
	stop()
	rp.RecordMetric("megapixels", 2.5)

	var buf bytes.Buffer
	rp.Report(&buf)
	out := buf.String()
	assert.Contains(t, out, "PROFILER REPORT")
	assert.Contains(t, out, "decode: avg=")
	assert.Contains(t, out, "megapixels: avg=2.50")
}

func TestStartStop(t *testing.T) {
	var buf syncBuffer
	rp := NewRuntimeProfiler(ProfilingOptions{ReportInterval: 5 * time.Millisecond, Output: &buf})
	rp.Start()
	rp.Start()
	time.Sleep(30 * time.Millisecond)
	rp.Stop()
	rp.Stop()

	assert.Contains(t, buf.String(), "PROFILER REPORT")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "3.0 MB", formatBytes(3<<20))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
