// Package stats collects restore counters shared between the extractor and
// the presenters.
package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks restore statistics using lock-free atomic counters.
type Collector struct {
	entriesScanned  atomic.Int64
	filesExtracted  atomic.Int64
	dirsCreated     atomic.Int64
	symlinksCreated atomic.Int64
	entriesSkipped  atomic.Int64
	entriesFailed   atomic.Int64
	bytesExtracted  atomic.Int64
	bytesRead       atomic.Int64
	bytesTotal      atomic.Int64
	partsDone       atomic.Int64
	partsRemoved    atomic.Int64
	startTime       time.Time

	// Ring buffer, written only by the presenter's Tick().
	mu         sync.Mutex
	throughput [ringSize]int64 // archive bytes read per second
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	EntriesScanned  int64
	FilesExtracted  int64
	DirsCreated     int64
	SymlinksCreated int64
	EntriesSkipped  int64
	EntriesFailed   int64
	BytesExtracted  int64
	BytesRead       int64
	BytesTotal      int64
	PartsDone       int64
	PartsRemoved    int64
	Elapsed         time.Duration
}

func (c *Collector) AddEntriesScanned(n int64)  { c.entriesScanned.Add(n) }
func (c *Collector) AddFilesExtracted(n int64)  { c.filesExtracted.Add(n) }
func (c *Collector) AddDirsCreated(n int64)     { c.dirsCreated.Add(n) }
func (c *Collector) AddSymlinksCreated(n int64) { c.symlinksCreated.Add(n) }
func (c *Collector) AddEntriesSkipped(n int64)  { c.entriesSkipped.Add(n) }
func (c *Collector) AddEntriesFailed(n int64)   { c.entriesFailed.Add(n) }
func (c *Collector) AddBytesExtracted(n int64)  { c.bytesExtracted.Add(n) }
func (c *Collector) AddBytesRead(n int64)       { c.bytesRead.Add(n) }
func (c *Collector) AddBytesTotal(n int64)      { c.bytesTotal.Add(n) }
func (c *Collector) AddPartsDone(n int64)       { c.partsDone.Add(n) }
func (c *Collector) AddPartsRemoved(n int64)    { c.partsRemoved.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		EntriesScanned:  c.entriesScanned.Load(),
		FilesExtracted:  c.filesExtracted.Load(),
		DirsCreated:     c.dirsCreated.Load(),
		SymlinksCreated: c.symlinksCreated.Load(),
		EntriesSkipped:  c.entriesSkipped.Load(),
		EntriesFailed:   c.entriesFailed.Load(),
		BytesExtracted:  c.bytesExtracted.Load(),
		BytesRead:       c.bytesRead.Load(),
		BytesTotal:      c.bytesTotal.Load(),
		PartsDone:       c.partsDone.Load(),
		PartsRemoved:    c.partsRemoved.Load(),
		Elapsed:         c.Elapsed(),
	}
}

// Tick snapshots the bytes-read delta into the ring buffer. Called 1/sec by
// the presenter.
func (c *Collector) Tick() {
	current := c.bytesRead.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average archive bytes/sec over the last n seconds of
// samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// SparklineData returns up to n per-second read samples, oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return nil
	}
	data := make([]float64, count)
	for i := range count {
		data[i] = float64(c.throughput[(c.ringIdx-count+i+ringSize)%ringSize])
	}
	return data
}

// ETA estimates remaining time from the rolling speed and the archive bytes
// not yet read.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesRead.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"parts=%d entries=%d files=%d dirs=%d symlinks=%d skipped=%d failed=%d bytes=%d",
		s.PartsDone, s.EntriesScanned, s.FilesExtracted, s.DirsCreated,
		s.SymlinksCreated, s.EntriesSkipped, s.EntriesFailed, s.BytesExtracted,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
