package services

import (
	"math"
	"sync"
	"sync/atomic"

	"sweepdu/internal/domain"
)

const maxRecordedFailures = 1000

// Progress holds the live counters of a scan. Writers never block on readers:
// every counter is an atomic and Snapshot copies only what it needs.
type Progress struct {
	files        atomic.Int64
	dirs         atomic.Int64
	bytes        atomic.Int64
	entries      atomic.Int64
	unsupported  atomic.Int64
	failureCount atomic.Int64
	smallest     atomic.Int64
	largest      atomic.Int64
	current      atomic.Value

	mu       sync.Mutex
	failures []domain.ScanFailure
}

func NewProgress() *Progress {
	progress := &Progress{}
	progress.smallest.Store(math.MaxInt64)
	progress.current.Store("")
	return progress
}

func (progress *Progress) addFile(path string, size int64) {
	progress.entries.Add(1)
	progress.files.Add(1)
	progress.bytes.Add(size)
	progress.current.Store(path)
	for {
		smallest := progress.smallest.Load()
		if size >= smallest || progress.smallest.CompareAndSwap(smallest, size) {
			break
		}
	}
	for {
		largest := progress.largest.Load()
		if size <= largest || progress.largest.CompareAndSwap(largest, size) {
			break
		}
	}
}

func (progress *Progress) addDir(path string) {
	progress.entries.Add(1)
	progress.dirs.Add(1)
	progress.current.Store(path)
}

func (progress *Progress) addUnsupported() {
	progress.entries.Add(1)
	progress.unsupported.Add(1)
}

func (progress *Progress) fail(path string, err error) {
	progress.failureCount.Add(1)
	progress.mu.Lock()
	defer progress.mu.Unlock()
	if len(progress.failures) < maxRecordedFailures {
		progress.failures = append(progress.failures, domain.ScanFailure{Path: path, Reason: reason(err)})
	}
}

// Snapshot returns the counters. Failures are only copied when withFailures
// is set so that redraw ticks stay cheap.
func (progress *Progress) Snapshot(withFailures bool) domain.ScanStats {
	stats := domain.ScanStats{
		Files:        progress.files.Load(),
		Dirs:         progress.dirs.Load(),
		Bytes:        progress.bytes.Load(),
		Entries:      progress.entries.Load(),
		Unsupported:  progress.unsupported.Load(),
		FailureCount: progress.failureCount.Load(),
		LargestFile:  progress.largest.Load(),
		SmallestFile: progress.smallest.Load(),
	}
	if stats.SmallestFile == math.MaxInt64 {
		stats.SmallestFile = 0
	}
	if current, ok := progress.current.Load().(string); ok {
		stats.CurrentPath = current
	}
	if withFailures {
		progress.mu.Lock()
		stats.Failures = append([]domain.ScanFailure(nil), progress.failures...)
		progress.mu.Unlock()
	}
	return stats
}
