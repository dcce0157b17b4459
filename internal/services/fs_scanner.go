package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"sweepdu/internal/domain"
)

const readBatchSize = 512

type FSScanner struct {
	mu        sync.RWMutex
	progress  *Progress
	cancelled atomic.Bool
	logger    *slog.Logger
}

type scanJob struct {
	index int
	path  string
}

// scanRun is the state shared by the workers of one Scan call.
type scanRun struct {
	req       ScanRequest
	tree      *domain.Tree
	dedup     *Deduper
	progress  *Progress
	queue     chan scanJob
	pending   sync.WaitGroup
	cancelled *atomic.Bool
	logger    *slog.Logger
}

func NewFSScanner(logger *slog.Logger) *FSScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSScanner{
		progress: NewProgress(),
		logger:   logger,
	}
}

func (scanner *FSScanner) Progress() domain.ScanStats {
	scanner.mu.RLock()
	defer scanner.mu.RUnlock()
	return scanner.progress.Snapshot(false)
}

// Cancel stops the running scan from dispatching more directories. Units
// already being listed stop at their next batch boundary. A Cancel that
// arrives before Scan starts applies to that scan.
func (scanner *FSScanner) Cancel() {
	scanner.cancelled.Store(true)
}

func (scanner *FSScanner) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	start := time.Now()
	roots, err := validateRoots(req.Roots)
	if err != nil {
		return ScanResult{}, err
	}

	progress := NewProgress()
	scanner.mu.Lock()
	scanner.progress = progress
	scanner.mu.Unlock()
	defer scanner.cancelled.Store(false)
	if ctx.Err() != nil {
		scanner.cancelled.Store(true)
	}
	stop := context.AfterFunc(ctx, scanner.Cancel)
	defer stop()

	workers := workerCount(req.Threads)
	run := &scanRun{
		req:       req,
		tree:      domain.NewTree(req.EmptyDirs),
		dedup:     NewDeduper(),
		progress:  progress,
		queue:     make(chan scanJob, workers),
		cancelled: &scanner.cancelled,
		logger:    scanner.logger,
	}
	scanner.logger.Debug("scan started", "roots", len(roots), "workers", workers, "metric", req.SizeMetric)

	var workersDone sync.WaitGroup
	for i := 0; i < workers; i++ {
		workersDone.Add(1)
		go func() {
			defer workersDone.Done()
			for job := range run.queue {
				run.process(job)
			}
		}()
	}
	for _, root := range roots {
		run.addRoot(root)
	}
	go func() {
		run.pending.Wait()
		close(run.queue)
	}()
	workersDone.Wait()

	truncated := scanner.cancelled.Load()
	run.tree.SetTruncated(truncated)
	stats := progress.Snapshot(true)
	stats.Elapsed = time.Since(start)
	stats.Truncated = truncated
	scanner.logger.Info("scan finished",
		"entries", stats.Entries,
		"bytes", stats.Bytes,
		"failures", stats.FailureCount,
		"truncated", truncated,
		"elapsed", stats.Elapsed,
	)
	return ScanResult{Tree: run.tree, Stats: stats, Duration: stats.Elapsed}, nil
}

func (run *scanRun) addRoot(root rootInfo) {
	entry := run.entryFor(root.path, root.info)
	entry.Name = root.path
	index := run.tree.AddRoot(entry)
	if entry.Kind != domain.KindDir {
		return
	}
	if run.cancelled.Load() {
		run.tree.MarkIncomplete(index)
		return
	}
	run.pending.Add(1)
	run.queue <- scanJob{index: index, path: root.path}
}

// dispatch queues a directory for any worker. When the queue is full the
// calling worker lists the directory itself, so the queue stays bounded and
// workers never wait on each other.
func (run *scanRun) dispatch(job scanJob) {
	if run.cancelled.Load() {
		run.tree.MarkIncomplete(job.index)
		return
	}
	run.pending.Add(1)
	select {
	case run.queue <- job:
	default:
		run.process(job)
	}
}

func (run *scanRun) process(job scanJob) {
	defer run.pending.Done()
	dir, err := os.Open(job.path)
	if err != nil {
		run.fail(job.index, job.path, err)
		return
	}
	defer dir.Close()

	for {
		if run.cancelled.Load() {
			run.tree.MarkIncomplete(job.index)
			return
		}
		list, readErr := dir.ReadDir(readBatchSize)
		if len(list) > 0 {
			run.attach(job, list)
		}
		if errors.Is(readErr, io.EOF) {
			return
		}
		if readErr != nil {
			run.fail(job.index, job.path, readErr)
			return
		}
	}
}

func (run *scanRun) attach(job scanJob, list []os.DirEntry) {
	entries := make([]domain.Entry, 0, len(list))
	for _, item := range list {
		path := filepath.Join(job.path, item.Name())
		info, err := item.Info()
		if err != nil {
			ioErr := &domain.IOError{Path: path, Err: err}
			run.progress.fail(path, err)
			run.logger.Debug("stat failed", "path", path, "err", err)
			entries = append(entries, domain.Entry{
				Name: item.Name(),
				Kind: kindFromMode(item.Type()),
				Err:  ioErr,
			})
			continue
		}
		entries = append(entries, run.entryFor(path, info))
	}
	indices := run.tree.AttachChildren(job.index, entries)
	for position, index := range indices {
		entry := entries[position]
		if entry.Kind == domain.KindDir && entry.Err == nil {
			run.dispatch(scanJob{index: index, path: filepath.Join(job.path, entry.Name)})
		}
	}
}

func (run *scanRun) entryFor(path string, info os.FileInfo) domain.Entry {
	stat := statOf(info)
	entry := domain.Entry{
		Name:    info.Name(),
		Kind:    kindFromMode(info.Mode()),
		ModTime: info.ModTime(),
		Device:  stat.device,
		Inode:   stat.inode,
	}
	switch entry.Kind {
	case domain.KindDir:
		run.progress.addDir(path)
		return entry
	case domain.KindOther:
		entry.Unsupported = true
		run.progress.addUnsupported()
		run.logger.Debug("unsupported entry", "err", &domain.UnsupportedEntryError{Path: path, Mode: info.Mode()})
		return entry
	}
	size, duplicate := measureFile(path, info, run.req.SizeMetric, run.req.FollowSymlinkedFiles, run.req.CountHardLinks, run.dedup)
	entry.Size = size
	entry.Duplicate = duplicate
	if duplicate {
		run.progress.addFile(path, 0)
		return entry
	}
	run.progress.addFile(path, size)
	return entry
}

func (run *scanRun) fail(index int, path string, err error) {
	run.tree.MarkError(index, &domain.IOError{Path: path, Err: err})
	run.progress.fail(path, err)
	if isPermissionErr(err) {
		run.logger.Debug("permission denied", "path", path)
		return
	}
	run.logger.Warn("read failed", "path", path, "err", err)
}
