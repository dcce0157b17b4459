package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"golang.org/x/sync/errgroup"

	"sweepdu/internal/domain"
)

// Aggregate walks every root and sums what it holds without building a tree.
// Roots are walked concurrently, each with a parallel walk, and share a
// single hardlink registry. Totals keep the order of req.Roots.
func Aggregate(ctx context.Context, req AggregateRequest, logger *slog.Logger) (AggregateResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	roots, err := validateRoots(req.Roots)
	if err != nil {
		return AggregateResult{}, err
	}

	progress := NewProgress()
	dedup := NewDeduper()
	totals := make([]RootTotal, len(roots))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workerCount(req.Threads))
	for position, root := range roots {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			total := RootTotal{Path: root.path, IsFile: !root.info.IsDir()}
			if total.IsFile {
				size, duplicate := measureFile(root.path, root.info, req.SizeMetric, req.FollowSymlinkedFiles, req.CountHardLinks, dedup)
				if duplicate {
					size = 0
				}
				progress.addFile(root.path, size)
				total.Bytes = size
			} else {
				var walkErr error
				total.Bytes, total.Errors, walkErr = walkRoot(groupCtx, root.path, req, dedup, progress, logger)
				if walkErr != nil {
					return fmt.Errorf("walking %s: %w", root.path, walkErr)
				}
			}
			totals[position] = total
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return AggregateResult{}, err
	}

	result := AggregateResult{Roots: totals}
	for _, total := range totals {
		result.Total += total.Bytes
	}
	result.Stats = progress.Snapshot(true)
	result.Duration = time.Since(start)
	result.Stats.Elapsed = result.Duration
	logger.Info("aggregate finished", "roots", len(result.Roots), "bytes", result.Total, "errors", result.Errors())
	return result, nil
}

func walkRoot(ctx context.Context, root string, req AggregateRequest, dedup *Deduper, progress *Progress, logger *slog.Logger) (int64, int64, error) {
	var bytes, failures atomic.Int64
	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: workerCount(req.Threads),
	}
	walkErr := fastwalk.Walk(conf, root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			failures.Add(1)
			progress.fail(path, err)
			logger.Debug("walk error", "path", path, "err", err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if path != root {
				progress.addDir(path)
			}
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			failures.Add(1)
			progress.fail(path, err)
			return nil
		}
		if kindFromMode(info.Mode()) == domain.KindOther {
			progress.addUnsupported()
			return nil
		}
		size, duplicate := measureFile(path, info, req.SizeMetric, req.FollowSymlinkedFiles, req.CountHardLinks, dedup)
		if duplicate {
			size = 0
		}
		progress.addFile(path, size)
		bytes.Add(size)
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, fs.SkipDir) {
		return bytes.Load(), failures.Load(), walkErr
	}
	return bytes.Load(), failures.Load(), nil
}

// Errors is the number of I/O errors across all roots.
func (result AggregateResult) Errors() int64 {
	var total int64
	for _, root := range result.Roots {
		total += root.Errors
	}
	return total
}

// BySize returns the root totals ordered by ascending size. Equal sizes keep
// their command-line order.
func (result AggregateResult) BySize() []RootTotal {
	ordered := append([]RootTotal(nil), result.Roots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Bytes < ordered[j].Bytes
	})
	return ordered
}
