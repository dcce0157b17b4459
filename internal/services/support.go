package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"sweepdu/internal/domain"
)

type rootInfo struct {
	path string
	info os.FileInfo
}

// validateRoots stats every root before any work starts; one bad root fails
// the whole request.
func validateRoots(paths []string) ([]rootInfo, error) {
	if len(paths) == 0 {
		return nil, &domain.InvalidRootError{Path: "", Err: errors.New("no paths given")}
	}
	roots := make([]rootInfo, 0, len(paths))
	for _, path := range paths {
		clean := filepath.Clean(path)
		info, err := os.Stat(clean)
		if err != nil {
			return nil, &domain.InvalidRootError{Path: path, Err: err}
		}
		roots = append(roots, rootInfo{path: clean, info: info})
	}
	return roots, nil
}

func kindFromMode(mode fs.FileMode) domain.EntryKind {
	switch {
	case mode.IsRegular():
		return domain.KindFile
	case mode.IsDir():
		return domain.KindDir
	case mode&fs.ModeSymlink != 0:
		return domain.KindSymlink
	default:
		return domain.KindOther
	}
}

func sizeFor(metric domain.SizeMetric, info os.FileInfo, stat statInfo) int64 {
	if metric == domain.SizeOnDisk && stat.ok {
		return stat.diskUsage
	}
	return info.Size()
}

func workerCount(threads int) int {
	if threads > 0 {
		return threads
	}
	return maxInt(1, runtime.NumCPU())
}

func reason(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Sprintf("%s: %v", pathErr.Op, pathErr.Err)
	}
	return err.Error()
}

func isPermissionErr(err error) bool {
	return errors.Is(err, os.ErrPermission)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// measureFile returns the size a non-directory contributes and whether it is
// a hardlink that was already counted. Symlinks to regular files are measured
// through their target when follow is set.
func measureFile(path string, info os.FileInfo, metric domain.SizeMetric, follow, countHardLinks bool, dedup *Deduper) (int64, bool) {
	stat := statOf(info)
	if follow && info.Mode()&fs.ModeSymlink != 0 {
		if target, err := os.Stat(path); err == nil && target.Mode().IsRegular() {
			info = target
			stat = statOf(target)
		}
	}
	size := sizeFor(metric, info, stat)
	if !countHardLinks && stat.ok && stat.nlink > 1 && !dedup.Add(stat.device, stat.inode) {
		return size, true
	}
	return size, false
}
