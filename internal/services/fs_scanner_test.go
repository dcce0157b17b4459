package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"sweepdu/internal/domain"
)

func scan(t *testing.T, req ScanRequest) ScanResult {
	t.Helper()
	result, err := NewFSScanner(nil).Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := result.Tree.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return result
}

func TestScanScenarioA(t *testing.T) {
	root := scenarioA(t)
	result := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent, Threads: 2})
	tree := result.Tree

	if got := tree.Total(); got != 35 {
		t.Fatalf("total = %d, want 35", got)
	}
	if result.Stats.Files != 3 || result.Stats.Dirs != 3 {
		t.Fatalf("stats files=%d dirs=%d, want 3 and 3", result.Stats.Files, result.Stats.Dirs)
	}
	if result.Stats.LargestFile != 20 || result.Stats.SmallestFile != 5 {
		t.Fatalf("largest=%d smallest=%d", result.Stats.LargestFile, result.Stats.SmallestFile)
	}
	if tree.Truncated() {
		t.Fatalf("complete scan marked truncated")
	}

	rootIndex := tree.Roots()[0]
	b := childNamed(t, tree, rootIndex, "B")
	b1 := childNamed(t, tree, b, "b1")
	if _, err := tree.RemoveSubtree(b1, NewFSActions(nil, false)); err != nil {
		t.Fatalf("remove b1: %v", err)
	}
	if got := tree.Total(); got != 30 {
		t.Fatalf("total after delete = %d, want 30", got)
	}
	if entry := mustEntry(t, tree, b); entry.Aggregate != 0 || entry.Removed {
		t.Fatalf("B should stay with aggregate 0, got %+v", entry)
	}
	if _, err := os.Lstat(filepath.Join(root, "B", "b1")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("b1 still on disk: %v", err)
	}
	if err := tree.Verify(); err != nil {
		t.Fatalf("verify after delete: %v", err)
	}
}

func TestScanHardlinksCountedOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), 100)
	if err := os.Link(filepath.Join(root, "f"), filepath.Join(root, "h")); err != nil {
		t.Skipf("hardlinks unsupported: %v", err)
	}

	result := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent})
	tree := result.Tree
	if got := tree.Total(); got != 100 {
		t.Fatalf("total = %d, want 100", got)
	}
	rootIndex := tree.Roots()[0]
	duplicates := 0
	for _, name := range []string{"f", "h"} {
		if mustEntry(t, tree, childNamed(t, tree, rootIndex, name)).Duplicate {
			duplicates++
		}
	}
	if duplicates != 1 {
		t.Fatalf("expected exactly one duplicate marker, got %d", duplicates)
	}

	counted := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent, CountHardLinks: true})
	if got := counted.Tree.Total(); got != 200 {
		t.Fatalf("total with hardlinks counted = %d, want 200", got)
	}
}

func TestScanUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "hidden"), 3)
	writeFile(t, filepath.Join(root, "open", "inner", "x"), 7)
	writeFile(t, filepath.Join(root, "open", "y"), 4)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent, Threads: 4})
	tree := result.Tree
	rootIndex := tree.Roots()[0]

	lockedEntry := mustEntry(t, tree, childNamed(t, tree, rootIndex, "locked"))
	if lockedEntry.Err == nil {
		t.Fatalf("locked directory has no error marker")
	}
	var ioErr *domain.IOError
	if !errors.As(lockedEntry.Err, &ioErr) || !ioErr.PermissionDenied() {
		t.Fatalf("expected permission IOError, got %v", lockedEntry.Err)
	}
	if result.Stats.FailureCount != 1 || len(result.Stats.Failures) != 1 {
		t.Fatalf("expected one failure, got %d %+v", result.Stats.FailureCount, result.Stats.Failures)
	}
	if result.Stats.Failures[0].Path != locked {
		t.Fatalf("failure path = %q, want %q", result.Stats.Failures[0].Path, locked)
	}
	if got := mustEntry(t, tree, childNamed(t, tree, rootIndex, "open")).Aggregate; got != 11 {
		t.Fatalf("sibling aggregate = %d, want 11", got)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	root := scenarioA(t)
	writeFile(t, filepath.Join(root, "A", "deep", "er", "est"), 123)
	req := ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeOnDisk, Threads: 3}

	first := scan(t, req).Tree
	second := scan(t, req).Tree
	left := mustEntry(t, first, first.Roots()[0])
	right := mustEntry(t, second, second.Roots()[0])
	if left.Aggregate != right.Aggregate || left.Count != right.Count {
		t.Fatalf("scans differ: %d/%d vs %d/%d", left.Aggregate, left.Count, right.Aggregate, right.Count)
	}
}

func TestScanSingleWorkerDeepTree(t *testing.T) {
	root := t.TempDir()
	path := root
	for depth := 0; depth < 40; depth++ {
		path = filepath.Join(path, "d")
		writeFile(t, filepath.Join(path, "f"), 1)
	}
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(root, "wide", string(rune('a'+i)), "f"), 2)
	}

	result := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent, Threads: 1})
	if got := result.Tree.Total(); got != 80 {
		t.Fatalf("total = %d, want 80", got)
	}
}

func TestScanCancelledBeforeStart(t *testing.T) {
	root := scenarioA(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewFSScanner(nil).Scan(ctx, ScanRequest{Roots: []string{root}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	tree := result.Tree
	if !tree.Truncated() || !result.Stats.Truncated {
		t.Fatalf("cancelled scan not truncated")
	}
	if !mustEntry(t, tree, tree.Roots()[0]).Incomplete {
		t.Fatalf("undispatched root not marked incomplete")
	}
	if err := tree.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestScanHonorsCancelBeforeScan(t *testing.T) {
	root := scenarioA(t)
	scanner := NewFSScanner(nil)
	scanner.Cancel()

	result, err := scanner.Scan(context.Background(), ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !result.Tree.Truncated() {
		t.Fatalf("scan ignored an earlier Cancel")
	}
	if total := result.Tree.Total(); total != 0 {
		t.Fatalf("total = %d, want 0 for an undispatched root", total)
	}

	again, err := scanner.Scan(context.Background(), ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent})
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if again.Tree.Truncated() || again.Tree.Total() != 35 {
		t.Fatalf("second scan truncated=%v total=%d, want a full scan", again.Tree.Truncated(), again.Tree.Total())
	}
}

func TestScanCancelIsSelfConsistent(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 30; i++ {
		for j := 0; j < 10; j++ {
			writeFile(t, filepath.Join(root, fmt.Sprintf("dir%02d", i), fmt.Sprintf("sub%d", j), "f"), 1)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go cancel()
	result, err := NewFSScanner(nil).Scan(ctx, ScanRequest{Roots: []string{root}, Threads: 2})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := result.Tree.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Tree.Total() > 300 {
		t.Fatalf("total %d exceeds what exists on disk", result.Tree.Total())
	}
}

func TestScanInvalidRoot(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "missing")
	_, err := NewFSScanner(nil).Scan(context.Background(), ScanRequest{Roots: []string{root, missing}})
	var invalid *domain.InvalidRootError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRootError, got %v", err)
	}
	if invalid.Path != missing || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("unexpected error %v", err)
	}

	if _, err := NewFSScanner(nil).Scan(context.Background(), ScanRequest{}); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRootError for no roots, got %v", err)
	}
}

func TestScanSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	writeFile(t, target, 50)
	writeFile(t, filepath.Join(root, "dir", "inside"), 9)
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "dirlink")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	plain := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent})
	rootIndex := plain.Tree.Roots()[0]
	link := mustEntry(t, plain.Tree, childNamed(t, plain.Tree, rootIndex, "link"))
	if link.Kind != domain.KindSymlink || link.Size != int64(len(target)) {
		t.Fatalf("link entry = %+v, want symlink of own size %d", link, len(target))
	}
	dirLink := mustEntry(t, plain.Tree, childNamed(t, plain.Tree, rootIndex, "dirlink"))
	if dirLink.Kind != domain.KindSymlink || len(dirLink.Children) != 0 {
		t.Fatalf("directory symlink was followed: %+v", dirLink)
	}

	followed := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent, FollowSymlinkedFiles: true})
	rootIndex = followed.Tree.Roots()[0]
	if got := mustEntry(t, followed.Tree, childNamed(t, followed.Tree, rootIndex, "link")).Size; got != 50 {
		t.Fatalf("followed link size = %d, want 50", got)
	}
}

func TestScanUnsupportedEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "plain"), 4)
	if err := mkfifo(filepath.Join(root, "pipe")); err != nil {
		t.Skipf("fifo unsupported: %v", err)
	}

	result := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent})
	if result.Stats.Unsupported != 1 {
		t.Fatalf("unsupported = %d, want 1", result.Stats.Unsupported)
	}
	pipe := mustEntry(t, result.Tree, childNamed(t, result.Tree, result.Tree.Roots()[0], "pipe"))
	if !pipe.Unsupported || pipe.Aggregate != 0 {
		t.Fatalf("pipe entry = %+v", pipe)
	}
	if got := result.Tree.Total(); got != 4 {
		t.Fatalf("total = %d, want 4", got)
	}
}

func TestScanMultipleRoots(t *testing.T) {
	first := scenarioA(t)
	second := t.TempDir()
	writeFile(t, filepath.Join(second, "solo"), 8)

	result := scan(t, ScanRequest{Roots: []string{first, filepath.Join(second, "solo")}, SizeMetric: domain.SizeApparent})
	roots := result.Tree.Roots()
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if got := result.Tree.Total(); got != 43 {
		t.Fatalf("total = %d, want 43", got)
	}
	if name := mustEntry(t, result.Tree, roots[1]).Name; name != filepath.Join(second, "solo") {
		t.Fatalf("file root name = %q", name)
	}
}
