package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sweepdu/internal/domain"
)

func TestFSActionsRemove(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	dir := filepath.Join(root, "empty")
	writeFile(t, file, 3)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	actions := NewFSActions(nil, true)
	if err := actions.Remove(file, domain.KindFile); err != nil {
		t.Fatalf("remove file: %v", err)
	}
	if err := actions.Remove(dir, domain.KindDir); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	if err := actions.Remove(file, domain.KindFile); err == nil {
		t.Fatalf("removing a missing file should fail")
	}
}

func TestFSActionsRefusesNonEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "full", "x"), 1)
	if err := NewFSActions(nil, false).Remove(filepath.Join(root, "full"), domain.KindDir); err == nil {
		t.Fatalf("non-empty directory was removed")
	}
}

func TestFSActionsSafeMode(t *testing.T) {
	actions := NewFSActions(nil, true)
	for _, path := range []string{"/", "/etc", "/usr/"} {
		if err := actions.Remove(path, domain.KindDir); !errors.Is(err, ErrProtectedPath) {
			t.Fatalf("%s: expected ErrProtectedPath, got %v", path, err)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if err := actions.Remove(home, domain.KindDir); !errors.Is(err, ErrProtectedPath) {
			t.Fatalf("home: expected ErrProtectedPath, got %v", err)
		}
	}
}

func TestDryRunLeavesDisk(t *testing.T) {
	root := scenarioA(t)
	result := scan(t, ScanRequest{Roots: []string{root}, SizeMetric: domain.SizeApparent})
	tree := result.Tree
	a := childNamed(t, tree, tree.Roots()[0], "A")

	actions := NewDryRunActions(nil)
	outcome, err := tree.RemoveSubtree(a, actions)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if outcome.Freed != 30 || outcome.Removed != 3 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if got := tree.Total(); got != 5 {
		t.Fatalf("total = %d, want 5", got)
	}
	removed := actions.Removed()
	if len(removed) != 3 || removed[2] != filepath.Join(root, "A") {
		t.Fatalf("removed = %v", removed)
	}
	if _, err := os.Stat(filepath.Join(root, "A", "a1")); err != nil {
		t.Fatalf("dry run touched the disk: %v", err)
	}
}
