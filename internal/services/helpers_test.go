package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sweepdu/internal/domain"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func childNamed(t *testing.T, tree *domain.Tree, parent int, name string) int {
	t.Helper()
	entry, ok := tree.Entry(parent)
	if !ok {
		t.Fatalf("no entry %d", parent)
	}
	for _, child := range entry.Children {
		childEntry, _ := tree.Entry(child)
		if childEntry.Name == name {
			return child
		}
	}
	t.Fatalf("%s has no child %q", tree.Path(parent), name)
	return domain.NoParent
}

func mustEntry(t *testing.T, tree *domain.Tree, index int) domain.Entry {
	t.Helper()
	entry, ok := tree.Entry(index)
	if !ok {
		t.Fatalf("no entry %d", index)
	}
	return entry
}

// scenarioA lays out root/A/{a1,a2} and root/B/b1.
func scenarioA(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "a1"), 10)
	writeFile(t, filepath.Join(root, "A", "a2"), 20)
	writeFile(t, filepath.Join(root, "B", "b1"), 5)
	return root
}
