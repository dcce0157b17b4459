package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Remover performs the filesystem side of removing a single entry. Directories
// are only handed to it once every child known to the tree is gone.
type Remover interface {
	Remove(path string, kind EntryKind) error
}

type RemovalFailure struct {
	Index int
	Path  string
	Err   error
}

// RemovalOutcome reports what a RemoveSubtree call changed.
type RemovalOutcome struct {
	Removed  int
	Freed    int64
	Failures []RemovalFailure
	Retained bool
	Pruned   []int
}

// Tree is an arena of entries addressed by stable indices. Indices are never
// reused: a removed entry stays in the arena as a tombstone.
//
// During a scan many goroutines attach children concurrently; the lock is held
// only while a batch is spliced in and its size is carried up to the root.
type Tree struct {
	mu        sync.Mutex
	entries   []Entry
	roots     []int
	truncated bool
	policy    EmptyDirPolicy
}

func NewTree(policy EmptyDirPolicy) *Tree {
	return &Tree{policy: policy}
}

func (tree *Tree) Policy() EmptyDirPolicy {
	return tree.policy
}

func (tree *Tree) AddRoot(entry Entry) int {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	index := tree.appendLocked(entry, NoParent)
	tree.roots = append(tree.roots, index)
	return index
}

// InsertChild attaches one entry below parent and adds its size to every
// ancestor up to the root.
func (tree *Tree) InsertChild(parent int, entry Entry) int {
	indices := tree.AttachChildren(parent, []Entry{entry})
	if len(indices) == 0 {
		return NoParent
	}
	return indices[0]
}

// AttachChildren is the batched form of InsertChild: one lock acquisition and
// one walk up the parent chain for a whole directory listing.
func (tree *Tree) AttachChildren(parent int, batch []Entry) []int {
	if len(batch) == 0 {
		return nil
	}
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if !tree.liveLocked(parent) || tree.entries[parent].Kind != KindDir {
		return nil
	}
	indices := make([]int, 0, len(batch))
	var bytes, count int64
	for _, entry := range batch {
		index := tree.appendLocked(entry, parent)
		indices = append(indices, index)
		bytes += tree.entries[index].Aggregate
		count += tree.entries[index].Count
	}
	tree.entries[parent].Children = append(tree.entries[parent].Children, indices...)
	tree.propagateLocked(parent, bytes, count)
	return indices
}

func (tree *Tree) appendLocked(entry Entry, parent int) int {
	entry.Parent = parent
	entry.Children = nil
	entry.Removed = false
	entry.Aggregate = entry.counted()
	entry.Count = 1
	tree.entries = append(tree.entries, entry)
	return len(tree.entries) - 1
}

func (tree *Tree) propagateLocked(from int, bytes, count int64) {
	for index := from; index != NoParent; index = tree.entries[index].Parent {
		tree.entries[index].Aggregate += bytes
		tree.entries[index].Count += count
	}
}

func (tree *Tree) MarkError(index int, err error) {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if tree.validLocked(index) {
		tree.entries[index].Err = err
	}
}

func (tree *Tree) MarkIncomplete(index int) {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if tree.validLocked(index) {
		tree.entries[index].Incomplete = true
	}
}

func (tree *Tree) SetTruncated(truncated bool) {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	tree.truncated = truncated
}

func (tree *Tree) Truncated() bool {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	return tree.truncated
}

func (tree *Tree) Len() int {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	return len(tree.entries)
}

// Entry returns a copy of the entry at index, including removed tombstones.
func (tree *Tree) Entry(index int) (Entry, bool) {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if !tree.validLocked(index) {
		return Entry{}, false
	}
	entry := tree.entries[index]
	entry.Children = append([]int(nil), entry.Children...)
	return entry, true
}

func (tree *Tree) IsLive(index int) bool {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	return tree.liveLocked(index)
}

func (tree *Tree) Roots() []int {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	return append([]int(nil), tree.roots...)
}

// Total is the combined aggregate of all live roots.
func (tree *Tree) Total() int64 {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	var total int64
	for _, root := range tree.roots {
		total += tree.entries[root].Aggregate
	}
	return total
}

func (tree *Tree) Path(index int) string {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if !tree.validLocked(index) {
		return ""
	}
	return tree.pathLocked(index)
}

func (tree *Tree) pathLocked(index int) string {
	parts := []string{}
	for current := index; current != NoParent; current = tree.entries[current].Parent {
		parts = append(parts, tree.entries[current].Name)
	}
	for left, right := 0, len(parts)-1; left < right; left, right = left+1, right-1 {
		parts[left], parts[right] = parts[right], parts[left]
	}
	return filepath.Join(parts...)
}

func (tree *Tree) Depth(index int) int {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if !tree.validLocked(index) {
		return 0
	}
	depth := 0
	for current := tree.entries[index].Parent; current != NoParent; current = tree.entries[current].Parent {
		depth++
	}
	return depth
}

// SortedChildren returns the live children of node in display order. The
// stored child order is left untouched and equal keys keep insertion order.
func (tree *Tree) SortedChildren(node int, key SortKey, order SortOrder) []int {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if !tree.liveLocked(node) {
		return nil
	}
	children := append([]int(nil), tree.entries[node].Children...)
	tree.sortLocked(children, key, order)
	return children
}

// SortedRoots orders the roots the same way SortedChildren orders siblings.
func (tree *Tree) SortedRoots(key SortKey, order SortOrder) []int {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	roots := append([]int(nil), tree.roots...)
	tree.sortLocked(roots, key, order)
	return roots
}

func (tree *Tree) sortLocked(indices []int, key SortKey, order SortOrder) {
	before := func(left, right *Entry) bool {
		switch key {
		case SortByName:
			return strings.ToLower(left.Name) < strings.ToLower(right.Name)
		case SortByCount:
			return left.Count < right.Count
		case SortByMod:
			return left.ModTime.Before(right.ModTime)
		default:
			return left.Aggregate < right.Aggregate
		}
	}
	sort.SliceStable(indices, func(i, j int) bool {
		left, right := &tree.entries[indices[i]], &tree.entries[indices[j]]
		if order == Descending {
			return before(right, left)
		}
		return before(left, right)
	})
}

// Resolve walks a cursor stack from a root and returns the addressed node.
// It fails if any element is removed or is not a child of the previous one.
func (tree *Tree) Resolve(stack []int) (int, bool) {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	if len(stack) == 0 {
		return NoParent, false
	}
	if !tree.liveLocked(stack[0]) || tree.entries[stack[0]].Parent != NoParent {
		return NoParent, false
	}
	for depth := 1; depth < len(stack); depth++ {
		index := stack[depth]
		if !tree.liveLocked(index) || tree.entries[index].Parent != stack[depth-1] {
			return NoParent, false
		}
	}
	return stack[len(stack)-1], true
}

// RemoveSubtree removes node and everything below it, deepest first. Every
// removal is attempted independently; entries that fail stay in the tree with
// their size still counted, and a directory is only removed once it has no
// live children left.
func (tree *Tree) RemoveSubtree(node int, remover Remover) (RemovalOutcome, error) {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	outcome := RemovalOutcome{}
	if !tree.liveLocked(node) {
		return outcome, ErrNodeRemoved
	}
	parent := tree.entries[node].Parent
	for _, index := range tree.postOrderLocked(node) {
		entry := &tree.entries[index]
		if entry.Kind == KindDir && len(entry.Children) > 0 {
			continue
		}
		path := tree.pathLocked(index)
		if err := remover.Remove(path, entry.Kind); err != nil {
			outcome.Failures = append(outcome.Failures, RemovalFailure{
				Index: index,
				Path:  path,
				Err:   &IOError{Path: path, Err: err},
			})
			continue
		}
		outcome.Freed += entry.Aggregate
		outcome.Removed++
		tree.pruneLocked(index)
	}
	outcome.Retained = !tree.entries[node].Removed
	if !outcome.Retained && tree.policy == PruneEmptyDirs {
		outcome.Pruned = tree.pruneEmptyLocked(parent)
	}
	return outcome, nil
}

func (tree *Tree) postOrderLocked(node int) []int {
	order := []int{}
	var visit func(int)
	visit = func(index int) {
		for _, child := range tree.entries[index].Children {
			visit(child)
		}
		order = append(order, index)
	}
	visit(node)
	return order
}

func (tree *Tree) pruneLocked(index int) {
	entry := &tree.entries[index]
	entry.Removed = true
	bytes, count := entry.Aggregate, entry.Count
	parent := entry.Parent
	if parent == NoParent {
		tree.roots = without(tree.roots, index)
		return
	}
	tree.entries[parent].Children = without(tree.entries[parent].Children, index)
	tree.propagateLocked(parent, -bytes, -count)
}

// pruneEmptyLocked drops emptied directories from the tree, walking upwards
// from start. Roots are kept and nothing is touched on disk.
func (tree *Tree) pruneEmptyLocked(start int) []int {
	pruned := []int{}
	for index := start; index != NoParent; {
		entry := &tree.entries[index]
		if entry.Parent == NoParent || entry.Kind != KindDir || len(entry.Children) > 0 {
			break
		}
		next := entry.Parent
		tree.pruneLocked(index)
		pruned = append(pruned, index)
		index = next
	}
	return pruned
}

// Verify checks the aggregate and count invariants of every live directory.
func (tree *Tree) Verify() error {
	tree.mu.Lock()
	defer tree.mu.Unlock()
	for index := range tree.entries {
		entry := &tree.entries[index]
		if entry.Removed {
			continue
		}
		if entry.Kind != KindDir {
			if len(entry.Children) > 0 {
				return fmt.Errorf("%s: non-directory has children", tree.pathLocked(index))
			}
			continue
		}
		var bytes int64
		count := int64(1)
		for _, child := range entry.Children {
			if !tree.liveLocked(child) {
				return fmt.Errorf("%s: removed child %d still linked", tree.pathLocked(index), child)
			}
			if tree.entries[child].Parent != index {
				return fmt.Errorf("%s: child %d has parent %d", tree.pathLocked(index), child, tree.entries[child].Parent)
			}
			bytes += tree.entries[child].Aggregate
			count += tree.entries[child].Count
		}
		if bytes != entry.Aggregate {
			return fmt.Errorf("%s: aggregate %d, children sum to %d", tree.pathLocked(index), entry.Aggregate, bytes)
		}
		if count != entry.Count {
			return fmt.Errorf("%s: count %d, children sum to %d", tree.pathLocked(index), entry.Count, count)
		}
	}
	return nil
}

func (tree *Tree) validLocked(index int) bool {
	return index >= 0 && index < len(tree.entries)
}

func (tree *Tree) liveLocked(index int) bool {
	return tree.validLocked(index) && !tree.entries[index].Removed
}

func without(indices []int, target int) []int {
	for position, index := range indices {
		if index == target {
			return append(indices[:position], indices[position+1:]...)
		}
	}
	return indices
}
