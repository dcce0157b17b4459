package domain

import "time"

type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
	KindSymlink
	KindOther
)

func (kind EntryKind) String() string {
	switch kind {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// NoParent is the parent index of a root entry.
const NoParent = -1

type Entry struct {
	Name        string
	Kind        EntryKind
	Size        int64
	Device      uint64
	Inode       uint64
	ModTime     time.Time
	Aggregate   int64
	Count       int64
	Err         error
	Duplicate   bool
	Unsupported bool
	Incomplete  bool
	Parent      int
	Children    []int
	Removed     bool
}

func (entry *Entry) IsDir() bool {
	return entry.Kind == KindDir
}

// counted is the number of bytes the entry contributes to its ancestors.
func (entry *Entry) counted() int64 {
	if entry.Kind == KindDir || entry.Duplicate || entry.Unsupported {
		return 0
	}
	return entry.Size
}
