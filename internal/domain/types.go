package domain

type SortKey string

const (
	SortBySize  SortKey = "size"
	SortByName  SortKey = "name"
	SortByCount SortKey = "count"
	SortByMod   SortKey = "mtime"
)

func ParseSortKey(value string, fallback SortKey) SortKey {
	switch SortKey(value) {
	case SortBySize, SortByName, SortByCount, SortByMod:
		return SortKey(value)
	default:
		return fallback
	}
}

type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

func (order SortOrder) Reverse() SortOrder {
	if order == Ascending {
		return Descending
	}
	return Ascending
}

func (order SortOrder) String() string {
	if order == Ascending {
		return "asc"
	}
	return "desc"
}

// DefaultOrder is the order a key starts with when first selected.
func (key SortKey) DefaultOrder() SortOrder {
	if key == SortByName {
		return Ascending
	}
	return Descending
}

type SizeMetric string

const (
	SizeApparent SizeMetric = "apparent"
	SizeOnDisk   SizeMetric = "disk"
)

// EmptyDirPolicy decides what happens to a directory whose last live child
// was removed by a deletion that targeted something below it.
type EmptyDirPolicy int

const (
	RetainEmptyDirs EmptyDirPolicy = iota
	PruneEmptyDirs
)
