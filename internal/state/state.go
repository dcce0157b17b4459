package state

import (
	"slices"

	"sweepdu/internal/domain"
)

type Mode int

const (
	Scanning Mode = iota
	Ready
	ConfirmDelete
	HelpOverlay
	Exiting
)

func (mode Mode) String() string {
	switch mode {
	case Scanning:
		return "scanning"
	case Ready:
		return "ready"
	case ConfirmDelete:
		return "confirm"
	case HelpOverlay:
		return "help"
	default:
		return "exiting"
	}
}

// Frame is one level of the navigation stack. Node is NoParent for the
// listing of all roots.
type Frame struct {
	Node   int
	Cursor int
	Offset int
}

type Preferences struct {
	SortKey domain.SortKey
	Format  domain.ByteFormat
}

// State is a value. Apply never changes the State it is given: slices and
// maps are copied before they are written.
type State struct {
	mode            Mode
	prevMode        Mode
	tree            *domain.Tree
	frames          []Frame
	sortKey         domain.SortKey
	order           domain.SortOrder
	format          domain.ByteFormat
	marked          []int
	width           int
	height          int
	status          string
	stats           domain.ScanStats
	pending         []int
	cancelRequested bool
}

func NewState(prefs Preferences) State {
	key := domain.ParseSortKey(string(prefs.SortKey), domain.SortBySize)
	format := prefs.Format
	if format == "" {
		format = domain.FormatMetric
	}
	return State{
		mode:    Scanning,
		sortKey: key,
		order:   key.DefaultOrder(),
		format:  format,
		width:   80,
		height:  24,
		status:  "scanning…",
	}
}

func (appState State) Mode() Mode                  { return appState.mode }
func (appState State) Tree() *domain.Tree          { return appState.tree }
func (appState State) SortKey() domain.SortKey     { return appState.sortKey }
func (appState State) SortOrder() domain.SortOrder { return appState.order }
func (appState State) Status() string              { return appState.status }
func (appState State) Stats() domain.ScanStats     { return appState.stats }
func (appState State) CancelRequested() bool       { return appState.cancelRequested }

func (appState State) Frames() []Frame {
	return append([]Frame(nil), appState.frames...)
}

// Pending lists the entries awaiting delete confirmation.
func (appState State) Pending() []int {
	return append([]int(nil), appState.pending...)
}

func (appState State) IsMarked(index int) bool {
	return slices.Contains(appState.marked, index)
}

// Marked returns the live marked entries in the order they were marked.
func (appState State) Marked() []int {
	marked := make([]int, 0, len(appState.marked))
	for _, index := range appState.marked {
		if appState.tree != nil && appState.tree.IsLive(index) {
			marked = append(marked, index)
		}
	}
	return marked
}

func (appState State) SelectionSummary() (int, int64) {
	var total int64
	marked := appState.Marked()
	for _, index := range marked {
		if entry, ok := appState.tree.Entry(index); ok {
			total += entry.Aggregate
		}
	}
	return len(marked), total
}

func (appState State) frame() Frame {
	if len(appState.frames) == 0 {
		return Frame{Node: domain.NoParent}
	}
	return appState.frames[len(appState.frames)-1]
}

// Listing is the current directory's live entries in display order.
func (appState State) Listing() []int {
	if appState.tree == nil {
		return nil
	}
	node := appState.frame().Node
	if node == domain.NoParent {
		return appState.tree.SortedRoots(appState.sortKey, appState.order)
	}
	return appState.tree.SortedChildren(node, appState.sortKey, appState.order)
}

// Selected is the entry under the cursor.
func (appState State) Selected() (int, bool) {
	listing := appState.Listing()
	cursor := appState.frame().Cursor
	if cursor < 0 || cursor >= len(listing) {
		return domain.NoParent, false
	}
	return listing[cursor], true
}

// MarkedPaneLines is how many marked entries the marked pane lists before it
// summarises the rest.
const MarkedPaneLines = 5

func (appState State) listHeight() int {
	return maxInt(1, appState.height-6-appState.markedPaneHeight())
}

// markedPaneHeight is the number of screen lines the marked pane takes: a
// title, the listed entries, an overflow line and the border.
func (appState State) markedPaneHeight() int {
	count := len(appState.Marked())
	if count == 0 {
		return 0
	}
	lines := minInt(count, MarkedPaneLines)
	if count > MarkedPaneLines {
		lines++
	}
	return lines + 3
}

func (appState State) withFrame(frame Frame) State {
	frames := append([]Frame(nil), appState.frames...)
	if len(frames) == 0 {
		frames = append(frames, frame)
	} else {
		frames[len(frames)-1] = frame
	}
	appState.frames = frames
	return appState
}

// clampCursor keeps the top frame's cursor inside the listing and its offset
// such that the cursor is on screen.
func (appState State) clampCursor() State {
	if len(appState.frames) == 0 {
		return appState
	}
	frame := appState.frame()
	count := len(appState.Listing())
	frame.Cursor = clamp(frame.Cursor, 0, maxInt(0, count-1))
	height := appState.listHeight()
	if frame.Cursor < frame.Offset {
		frame.Offset = frame.Cursor
	}
	if frame.Cursor >= frame.Offset+height {
		frame.Offset = frame.Cursor - height + 1
	}
	frame.Offset = clamp(frame.Offset, 0, maxInt(0, count-height))
	return appState.withFrame(frame)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
