package state

import (
	"fmt"

	"sweepdu/internal/domain"
)

type Header struct {
	Path        string
	Total       int64
	Items       int
	Sort        string
	MarkedCount int
	MarkedBytes int64
	Truncated   bool
}

type Row struct {
	Index       int
	Name        string
	Kind        domain.EntryKind
	Size        int64
	Count       int64
	Percentage  float64
	Marked      bool
	Cursor      bool
	Err         error
	Duplicate   bool
	Incomplete  bool
	Unsupported bool
}

type MarkedEntry struct {
	Index int
	Path  string
	Size  int64
}

// MarkedPane lists the marked entries in marking order. Entries holds at most
// MarkedPaneLines of them; Hidden counts the rest.
type MarkedPane struct {
	Entries []MarkedEntry
	Hidden  int
	Count   int
	Bytes   int64
}

// ConfirmPrompt lists every entry a confirmed delete would remove.
type ConfirmPrompt struct {
	Entries []MarkedEntry
	Bytes   int64
}

type ProgressView struct {
	Files       int64
	Dirs        int64
	Bytes       int64
	Entries     int64
	Failures    int64
	CurrentPath string
}

type HelpLine struct {
	Event       EventKind
	Description string
}

// DisplayModel is everything a renderer needs to draw one frame.
type DisplayModel struct {
	Mode     Mode
	Header   Header
	Rows     []Row
	Marked   *MarkedPane
	Status   string
	Confirm  *ConfirmPrompt
	Help     []HelpLine
	Progress *ProgressView
	Format   domain.ByteFormat
	Width    int
	Height   int
}

var helpLines = []HelpLine{
	{EventUp, "move up"},
	{EventDown, "move down"},
	{EventPageUp, "page up"},
	{EventPageDown, "page down"},
	{EventHome, "first entry"},
	{EventEnd, "last entry"},
	{EventEnter, "open directory"},
	{EventBack, "parent directory / cancel scan"},
	{EventToggleMark, "mark or unmark entry"},
	{EventDelete, "delete marked entries or the selected one"},
	{EventChangeSort, "sort by size, name, count or mtime (again to reverse)"},
	{EventToggleHelp, "toggle help"},
	{EventQuit, "quit"},
}

// Render projects appState for display. It does not change anything.
func Render(appState State) DisplayModel {
	model := DisplayModel{
		Mode:   appState.mode,
		Status: appState.status,
		Format: appState.format,
		Width:  appState.width,
		Height: appState.height,
	}
	if appState.scanning() {
		model.Progress = &ProgressView{
			Files:       appState.stats.Files,
			Dirs:        appState.stats.Dirs,
			Bytes:       appState.stats.Bytes,
			Entries:     appState.stats.Entries,
			Failures:    appState.stats.FailureCount,
			CurrentPath: appState.stats.CurrentPath,
		}
	}
	if appState.mode == HelpOverlay {
		model.Help = append([]HelpLine(nil), helpLines...)
	}
	if appState.tree == nil {
		return model
	}

	model.Header = appState.header()
	model.Rows = appState.rows(model.Header.Total)
	model.Marked = appState.markedPane()
	if appState.mode == ConfirmDelete {
		prompt := &ConfirmPrompt{Entries: appState.describe(appState.pending)}
		for _, entry := range prompt.Entries {
			prompt.Bytes += entry.Size
		}
		model.Confirm = prompt
	}
	return model
}

func (appState State) markedPane() *MarkedPane {
	marked := appState.Marked()
	if len(marked) == 0 {
		return nil
	}
	count, bytes := appState.SelectionSummary()
	shown := marked[:minInt(len(marked), MarkedPaneLines)]
	return &MarkedPane{
		Entries: appState.describe(shown),
		Hidden:  len(marked) - len(shown),
		Count:   count,
		Bytes:   bytes,
	}
}

func (appState State) describe(indices []int) []MarkedEntry {
	entries := make([]MarkedEntry, 0, len(indices))
	for _, index := range indices {
		entry, ok := appState.tree.Entry(index)
		if !ok {
			continue
		}
		entries = append(entries, MarkedEntry{
			Index: index,
			Path:  appState.tree.Path(index),
			Size:  entry.Aggregate,
		})
	}
	return entries
}

func (appState State) header() Header {
	count, bytes := appState.SelectionSummary()
	header := Header{
		Items:       len(appState.Listing()),
		Sort:        fmt.Sprintf("%s %s", appState.sortKey, appState.order),
		MarkedCount: count,
		MarkedBytes: bytes,
		Truncated:   appState.tree.Truncated(),
	}
	node := appState.frame().Node
	if node == domain.NoParent {
		header.Path = fmt.Sprintf("%d roots", len(appState.tree.Roots()))
		if len(appState.tree.Roots()) == 1 {
			header.Path = appState.tree.Path(appState.tree.Roots()[0])
		}
		header.Total = appState.tree.Total()
		return header
	}
	header.Path = appState.tree.Path(node)
	if entry, ok := appState.tree.Entry(node); ok {
		header.Total = entry.Aggregate
	}
	return header
}

func (appState State) rows(parentTotal int64) []Row {
	listing := appState.Listing()
	frame := appState.frame()
	end := minInt(len(listing), frame.Offset+appState.listHeight())
	if frame.Offset >= end {
		return nil
	}
	denominator := float64(maxInt64(parentTotal, 1))
	rows := make([]Row, 0, end-frame.Offset)
	for position := frame.Offset; position < end; position++ {
		index := listing[position]
		entry, ok := appState.tree.Entry(index)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Index:       index,
			Name:        entry.Name,
			Kind:        entry.Kind,
			Size:        entry.Aggregate,
			Count:       entry.Count,
			Percentage:  float64(entry.Aggregate) / denominator,
			Marked:      appState.IsMarked(index),
			Cursor:      position == frame.Cursor,
			Err:         entry.Err,
			Duplicate:   entry.Duplicate,
			Incomplete:  entry.Incomplete,
			Unsupported: entry.Unsupported,
		})
	}
	return rows
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
