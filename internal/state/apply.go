package state

import (
	"fmt"
	"sort"

	"sweepdu/internal/domain"
)

// Apply returns the state that follows appState after ev.
func Apply(appState State, ev Event, env Env) State {
	if appState.mode == Exiting {
		return appState
	}
	switch ev.Kind {
	case EventQuit:
		appState.mode = Exiting
		return appState
	case EventResize:
		appState.width = maxInt(1, ev.Width)
		appState.height = maxInt(1, ev.Height)
		return appState.clampCursor()
	case EventScanProgress:
		if appState.scanning() {
			appState.stats = ev.Stats
		}
		return appState
	case EventScanDone:
		if appState.scanning() {
			return appState.finishScan(ev)
		}
		return appState
	}

	switch appState.mode {
	case Scanning:
		return appState.applyScanning(ev)
	case Ready:
		return appState.applyReady(ev)
	case ConfirmDelete:
		return appState.applyConfirm(ev, env)
	case HelpOverlay:
		if ev.Kind == EventToggleHelp || ev.Kind == EventBack {
			appState.mode = appState.prevMode
		}
		return appState
	}
	return appState
}

func (appState State) scanning() bool {
	return appState.mode == Scanning || (appState.mode == HelpOverlay && appState.prevMode == Scanning)
}

func (appState State) finishScan(ev Event) State {
	appState.tree = ev.Tree
	appState.stats = ev.Stats
	appState.cancelRequested = false
	if appState.mode == HelpOverlay {
		appState.prevMode = Ready
	} else {
		appState.mode = Ready
	}
	roots := []int{}
	if ev.Tree != nil {
		roots = ev.Tree.Roots()
	}
	if len(roots) == 1 && isDir(ev.Tree, roots[0]) {
		appState.frames = []Frame{{Node: roots[0]}}
	} else {
		appState.frames = []Frame{{Node: domain.NoParent}}
	}
	switch {
	case ev.Tree != nil && ev.Tree.Truncated():
		appState.status = "scan cancelled, results are incomplete"
	case ev.Stats.FailureCount > 0:
		appState.status = fmt.Sprintf("scan finished with %d errors", ev.Stats.FailureCount)
	default:
		appState.status = fmt.Sprintf("scanned %d entries", ev.Stats.Entries)
	}
	return appState.clampCursor()
}

func isDir(tree *domain.Tree, index int) bool {
	entry, ok := tree.Entry(index)
	return ok && entry.Kind == domain.KindDir
}

func (appState State) applyScanning(ev Event) State {
	switch ev.Kind {
	case EventBack:
		appState.cancelRequested = true
		appState.status = "cancelling scan…"
	case EventToggleHelp:
		appState.prevMode = appState.mode
		appState.mode = HelpOverlay
	}
	return appState
}

func (appState State) applyReady(ev Event) State {
	frame := appState.frame()
	switch ev.Kind {
	case EventUp:
		frame.Cursor--
	case EventDown:
		frame.Cursor++
	case EventPageUp:
		frame.Cursor -= appState.listHeight()
	case EventPageDown:
		frame.Cursor += appState.listHeight()
	case EventHome:
		frame.Cursor = 0
	case EventEnd:
		frame.Cursor = len(appState.Listing()) - 1
	case EventEnter:
		return appState.enter()
	case EventBack:
		return appState.back()
	case EventToggleMark:
		return appState.toggleMark()
	case EventChangeSort:
		return appState.changeSort(ev.Sort)
	case EventToggleHelp:
		appState.prevMode = appState.mode
		appState.mode = HelpOverlay
		return appState
	case EventDelete:
		return appState.requestDelete()
	default:
		return appState
	}
	return appState.withFrame(frame).clampCursor()
}

func (appState State) enter() State {
	selected, ok := appState.Selected()
	if !ok {
		return appState
	}
	entry, ok := appState.tree.Entry(selected)
	if !ok || entry.Kind != domain.KindDir {
		return appState
	}
	appState.frames = append(append([]Frame(nil), appState.frames...), Frame{Node: selected})
	appState.status = ""
	return appState
}

func (appState State) back() State {
	if len(appState.frames) <= 1 {
		return appState
	}
	appState.frames = append([]Frame(nil), appState.frames[:len(appState.frames)-1]...)
	appState.status = ""
	return appState.clampCursor()
}

func (appState State) toggleMark() State {
	selected, ok := appState.Selected()
	if !ok {
		return appState
	}
	marked := make([]int, 0, len(appState.marked)+1)
	for _, index := range appState.marked {
		if index != selected {
			marked = append(marked, index)
		}
	}
	if len(marked) == len(appState.marked) {
		marked = append(marked, selected)
	}
	appState.marked = marked
	frame := appState.frame()
	frame.Cursor++
	return appState.withFrame(frame).clampCursor()
}

// changeSort re-sorts the listing. Picking the active key again flips the
// order; the cursor stays on the entry it was on.
func (appState State) changeSort(key domain.SortKey) State {
	key = domain.ParseSortKey(string(key), appState.sortKey)
	selected, hadSelection := appState.Selected()
	if key == appState.sortKey {
		appState.order = appState.order.Reverse()
	} else {
		appState.sortKey = key
		appState.order = key.DefaultOrder()
	}
	appState.status = fmt.Sprintf("sorted by %s (%s)", appState.sortKey, appState.order)
	if !hadSelection {
		return appState
	}
	frame := appState.frame()
	for position, index := range appState.Listing() {
		if index == selected {
			frame.Cursor = position
			break
		}
	}
	return appState.withFrame(frame).clampCursor()
}

func (appState State) requestDelete() State {
	targets := appState.Marked()
	if len(targets) == 0 {
		if selected, ok := appState.Selected(); ok {
			targets = []int{selected}
		}
	}
	if len(targets) == 0 {
		appState.status = "nothing to delete"
		return appState
	}
	appState.pending = targets
	appState.mode = ConfirmDelete
	return appState
}

func (appState State) applyConfirm(ev Event, env Env) State {
	switch ev.Kind {
	case EventConfirmYes:
		return appState.performDelete(env)
	case EventConfirmNo, EventBack:
		appState.pending = nil
		appState.mode = Ready
		appState.status = "deletion cancelled"
	}
	return appState
}

// performDelete removes the pending targets deepest first, so a marked entry
// inside another marked directory is handled before its ancestor.
func (appState State) performDelete(env Env) State {
	logger := env.logger()
	if env.Remover == nil {
		appState.mode = Ready
		appState.pending = nil
		appState.status = "deletion is not available"
		return appState
	}
	targets := append([]int(nil), appState.pending...)
	depths := make(map[int]int, len(targets))
	for _, target := range targets {
		depths[target] = appState.tree.Depth(target)
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return depths[targets[i]] > depths[targets[j]]
	})

	var freed int64
	var removed int
	var failures []domain.RemovalFailure
	for _, target := range targets {
		if !appState.tree.IsLive(target) {
			continue
		}
		path := appState.tree.Path(target)
		outcome, err := appState.tree.RemoveSubtree(target, env.Remover)
		if err != nil {
			logger.Debug("delete skipped", "path", path, "err", err)
			continue
		}
		freed += outcome.Freed
		removed += outcome.Removed
		failures = append(failures, outcome.Failures...)
		logger.Info("deleted", "path", path, "entries", outcome.Removed, "freed", outcome.Freed, "failures", len(outcome.Failures))
	}

	appState.pending = nil
	appState.marked = nil
	appState.mode = Ready
	appState.frames = appState.repairFrames()
	appState.status = fmt.Sprintf("freed %s in %d entries", appState.format.Display(freed), removed)
	if len(failures) > 0 {
		appState.status += fmt.Sprintf(", %d failed: %v", len(failures), failures[0].Err)
	}
	return appState.clampCursor()
}

// repairFrames drops every frame from the first one whose directory is gone.
func (appState State) repairFrames() []Frame {
	frames := make([]Frame, 0, len(appState.frames))
	for _, frame := range appState.frames {
		if frame.Node != domain.NoParent && !appState.tree.IsLive(frame.Node) {
			break
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		frames = append(frames, Frame{Node: domain.NoParent})
	}
	for depth := range frames {
		count := appState.listingFor(frames[depth].Node)
		frames[depth].Cursor = clamp(frames[depth].Cursor, 0, maxInt(0, count-1))
	}
	return frames
}

func (appState State) listingFor(node int) int {
	if node == domain.NoParent {
		return len(appState.tree.Roots())
	}
	return len(appState.tree.SortedChildren(node, appState.sortKey, appState.order))
}

// IsScanning reports whether the scan is still running, including while the
// help overlay covers it.
func (appState State) IsScanning() bool {
	return appState.scanning()
}
