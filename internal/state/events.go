package state

import (
	"log/slog"

	"sweepdu/internal/domain"
)

type EventKind int

const (
	EventUp EventKind = iota
	EventDown
	EventPageUp
	EventPageDown
	EventHome
	EventEnd
	EventEnter
	EventBack
	EventToggleMark
	EventDelete
	EventConfirmYes
	EventConfirmNo
	EventChangeSort
	EventToggleHelp
	EventQuit
	EventResize
	EventScanProgress
	EventScanDone
)

type Event struct {
	Kind   EventKind
	Sort   domain.SortKey
	Width  int
	Height int
	Stats  domain.ScanStats
	Tree   *domain.Tree
}

func Key(kind EventKind) Event {
	return Event{Kind: kind}
}

func ChangeSort(key domain.SortKey) Event {
	return Event{Kind: EventChangeSort, Sort: key}
}

func Resize(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

func ScanProgress(stats domain.ScanStats) Event {
	return Event{Kind: EventScanProgress, Stats: stats}
}

func ScanDone(tree *domain.Tree, stats domain.ScanStats) Event {
	return Event{Kind: EventScanDone, Tree: tree, Stats: stats}
}

// Env carries the collaborators a transition may call. Only confirmed
// deletions use it.
type Env struct {
	Remover domain.Remover
	Logger  *slog.Logger
}

func (env Env) logger() *slog.Logger {
	if env.Logger == nil {
		return slog.Default()
	}
	return env.Logger
}
