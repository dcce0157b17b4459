package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"sweepdu/internal/domain"
	"sweepdu/internal/state"
)

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Enter     key.Binding
	Back      key.Binding
	Mark      key.Binding
	Delete    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	SortSize  key.Binding
	SortName  key.Binding
	SortCount key.Binding
	SortMod   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first entry"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last entry"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "right", "l", "o"),
			key.WithHelp("→/enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "h", "u", "esc"),
			key.WithHelp("←/backspace", "up"),
		),
		Mark: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "mark"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		SortSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by size"),
		),
		SortName: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort by name"),
		),
		SortCount: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "sort by count"),
		),
		SortMod: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "sort by mtime"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// EventFor translates a key press into a browser event. The same key can
// mean different things per mode: "n" sorts by name but declines a delete.
func (keys KeyMap) EventFor(mode state.Mode, msg tea.KeyMsg) (state.Event, bool) {
	if key.Matches(msg, keys.Quit) {
		return state.Key(state.EventQuit), true
	}
	if mode == state.ConfirmDelete {
		switch {
		case key.Matches(msg, keys.Confirm):
			return state.Key(state.EventConfirmYes), true
		case key.Matches(msg, keys.Cancel):
			return state.Key(state.EventConfirmNo), true
		}
		return state.Event{}, false
	}

	switch {
	case key.Matches(msg, keys.Up):
		return state.Key(state.EventUp), true
	case key.Matches(msg, keys.Down):
		return state.Key(state.EventDown), true
	case key.Matches(msg, keys.PageUp):
		return state.Key(state.EventPageUp), true
	case key.Matches(msg, keys.PageDown):
		return state.Key(state.EventPageDown), true
	case key.Matches(msg, keys.Home):
		return state.Key(state.EventHome), true
	case key.Matches(msg, keys.End):
		return state.Key(state.EventEnd), true
	case key.Matches(msg, keys.Enter):
		return state.Key(state.EventEnter), true
	case key.Matches(msg, keys.Back):
		return state.Key(state.EventBack), true
	case key.Matches(msg, keys.Mark):
		return state.Key(state.EventToggleMark), true
	case key.Matches(msg, keys.Delete):
		return state.Key(state.EventDelete), true
	case key.Matches(msg, keys.SortSize):
		return state.ChangeSort(domain.SortBySize), true
	case key.Matches(msg, keys.SortName):
		return state.ChangeSort(domain.SortByName), true
	case key.Matches(msg, keys.SortCount):
		return state.ChangeSort(domain.SortByCount), true
	case key.Matches(msg, keys.SortMod):
		return state.ChangeSort(domain.SortByMod), true
	case key.Matches(msg, keys.Help):
		return state.Key(state.EventToggleHelp), true
	}
	return state.Event{}, false
}

// bindingsFor lists the keys that produce an event, for the help overlay.
func (keys KeyMap) bindingsFor(kind state.EventKind) []key.Binding {
	switch kind {
	case state.EventUp:
		return []key.Binding{keys.Up}
	case state.EventDown:
		return []key.Binding{keys.Down}
	case state.EventPageUp:
		return []key.Binding{keys.PageUp}
	case state.EventPageDown:
		return []key.Binding{keys.PageDown}
	case state.EventHome:
		return []key.Binding{keys.Home}
	case state.EventEnd:
		return []key.Binding{keys.End}
	case state.EventEnter:
		return []key.Binding{keys.Enter}
	case state.EventBack:
		return []key.Binding{keys.Back}
	case state.EventToggleMark:
		return []key.Binding{keys.Mark}
	case state.EventDelete:
		return []key.Binding{keys.Delete, keys.Confirm, keys.Cancel}
	case state.EventChangeSort:
		return []key.Binding{keys.SortSize, keys.SortName, keys.SortCount, keys.SortMod}
	case state.EventToggleHelp:
		return []key.Binding{keys.Help}
	case state.EventQuit:
		return []key.Binding{keys.Quit}
	}
	return nil
}
